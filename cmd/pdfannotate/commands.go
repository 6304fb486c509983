package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/tsawler/pdfannotate"
	"github.com/tsawler/pdfannotate/annotation"
	"github.com/tsawler/pdfannotate/format"
	"github.com/tsawler/pdfannotate/overlay"
)

func runInit(e env, args []string) error {
	path, err := file(e.flags("init"), args)
	if err != nil {
		return err
	}
	if format.Detect(path) != format.PDF {
		return fmt.Errorf("%s is not a PDF file", path)
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}

	paj, created, err := pdfannotate.Open(path).Logger(e.log).Bootstrap()
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(e.stdout, "created %s\n", paj)
	} else {
		fmt.Fprintf(e.stdout, "%s already exists\n", paj)
	}
	return nil
}

func runPages(e env, args []string) error {
	path, err := file(e.flags("pages"), args)
	if err != nil {
		return err
	}
	n, err := pdfannotate.Open(path).Logger(e.log).PageCount(e.ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, n)
	return nil
}

func runView(e env, args []string) error {
	fs := e.flags("view")
	page := fs.Int("page", 1, "Page to show (1-indexed)")
	scale := fs.Float64("scale", 1.5, "Render scale")
	useOCR := fs.Bool("ocr", false, "Recognize text on image-only pages (needs -tags ocr)")
	out := fs.String("o", "", "Write the HTML to this file instead of stdout")
	path, err := file(fs, args)
	if err != nil {
		return err
	}

	w := e.stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	} else if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return fmt.Errorf("refusing to write HTML to a terminal; use -o or redirect stdout")
	}

	v := pdfannotate.Open(path).Logger(e.log).Scale(*scale).Page(*page)
	if *useOCR {
		v = v.OCR()
	}
	s, err := v.View(e.ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.Wait(e.ctx); err != nil {
		return err
	}
	if err := s.Err(); err != nil {
		e.log.WithError(err).Warn("page shown with errors")
	}

	doc, err := buildPage(s)
	if err != nil {
		return err
	}
	if err := renderPage(w, doc); err != nil {
		return err
	}
	if *out != "" {
		e.log.WithField("path", *out).Info("view written")
	}
	return nil
}

func runAnnotate(e env, args []string) error {
	fs := e.flags("annotate")
	page := fs.Int("page", 1, "Page of the selection (1-indexed)")
	start := fs.String("start", "", "Selection start as node:offset")
	end := fs.String("end", "", "Selection end as node:offset")
	note := fs.String("note", "", "Annotation content (Markdown)")
	path, err := file(fs, args)
	if err != nil {
		return err
	}

	var r overlay.Range
	if r.Start, err = overlay.ParsePosition(*start); err != nil {
		return fmt.Errorf("%w: -start: %w", errUsage, err)
	}
	if r.End, err = overlay.ParsePosition(*end); err != nil {
		return fmt.Errorf("%w: -end: %w", errUsage, err)
	}

	v := pdfannotate.Open(path).Logger(e.log).Page(*page)
	if format.Detect(path) != format.Sidecar {
		paj, _, err := v.Bootstrap()
		if err != nil {
			return err
		}
		v = v.Sidecar(paj)
	}
	if n, err := v.PageCount(e.ctx); err != nil {
		return err
	} else if *page < 1 || *page > n {
		return fmt.Errorf("%w: -page %d outside 1..%d", errUsage, *page, n)
	}

	s, err := v.View(e.ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.Wait(e.ctx); err != nil {
		return err
	}

	rec, err := s.OnPointerUp(overlay.Selection{Ranges: []overlay.Range{r}}, *note)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("selection %s-%s is empty", r.Start, r.End)
	}
	fmt.Fprintf(e.stdout, "annotated page %d: %q (%d annotations)\n",
		rec.Page, rec.Text, len(s.Sidecar().Annotations))
	return nil
}

// notes returns the annotations of the session's page
func notes(sc *annotation.Sidecar, page int) []annotation.Record {
	if sc == nil {
		return nil
	}
	return sc.ForPage(page)
}
