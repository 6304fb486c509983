package pdfannotate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/tsawler/pdfannotate/annotation"
	"github.com/tsawler/pdfannotate/document"
	"github.com/tsawler/pdfannotate/internal/pdftest"
	"github.com/tsawler/pdfannotate/textlayer"
)

// writePDF writes a two page document into a temporary directory
func writePDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	data := pdftest.Document(
		pdftest.TextPage("Top Left", "Top Right"),
		pdftest.TextPage("Bottom Left"),
	)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quiet(v *Viewer) *Viewer {
	logger, _ := test.NewNullLogger()
	return v.Logger(logger)
}

func waitIdle(t *testing.T, wait func(context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := quiet(Open("nonexistent.pdf")).View(context.Background())
	if !errors.Is(err, document.ErrDocumentLoad) {
		t.Errorf("View() error = %v, want ErrDocumentLoad", err)
	}
}

func TestViewer_Immutable(t *testing.T) {
	base := Open("doc.pdf")
	scaled := base.Scale(2).Page(3).OCRLanguage("eng").Calibrate(textlayer.Calibration{OverlayScale: 1})

	if base.options.scale != 1.5 || base.options.page != 1 || base.options.ocr {
		t.Errorf("base options changed: %+v", base.options)
	}
	if scaled.options.scale != 2 || scaled.options.page != 3 || !scaled.options.ocr || scaled.options.ocrLanguage != "eng" {
		t.Errorf("scaled options = %+v", scaled.options)
	}
	if scaled.options.calibration.OverlayScale != 1 {
		t.Errorf("calibration = %+v", scaled.options.calibration)
	}
}

func TestPageCountAndRender(t *testing.T) {
	path := writePDF(t, "doc.pdf")
	ctx := context.Background()

	if n := Must(quiet(Open(path)).PageCount(ctx)); n != 2 {
		t.Errorf("PageCount() = %d, want 2", n)
	}

	res, err := quiet(Open(path)).Scale(1).Render(ctx, 2)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if b := res.Image.Bounds(); b.Dx() != 612 || b.Dy() != 792 {
		t.Errorf("surface = %v", b)
	}

	data, _ := os.ReadFile(path)
	if n := Must(quiet(FromBytes(data)).PageCount(ctx)); n != 2 {
		t.Errorf("FromBytes PageCount() = %d", n)
	}
}

func TestView_WithSidecar(t *testing.T) {
	pdf := writePDF(t, "doc.pdf")
	v := quiet(Open(pdf))

	paj, created, err := v.Bootstrap()
	if err != nil || !created {
		t.Fatalf("Bootstrap = %v, %v", created, err)
	}
	if paj != strings.TrimSuffix(pdf, ".pdf")+".paj" {
		t.Errorf("sidecar path = %s", paj)
	}
	sc, err := annotation.Load(paj)
	if err != nil {
		t.Fatal(err)
	}
	sc.Add(annotation.Record{Page: 1, StartOffset: 4, EndOffset: 8, Text: "Left"})
	if err := annotation.Save(paj, sc); err != nil {
		t.Fatal(err)
	}

	// Opening either file replays the annotation
	for _, name := range []string{pdf, paj} {
		s, err := quiet(Open(name)).View(context.Background())
		if err != nil {
			t.Fatalf("View(%s): %v", name, err)
		}
		waitIdle(t, s.Wait)
		if rep := s.ReplayReport(); rep.Applied != 1 {
			t.Errorf("View(%s) replay = %+v", name, rep)
		}
		s.Close()
	}

	s, err := quiet(Open(pdf)).NoSidecar().View(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	waitIdle(t, s.Wait)
	if s.Sidecar() != nil {
		t.Error("NoSidecar() still loaded annotations")
	}
}

func TestPaths(t *testing.T) {
	pdf := writePDF(t, "a.pdf")
	dir := filepath.Dir(pdf)

	got, err := Open(pdf).SidecarPath()
	if err != nil || got != "" {
		t.Errorf("SidecarPath without file = %q, %v", got, err)
	}
	if got, _ := Open(pdf).Sidecar("x.paj").SidecarPath(); got != "x.paj" {
		t.Errorf("explicit SidecarPath = %q", got)
	}

	orphan := filepath.Join(dir, "orphan.paj")
	if _, err := Open(orphan).PDFPath(); err == nil || !strings.Contains(err.Error(), "does not have a corresponding PDF file") {
		t.Errorf("orphan sidecar error = %v", err)
	}
	if _, err := FromBytes(nil).PDFPath(); err == nil {
		t.Error("expected error without filename")
	}
}

func TestMust(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Must should panic on error")
		}
	}()
	Must(0, errors.New("boom"))
}
