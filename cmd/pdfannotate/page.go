package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/pdfannotate/annotation"
	"github.com/tsawler/pdfannotate/overlay"
	"github.com/tsawler/pdfannotate/viewer"
)

const stylesheet = `
body { font-family: sans-serif; margin: 16px; }
#controls { margin-bottom: 8px; }
#pdf-viewer { position: relative; }
#text-layer { position: absolute; overflow: hidden; line-height: 1; }
#text-layer > div { position: absolute; color: transparent; white-space: pre; cursor: text; transform-origin: 0% 0%; }
.highlight { background-color: rgba(255, 230, 0, 0.45); }
#notes { margin-top: 16px; max-width: 720px; }
.note { border-left: 3px solid #e6c200; padding-left: 8px; margin-bottom: 12px; }
`

// buildPage assembles the HTML document showing the session's page
func buildPage(s *viewer.Session) (*html.Node, error) {
	res := s.Surface()
	if res == nil {
		return nil, fmt.Errorf("page %d could not be rendered: %w", s.CurrentPage(), s.Err())
	}
	png, err := res.PNG()
	if err != nil {
		return nil, err
	}

	page := s.CurrentPage()
	title := fmt.Sprintf("Page %d of %d", page, s.PageCount())
	if sc := s.Sidecar(); sc != nil && sc.PDFFile != "" {
		title = filepath.Base(sc.PDFFile) + " - " + title
	} else if t, _ := s.Document().Info(); t != "" {
		title = t + " - " + title
	}

	head := el(atom.Head, nil,
		el(atom.Meta, []string{"charset", "utf-8"}),
		el(atom.Title, nil, txt(title)),
		el(atom.Style, nil, txt(stylesheet)),
	)

	body := el(atom.Body, nil)
	if s.ControlsVisible() {
		body.AppendChild(controls(page, s.PageCount()))
	}

	img := el(atom.Img, []string{
		"id", "page-canvas",
		"width", strconv.Itoa(res.Image.Bounds().Dx()),
		"height", strconv.Itoa(res.Image.Bounds().Dy()),
		"alt", title,
		"src", "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
	view := el(atom.Div, []string{"id", "pdf-viewer"}, img)
	if o := s.Overlay(); o != nil {
		layer := o.Root()
		if layer.Parent != nil {
			layer.Parent.RemoveChild(layer)
		}
		view.AppendChild(layer)
	}
	body.AppendChild(view)

	list, err := noteList(notes(s.Sidecar(), page), s.Overlay())
	if err != nil {
		return nil, err
	}
	if list != nil {
		body.AppendChild(list)
	}

	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root.AppendChild(el(atom.Html, []string{"lang", "en"}, head, body))
	return root, nil
}

func controls(page, count int) *html.Node {
	button := func(id, label string, target int) *html.Node {
		attrs := []string{"id", id, "type", "button", "data-page", strconv.Itoa(target)}
		if target < 1 || target > count {
			attrs = append(attrs, "disabled", "")
		}
		return el(atom.Button, attrs, txt(label))
	}
	return el(atom.Div, []string{"id", "controls"},
		button("prev", "Previous", page-1),
		txt(" "),
		el(atom.Span, []string{"id", "page-num"}, txt(strconv.Itoa(page))),
		txt(" / "),
		el(atom.Span, []string{"id", "page-count"}, txt(strconv.Itoa(count))),
		txt(" "),
		button("next", "Next", page+1),
	)
}

// noteList renders the notes of the page's annotations. Notes are linked
// to the highlight drawn for the same text.
func noteList(records []annotation.Record, o *overlay.Overlay) (*html.Node, error) {
	if len(records) == 0 {
		return nil, nil
	}

	ids := map[string][]string{}
	if o != nil {
		for _, h := range o.Highlights() {
			ids[h.Text] = append(ids[h.Text], h.ID)
		}
	}

	list := el(atom.Div, []string{"id", "notes"})
	for _, rec := range records {
		attrs := []string{"class", "note"}
		if q := ids[rec.Text]; len(q) > 0 {
			attrs = append(attrs, "data-highlight-id", q[0])
			ids[rec.Text] = q[1:]
		}
		note := el(atom.Div, attrs, el(atom.Blockquote, nil, txt(rec.Text)))

		content, err := annotation.RenderContent(rec.Content)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(content) != "" {
			nodes, err := html.ParseFragment(strings.NewReader(content), note)
			if err != nil {
				return nil, fmt.Errorf("failed to parse note: %w", err)
			}
			for _, n := range nodes {
				note.AppendChild(n)
			}
		}
		list.AppendChild(note)
	}
	return list, nil
}

func renderPage(w io.Writer, doc *html.Node) error {
	if err := html.Render(w, doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func el(a atom.Atom, attrs []string, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func txt(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
