package reader

import (
	"bytes"
	"fmt"

	"github.com/tsawler/pdfannotate/core"
	"github.com/tsawler/pdfannotate/pages"
	"github.com/tsawler/pdfannotate/text"
)

// tree walks the page tree on first use. Later callers, on any
// goroutine, only read the flattened result.
func (r *Reader) tree() (*pages.PageTree, error) {
	r.treeOnce.Do(func() {
		catalog, err := r.GetCatalog()
		if err != nil {
			r.treeErr = err
			return
		}
		obj, err := r.Resolve(catalog.Get("Pages"))
		if err != nil {
			r.treeErr = fmt.Errorf("/Pages: %w", err)
			return
		}
		root, ok := obj.(core.Dict)
		if !ok {
			r.treeErr = fmt.Errorf("/Pages is %T, want dictionary", obj)
			return
		}
		t := pages.NewPageTree(root, r)
		if _, err := t.Pages(); err != nil {
			r.treeErr = err
			return
		}
		r.pageTree = t
	})
	return r.pageTree, r.treeErr
}

// PageCount counts the leaves actually present in the page tree rather
// than trusting /Count.
func (r *Reader) PageCount() (int, error) {
	t, err := r.tree()
	if err != nil {
		return 0, err
	}
	all, err := t.Pages()
	return len(all), err
}

// GetPage returns the page at a zero-based index.
func (r *Reader) GetPage(index int) (*pages.Page, error) {
	t, err := r.tree()
	if err != nil {
		return nil, err
	}
	return t.GetPage(index)
}

// PageContent decodes a page's content streams and joins them with a
// newline, so an operator split across two streams still parses. Non
// stream entries are skipped.
func (r *Reader) PageContent(page *pages.Page) ([]byte, error) {
	parts, err := page.Contents()
	if err != nil {
		return nil, err
	}
	var chunks [][]byte
	for _, obj := range parts {
		s, ok := obj.(*core.Stream)
		if !ok {
			continue
		}
		data, err := s.Decoded()
		if err != nil {
			return nil, fmt.Errorf("content stream: %w", err)
		}
		chunks = append(chunks, data)
	}
	if len(chunks) == 0 {
		return nil, nil
	}
	return bytes.Join(chunks, []byte{'\n'}), nil
}

// NewPageExtractor returns an extractor that knows the page's fonts and
// form XObjects. Fonts that fail to load fall back to standard metrics.
func (r *Reader) NewPageExtractor(page *pages.Page) *text.Extractor {
	ex := text.NewExtractor()
	_ = ex.RegisterFontsFromPage(page, r.ResolveReference)
	return ex
}

// ExtractTextContent returns the page's text items in content order.
func (r *Reader) ExtractTextContent(page *pages.Page) (*text.TextContent, error) {
	data, err := r.PageContent(page)
	if err != nil {
		return nil, err
	}
	ex := r.NewPageExtractor(page)
	if len(data) == 0 {
		return ex.Content(), nil
	}
	return ex.ExtractFromBytes(data)
}
