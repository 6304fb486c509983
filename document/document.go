package document

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/unicode"

	"github.com/tsawler/pdfannotate/core"
	"github.com/tsawler/pdfannotate/format"
	"github.com/tsawler/pdfannotate/reader"
)

var (
	// ErrDocumentLoad is returned when bytes cannot be opened as a PDF.
	ErrDocumentLoad = errors.New("document load failed")

	// ErrPageIndexOutOfRange is returned for page numbers outside
	// [1, PageCount].
	ErrPageIndexOutOfRange = errors.New("page index out of range")
)

// MaxVersion is the newest PDF version Load accepts.
var MaxVersion = reader.PDFVersion{Major: 2, Minor: 0}

// Document is an opened PDF. It is safe for concurrent use.
type Document struct {
	r         *reader.Reader
	pageCount int
	log       logrus.FieldLogger

	closeOnce sync.Once
	closeErr  error
}

// Load parses data as a PDF document.
func Load(ctx context.Context, data []byte, opts ...Option) (*Document, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := load(ctx, data, o)
	if err != nil {
		o.log.WithError(err).WithField("bytes", len(data)).Error("failed to load document")
		return nil, err
	}

	o.log.WithFields(logrus.Fields{
		"pages":   doc.pageCount,
		"version": doc.r.Version().String(),
	}).Debug("document loaded")
	return doc, nil
}

func load(ctx context.Context, data []byte, o options) (*Document, error) {
	if format.DetectFromMagic(data) != format.PDF {
		return nil, fmt.Errorf("%w: missing %%PDF header", ErrDocumentLoad)
	}

	r, err := reader.NewReaderFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocumentLoad, err)
	}

	if v := r.Version(); newerThan(v, MaxVersion) {
		r.Close()
		return nil, fmt.Errorf("%w: unsupported PDF version %s", ErrDocumentLoad, v)
	}

	if err := ctx.Err(); err != nil {
		r.Close()
		return nil, err
	}

	n, err := r.PageCount()
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("%w: %w", ErrDocumentLoad, err)
	}
	if n == 0 {
		r.Close()
		return nil, fmt.Errorf("%w: document has no pages", ErrDocumentLoad)
	}

	return &Document{r: r, pageCount: n, log: o.log}, nil
}

func newerThan(v, max reader.PDFVersion) bool {
	if v.Major != max.Major {
		return v.Major > max.Major
	}
	return v.Minor > max.Minor
}

// PageCount returns the number of pages, at least 1.
func (d *Document) PageCount() int {
	return d.pageCount
}

// Version returns the version from the file header.
func (d *Document) Version() reader.PDFVersion {
	return d.r.Version()
}

// Reader exposes the underlying object reader.
func (d *Document) Reader() *reader.Reader {
	return d.r
}

// Info returns the title and author from the document information
// dictionary. Missing entries are empty.
func (d *Document) Info() (title, author string) {
	info, err := d.r.GetInfo()
	if err != nil || info == nil {
		return "", ""
	}
	if s, ok := info.GetString("Title"); ok {
		title = textString(s)
	}
	if s, ok := info.GetString("Author"); ok {
		author = textString(s)
	}
	return title, author
}

// textString decodes a PDF text string. Strings starting with a UTF-16BE
// byte order mark are decoded, anything else is taken as is.
func textString(s core.String) string {
	b := []byte(s)
	if len(b) >= 2 && b[0] == 0xfe && b[1] == 0xff {
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		if out, err := dec.Bytes(b); err == nil {
			return string(out)
		}
	}
	return string(b)
}

// Page fetches page n (1-based).
func (d *Document) Page(ctx context.Context, n int) (*Page, error) {
	if n < 1 || n > d.pageCount {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageIndexOutOfRange, n, d.pageCount)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := d.r.GetPage(n - 1)
	if err != nil {
		return nil, fmt.Errorf("failed to get page %d: %w", n, err)
	}
	return newPage(d, n, p)
}

// Close releases the document. It is safe to call more than once.
func (d *Document) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = d.r.Close()
	})
	return d.closeErr
}
