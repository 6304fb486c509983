// Package pdfannotate provides a fluent API for viewing PDF files and
// annotating their text.
//
// Basic usage:
//
//	s, err := pdfannotate.Open("report.pdf").View(ctx)
//	if err != nil {
//	    // handle error
//	}
//	defer s.Close()
//	s.Wait(ctx)
//
// With options:
//
//	s, err := pdfannotate.Open("report.paj").
//	    Scale(2).
//	    Page(3).
//	    Logger(logger).
//	    OCR().
//	    View(ctx)
//
// Opening a .paj sidecar opens the PDF next to it and replays its
// annotations. Opening a PDF uses its sidecar when one exists; see
// [Viewer.Bootstrap] to create it.
//
// For finer control, the document, render, textlayer, overlay, annotation
// and viewer packages can be used directly.
package pdfannotate

import (
	"github.com/tsawler/pdfannotate/document"
)

// Open returns a Viewer for the PDF or sidecar file at filename.
//
// Example:
//
//	n, err := pdfannotate.Open("report.pdf").PageCount(ctx)
func Open(filename string) *Viewer {
	return &Viewer{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromBytes returns a Viewer for a document already in memory. It has no
// sidecar unless one is set with Sidecar.
//
// Example:
//
//	s, err := pdfannotate.FromBytes(data).Scale(1).View(ctx)
func FromBytes(data []byte) *Viewer {
	return &Viewer{
		data:     data,
		fromData: true,
		options:  defaultOptions(),
	}
}

// FromDocument returns a Viewer over an already loaded document. The
// session created by View takes ownership of doc.
func FromDocument(doc *document.Document) *Viewer {
	return &Viewer{
		doc:     doc,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := pdfannotate.Must(pdfannotate.Open("report.pdf").PageCount(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
