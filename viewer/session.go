package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/pdfannotate/annotation"
	"github.com/tsawler/pdfannotate/document"
	"github.com/tsawler/pdfannotate/model"
	"github.com/tsawler/pdfannotate/overlay"
	"github.com/tsawler/pdfannotate/render"
	"github.com/tsawler/pdfannotate/textlayer"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// State is the render state of a session.
type State int

const (
	// StateIdle means the current page is committed.
	StateIdle State = iota
	// StateRendering means a render cycle is in flight.
	StateRendering
)

func (s State) String() string {
	if s == StateRendering {
		return "rendering"
	}
	return "idle"
}

// Session is a viewing session over one document. It owns the document
// and closes it with the session. All methods are safe for concurrent use.
type Session struct {
	doc      *document.Document
	renderer *render.Renderer
	opts     options
	log      logrus.FieldLogger

	base   context.Context
	cancel context.CancelFunc // cancels the cycle in flight
	wg     sync.WaitGroup

	mu      sync.Mutex
	state   State
	page    int
	gen     uint64
	idle    chan struct{} // closed on the next transition to StateIdle
	closed  bool
	surface *render.Result
	layer   textlayer.Layer
	overlay *overlay.Overlay
	report  annotation.ReplayReport
	err     error
	sidecar *annotation.Sidecar
}

// Open starts a session on doc and begins rendering the start page. Use
// Wait to block until it is shown.
func Open(ctx context.Context, doc *document.Document, opts ...Option) (*Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		doc:      doc,
		renderer: render.New(render.WithLogger(o.log)),
		opts:     o,
		log:      o.log,
		base:     context.WithoutCancel(ctx),
		sidecar:  o.sidecar,
	}

	if o.sidecarPath != "" {
		sc, err := annotation.Load(o.sidecarPath)
		if err != nil {
			return nil, err
		}
		s.sidecar = sc
		s.log.WithFields(logrus.Fields{
			"records": len(sc.Annotations),
			"path":    o.sidecarPath,
		}).Debug("sidecar loaded")
	}

	start := min(max(o.startPage, 1), doc.PageCount())

	s.mu.Lock()
	s.start(start)
	s.mu.Unlock()
	return s, nil
}

// State returns the render state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentPage returns the page being shown, or being rendered to be shown.
func (s *Session) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// PageCount returns the number of pages in the document.
func (s *Session) PageCount() int {
	return s.doc.PageCount()
}

// ControlsVisible reports whether navigation controls are shown. A single
// page document has none.
func (s *Session) ControlsVisible() bool {
	return s.PageCount() > 1
}

// Generation returns the number of the latest render cycle.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Next moves to the following page. It reports false and does nothing
// while rendering or on the last page.
func (s *Session) Next() bool {
	return s.step(1)
}

// Previous moves to the preceding page. It reports false and does nothing
// while rendering or on the first page.
func (s *Session) Previous() bool {
	return s.step(-1)
}

func (s *Session) step(delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state == StateRendering {
		return false
	}
	n := s.page + delta
	if n < 1 || n > s.doc.PageCount() {
		return false
	}
	s.start(n)
	return true
}

// GoTo moves to page n, superseding any render in flight.
func (s *Session) GoTo(n int) error {
	if n < 1 || n > s.doc.PageCount() {
		return fmt.Errorf("%w: page %d of %d", document.ErrPageIndexOutOfRange, n, s.doc.PageCount())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.start(n)
	return nil
}

// Wait blocks until the session is idle or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	ch := s.idle
	s.mu.Unlock()

	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Surface returns the last successfully rendered page, or nil.
func (s *Session) Surface() *render.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface
}

// Layer returns the text layer of the committed page.
func (s *Session) Layer() textlayer.Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layer
}

// Overlay returns the overlay of the committed page, or nil before the
// first commit.
func (s *Session) Overlay() *overlay.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlay
}

// Viewport returns the viewport of the committed page.
func (s *Session) Viewport() model.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layer.Viewport
}

// Err returns the error of the last committed cycle, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ReplayReport returns the outcome of replaying annotations onto the
// committed page.
func (s *Session) ReplayReport() annotation.ReplayReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// Sidecar returns the session's annotations, or nil when none are
// configured.
func (s *Session) Sidecar() *annotation.Sidecar {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sidecar
}

// Document returns the session's document.
func (s *Session) Document() *document.Document {
	return s.doc
}

// OnPointerUp turns the selection into a highlight on the committed page
// and records it with note as its content. Empty selections are ignored
// and return nil. With a sidecar file configured the record is saved.
func (s *Session) OnPointerUp(sel overlay.Selection, note string) (*annotation.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if s.overlay == nil {
		return nil, nil
	}
	h, err := s.overlay.OnPointerUp(sel)
	if err != nil || h == nil {
		return nil, err
	}

	rec := annotation.FromHighlight(*h, note)
	if s.sidecar == nil {
		return &rec, nil
	}
	s.sidecar.Add(rec)
	if s.opts.sidecarPath != "" {
		if err := annotation.Save(s.opts.sidecarPath, s.sidecar); err != nil {
			return &rec, err
		}
	}
	s.log.WithFields(logrus.Fields{
		"page":    rec.Page,
		"records": len(s.sidecar.Annotations),
	}).Info("annotation added")
	return &rec, nil
}

// Close cancels any render in flight, waits for it and closes the
// document, and the recognizer if it is an io.Closer.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
	err := s.doc.Close()
	if c, ok := s.opts.ocr.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}
