package viewer

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/pdfannotate/annotation"
	"github.com/tsawler/pdfannotate/document"
	"github.com/tsawler/pdfannotate/overlay"
	"github.com/tsawler/pdfannotate/render"
	"github.com/tsawler/pdfannotate/text"
	"github.com/tsawler/pdfannotate/textlayer"
)

// cycle holds what one render cycle produced
type cycle struct {
	gen  uint64
	page int

	handle   *document.Page
	fetchErr error

	result    *render.Result
	renderErr error

	content *text.TextContent
	textErr error
}

// start begins a render cycle for page n. s.mu must be held.
func (s *Session) start(n int) {
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	ctx, cancel := context.WithCancel(s.base)
	s.cancel = cancel
	s.page = n
	if s.state == StateIdle {
		s.state = StateRendering
		s.idle = make(chan struct{})
	}

	s.wg.Add(1)
	go func(gen uint64) {
		defer s.wg.Done()
		defer cancel()
		s.commit(s.run(ctx, gen, n))
	}(s.gen)
}

// run renders the page and extracts its text concurrently
func (s *Session) run(ctx context.Context, gen uint64, n int) cycle {
	c := cycle{gen: gen, page: n}

	c.handle, c.fetchErr = s.doc.Page(ctx, n)
	if c.fetchErr != nil {
		return c
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.result, c.renderErr = s.renderer.RenderPage(ctx, c.handle, s.opts.scale)
	}()
	go func() {
		defer wg.Done()
		c.content, c.textErr = c.handle.TextContent(ctx)
	}()
	wg.Wait()

	if s.needsOCR(c) {
		content, err := s.opts.ocr.PageText(ctx, c.result.Image, c.result.Viewport)
		if err != nil {
			s.log.WithError(err).WithField("page", n).Warn("OCR failed")
		} else {
			c.content = content
		}
	}
	return c
}

// needsOCR reports whether a page showed images but no positioned text
func (s *Session) needsOCR(c cycle) bool {
	if s.opts.ocr == nil || c.renderErr != nil || c.result == nil || c.result.Images == 0 {
		return false
	}
	return c.textErr != nil || c.content == nil || c.content.Positioned() == 0
}

// commit installs the results of a cycle if it is still the current one
func (s *Session) commit(c cycle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.WithFields(logrus.Fields{"page": c.page, "generation": c.gen})
	if c.gen != s.gen {
		log.Debug("discarding stale render")
		return
	}
	defer s.settle()

	if s.closed {
		return
	}
	if c.fetchErr != nil {
		log.WithError(c.fetchErr).Warn("page fetch failed")
		s.err = c.fetchErr
		return
	}

	s.err = nil
	if c.renderErr != nil {
		log.WithError(c.renderErr).Warn("render failed; keeping previous surface")
		s.err = c.renderErr
	} else {
		s.surface = c.result
	}

	if c.textErr != nil && c.content == nil {
		log.WithError(c.textErr).Warn("text extraction failed")
		if s.err == nil {
			s.err = c.textErr
		}
	}

	vp := c.handle.Viewport(s.opts.scale)
	layer := textlayer.Synthesize(c.content, vp, s.opts.origin, s.opts.calibration)
	if layer.Skipped > 0 {
		log.WithField("skipped", layer.Skipped).Debug("skipped text items without a transform")
	}
	s.layer = layer
	s.overlay = overlay.Materialize(layer, c.page)

	s.report = annotation.ReplayReport{}
	if s.sidecar != nil {
		s.report = annotation.Replay(s.overlay, s.sidecar.Annotations)
		for _, err := range s.report.Errors {
			log.WithError(err).Warn("annotation not replayed")
		}
	}

	log.WithFields(logrus.Fields{
		"items":   len(layer.Nodes),
		"records": s.report.Applied,
	}).Debug("page committed")
}

// settle returns the session to idle. s.mu must be held.
func (s *Session) settle() {
	s.state = StateIdle
	if s.idle != nil {
		close(s.idle)
		s.idle = nil
	}
}
