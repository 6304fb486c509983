// Package viewer drives a viewing session over a loaded document: the
// current page, its rendered surface, its text overlay and the annotations
// replayed onto it.
//
// A [Session] is a two-state machine. Navigating starts a render cycle
// (StateRendering) that rasterizes the page and synthesizes its text layer
// in parallel; when both finish the results are committed together and the
// session returns to StateIdle. Every cycle carries a generation number.
// [Session.GoTo] supersedes a cycle in flight by cancelling it, and results
// arriving for an older generation are discarded, so a slow render never
// overwrites a newer page.
//
//	s, err := viewer.Open(ctx, doc, viewer.WithSidecar("report.paj"))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//	s.Wait(ctx)
//	s.Next()
//
// Next and Previous are no-ops while rendering and at the document bounds.
// A failed render is logged and leaves the previous surface in place.
package viewer
