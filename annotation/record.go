package annotation

import (
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/pdfannotate/overlay"
)

// ErrRecordResolution is matched by every error returned when a record
// cannot be mapped back onto a text layer.
var ErrRecordResolution = errors.New("record resolution failed")

// Record is one persisted annotation. Node indices and offsets address the
// text layer of Page the same way overlay.Position does.
type Record struct {
	Page        int    `json:"page"`
	StartNode   int    `json:"start-node"`
	StartOffset int    `json:"start-offset"`
	EndNode     int    `json:"end-node"`
	EndOffset   int    `json:"end-offset"`
	Text        string `json:"text"`
	Content     string `json:"content"`

	// StartID and EndID locate the boundary nodes by stable identifier.
	// Older files do not carry them.
	StartID string `json:"start-id,omitempty"`
	EndID   string `json:"end-id,omitempty"`
}

// FromHighlight builds the record for a highlight with the given note.
func FromHighlight(h overlay.Highlight, content string) Record {
	r := h.Range.Ordered()
	return Record{
		Page:        h.Page,
		StartNode:   r.Start.Node,
		StartOffset: r.Start.Offset,
		EndNode:     r.End.Node,
		EndOffset:   r.End.Offset,
		Text:        h.Text,
		Content:     content,
		StartID:     h.StartID,
		EndID:       h.EndID,
	}
}

// Range returns the record's positions as an overlay range.
func (r Record) Range() overlay.Range {
	return overlay.Range{
		Start: overlay.Position{Node: r.StartNode, Offset: r.StartOffset},
		End:   overlay.Position{Node: r.EndNode, Offset: r.EndOffset},
	}
}

// Reasons reported by ResolutionError.
const (
	ReasonPageMismatch   = "page mismatch"
	ReasonNodeOutOfRange = "node index out of range"
	ReasonOffsetRange    = "offset out of range"
	ReasonTextMismatch   = "text mismatch"
	ReasonEmpty          = "empty range"
)

// ResolutionError describes why a record could not be resolved.
// Index is the record's position in the list being replayed, or -1.
type ResolutionError struct {
	Index  int
	Page   int
	Reason string
	Detail string
}

func (e *ResolutionError) Error() string {
	msg := "annotation"
	if e.Index >= 0 {
		msg += fmt.Sprintf(" %d", e.Index)
	}
	msg += fmt.Sprintf(" on page %d: %s", e.Page, e.Reason)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is makes ResolutionError match ErrRecordResolution.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrRecordResolution
}

// Resolve maps a record onto the overlay's text layer and checks that the
// text it selects still matches. Stable identifiers take precedence over
// node indices when the overlay knows them.
func Resolve(o *overlay.Overlay, rec Record) (overlay.Range, error) {
	return resolve(o, -1, rec)
}

func resolve(o *overlay.Overlay, index int, rec Record) (overlay.Range, error) {
	fail := func(reason, format string, args ...any) (overlay.Range, error) {
		return overlay.Range{}, &ResolutionError{
			Index:  index,
			Page:   rec.Page,
			Reason: reason,
			Detail: fmt.Sprintf(format, args...),
		}
	}

	if rec.Page != o.Page() {
		return fail(ReasonPageMismatch, "overlay shows page %d", o.Page())
	}

	start := locate(o, rec.StartID, rec.StartNode)
	end := locate(o, rec.EndID, rec.EndNode)
	n := o.NodeCount()
	for _, k := range []int{start, end} {
		if k < 0 || k >= n {
			return fail(ReasonNodeOutOfRange, "node %d of %d", k, n)
		}
	}

	r := overlay.Range{
		Start: overlay.Position{Node: start, Offset: rec.StartOffset},
		End:   overlay.Position{Node: end, Offset: rec.EndOffset},
	}
	got, err := o.TextInRange(r)
	if err != nil {
		return fail(ReasonOffsetRange, "%s-%s", r.Start, r.End)
	}

	if norm.NFC.String(got) != norm.NFC.String(rec.Text) {
		return fail(ReasonTextMismatch, "have %q, want %q", got, rec.Text)
	}
	return r, nil
}

// locate finds a node by id, falling back to its recorded index
func locate(o *overlay.Overlay, id string, index int) int {
	if id != "" {
		if k, ok := o.NodeIndex(id); ok {
			return k
		}
	}
	return index
}

// ReplayReport summarizes a replay. Applied and Skipped count the records
// that belong to the overlay's page; Errors holds one entry per skip.
type ReplayReport struct {
	Applied int
	Skipped int
	Errors  []error
}

// Replay clears the overlay's highlights and re-applies every record of
// its page. Records for other pages are ignored. A record that fails to
// resolve or wrap is skipped and the replay continues.
func Replay(o *overlay.Overlay, records []Record) ReplayReport {
	o.ClearHighlights()

	var rep ReplayReport
	for i, rec := range records {
		if rec.Page != o.Page() {
			continue
		}
		r, err := resolve(o, i, rec)
		if err == nil {
			if _, herr := o.Highlight(r); herr != nil {
				err = &ResolutionError{Index: i, Page: rec.Page, Reason: ReasonEmpty, Detail: herr.Error()}
			}
		}
		if err != nil {
			rep.Skipped++
			rep.Errors = append(rep.Errors, err)
			continue
		}
		rep.Applied++
	}
	return rep
}
