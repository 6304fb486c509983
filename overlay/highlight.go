package overlay

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrInvalidRange is returned for positions outside the text layer.
var ErrInvalidRange = errors.New("invalid range")

// Position addresses a character boundary: Offset runes into node Node.
type Position struct {
	Node   int
	Offset int
}

// Before reports whether p comes before q in document order.
func (p Position) Before(q Position) bool {
	if p.Node != q.Node {
		return p.Node < q.Node
	}
	return p.Offset < q.Offset
}

// String formats the position as "node:offset".
func (p Position) String() string {
	return strconv.Itoa(p.Node) + ":" + strconv.Itoa(p.Offset)
}

// ParsePosition parses "node:offset".
func ParsePosition(s string) (Position, error) {
	node, offset, ok := strings.Cut(s, ":")
	if !ok {
		return Position{}, fmt.Errorf("position %q: want node:offset", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(node))
	if err != nil {
		return Position{}, fmt.Errorf("position %q: bad node: %w", s, err)
	}
	off, err := strconv.Atoi(strings.TrimSpace(offset))
	if err != nil {
		return Position{}, fmt.Errorf("position %q: bad offset: %w", s, err)
	}
	return Position{Node: n, Offset: off}, nil
}

// Range is a span of text between two positions.
type Range struct {
	Start Position
	End   Position
}

// Collapsed reports whether the range is empty by construction.
func (r Range) Collapsed() bool {
	return r.Start == r.End
}

// Ordered returns the range with Start not after End.
func (r Range) Ordered() Range {
	if r.End.Before(r.Start) {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

// Selection is the user's text selection. Only the first range is used.
type Selection struct {
	Ranges []Range
}

// Highlight is a wrapped range.
type Highlight struct {
	ID    string
	Page  int
	Range Range
	Text  string

	// StartID and EndID are the stable identifiers of the boundary nodes
	StartID string
	EndID   string

	// Segments is the number of spans the highlight was split into
	Segments int
}

// validate checks both ends of r against the layer
func (o *Overlay) validate(r Range) error {
	for _, p := range []Position{r.Start, r.End} {
		if p.Node < 0 || p.Node >= len(o.runs) {
			return fmt.Errorf("%w: node %d of %d", ErrInvalidRange, p.Node, len(o.runs))
		}
		if p.Offset < 0 || p.Offset > o.runeLen[p.Node] {
			return fmt.Errorf("%w: offset %d in node %d of length %d", ErrInvalidRange, p.Offset, p.Node, o.runeLen[p.Node])
		}
	}
	return nil
}

// bounds returns the rune span of node k covered by an ordered range
func (o *Overlay) bounds(r Range, k int) (int, int) {
	s, e := 0, o.runeLen[k]
	if k == r.Start.Node {
		s = r.Start.Offset
	}
	if k == r.End.Node {
		e = r.End.Offset
	}
	return s, e
}

func (o *Overlay) text(r Range) string {
	var b strings.Builder
	for k := r.Start.Node; k <= r.End.Node; k++ {
		s, e := o.bounds(r, k)
		if s < e {
			b.WriteString(string([]rune(o.layer.Nodes[k].Text)[s:e]))
		}
	}
	return b.String()
}

// TextInRange returns the text a range selects. Text from consecutive
// nodes is concatenated without a separator.
func (o *Overlay) TextInRange(r Range) (string, error) {
	if err := o.validate(r); err != nil {
		return "", err
	}
	return o.text(r.Ordered()), nil
}

// OnPointerUp highlights the first range of a selection. Selections
// without a range, collapsed ranges and ranges selecting no text are
// ignored and return nil.
func (o *Overlay) OnPointerUp(sel Selection) (*Highlight, error) {
	if len(sel.Ranges) == 0 {
		return nil, nil
	}
	r := sel.Ranges[0]
	if r.Collapsed() {
		return nil, nil
	}
	if err := o.validate(r); err != nil {
		return nil, err
	}
	if o.text(r.Ordered()) == "" {
		return nil, nil
	}
	return o.Highlight(r)
}

// Highlight wraps the text of r in highlight spans.
func (o *Overlay) Highlight(r Range) (*Highlight, error) {
	if err := o.validate(r); err != nil {
		return nil, err
	}
	r = r.Ordered()
	txt := o.text(r)
	if txt == "" {
		return nil, fmt.Errorf("%w: range %s-%s selects no text", ErrInvalidRange, r.Start, r.End)
	}

	o.seq++
	h := Highlight{
		ID:      "h" + strconv.Itoa(o.seq),
		Page:    o.page,
		Range:   r,
		Text:    txt,
		StartID: o.layer.Nodes[r.Start.Node].ID,
		EndID:   o.layer.Nodes[r.End.Node].ID,
	}
	for k := r.Start.Node; k <= r.End.Node; k++ {
		if s, e := o.bounds(r, k); s < e {
			h.Segments += wrap(o.runs[k], s, e, h.ID)
		}
	}

	o.highlights = append(o.highlights, h)
	return &h, nil
}

// Highlights returns the highlights applied since the last clear.
func (o *Overlay) Highlights() []Highlight {
	out := make([]Highlight, len(o.highlights))
	copy(out, o.highlights)
	return out
}

// ClearHighlights removes every highlight span, restoring the text nodes.
func (o *Overlay) ClearHighlights() {
	for _, run := range o.runs {
		unwrap(run)
		mergeText(run)
	}
	o.highlights = nil
}

// wrap splits the text fragments of run at rune offsets s and e and wraps
// each fragment inside [s, e) in its own span. It returns the number of
// spans created.
func wrap(run *html.Node, s, e int, id string) int {
	var texts []*html.Node
	collectText(run, &texts)

	created := 0
	pos := 0
	for _, t := range texts {
		runes := []rune(t.Data)
		ts, te := pos, pos+len(runes)
		pos = te

		lo, hi := max(ts, s), min(te, e)
		if lo >= hi {
			continue
		}

		parent := t.Parent
		if before := runes[:lo-ts]; len(before) > 0 {
			parent.InsertBefore(textNode(string(before)), t)
		}
		span := element(atom.Span, "class", HighlightClass, "data-highlight-id", id)
		span.AppendChild(textNode(string(runes[lo-ts : hi-ts])))
		parent.InsertBefore(span, t)
		if after := runes[hi-ts:]; len(after) > 0 {
			parent.InsertBefore(textNode(string(after)), t)
		}
		parent.RemoveChild(t)
		created++
	}
	return created
}

func collectText(n *html.Node, out *[]*html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			*out = append(*out, c)
		} else {
			collectText(c, out)
		}
	}
}

func isHighlight(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Span && attr(n, "class") == HighlightClass
}

// unwrap replaces every highlight span below n by its children
func unwrap(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			unwrap(c)
			if isHighlight(c) {
				for gc := c.FirstChild; gc != nil; {
					gn := gc.NextSibling
					c.RemoveChild(gc)
					n.InsertBefore(gc, c)
					gc = gn
				}
				n.RemoveChild(c)
			}
		}
		c = next
	}
}

// mergeText joins adjacent text children of n
func mergeText(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.TextNode && next != nil && next.Type == html.TextNode {
			c.Data += next.Data
			n.RemoveChild(next)
			continue
		}
		c = next
	}
}
