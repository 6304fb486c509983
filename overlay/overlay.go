package overlay

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/pdfannotate/textlayer"
)

const (
	// LayerID is the id of the text layer container
	LayerID = "text-layer"
	// RunClass marks the element of one text node
	RunClass = "text-run"
	// HighlightClass marks highlight spans
	HighlightClass = "highlight"
)

// Overlay is the materialized text layer of one page.
// It is not safe for concurrent use.
type Overlay struct {
	page  int
	layer textlayer.Layer

	root    *html.Node
	runs    []*html.Node
	runeLen []int
	byID    map[string]int

	highlights []Highlight
	seq        int
}

// Materialize builds the DOM for a synthesized layer of page.
func Materialize(layer textlayer.Layer, page int) *Overlay {
	o := &Overlay{
		page:    page,
		layer:   layer,
		runeLen: make([]int, len(layer.Nodes)),
		byID:    make(map[string]int, len(layer.Nodes)),
	}

	o.root = element(atom.Div,
		"id", LayerID,
		"data-page", strconv.Itoa(page),
		"style", containerStyle(layer),
	)

	for i, n := range layer.Nodes {
		div := element(atom.Div,
			"class", RunClass,
			"data-index", strconv.Itoa(i),
			"data-id", n.ID,
			"dir", n.Dir.Attr(),
			"style", runStyle(n),
		)
		if n.Text != "" {
			div.AppendChild(textNode(n.Text))
		}
		o.root.AppendChild(div)
		o.runs = append(o.runs, div)
		o.runeLen[i] = utf8.RuneCountInString(n.Text)
		o.byID[n.ID] = i
	}
	return o
}

// Page returns the page number the overlay belongs to.
func (o *Overlay) Page() int {
	return o.page
}

// Layer returns the layout the overlay was built from.
func (o *Overlay) Layer() textlayer.Layer {
	return o.layer
}

// Root returns the text layer element.
func (o *Overlay) Root() *html.Node {
	return o.root
}

// NodeCount returns the number of text nodes.
func (o *Overlay) NodeCount() int {
	return len(o.runs)
}

// NodeText returns the text of node i.
func (o *Overlay) NodeText(i int) (string, error) {
	if i < 0 || i >= len(o.runs) {
		return "", fmt.Errorf("%w: node %d of %d", ErrInvalidRange, i, len(o.runs))
	}
	return o.layer.Nodes[i].Text, nil
}

// NodeID returns the stable identifier of node i, or "" when out of range.
func (o *Overlay) NodeID(i int) string {
	if i < 0 || i >= len(o.runs) {
		return ""
	}
	return o.layer.Nodes[i].ID
}

// NodeIndex returns the index of the node with the given identifier.
func (o *Overlay) NodeIndex(id string) (int, bool) {
	i, ok := o.byID[id]
	return i, ok
}

// Render writes the text layer element as HTML.
func (o *Overlay) Render(w io.Writer) error {
	return html.Render(w, o.root)
}

// HTML returns the text layer element as an HTML string.
func (o *Overlay) HTML() string {
	var b strings.Builder
	if err := o.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func containerStyle(l textlayer.Layer) string {
	return fmt.Sprintf("left: %spx; top: %spx; width: %dpx; height: %dpx; transform: scale(%s); transform-origin: 0 0",
		num(l.Left), num(l.Top), l.Width, l.Height, num(l.Transform))
}

func runStyle(n textlayer.Node) string {
	transform := "scaleX(" + num(n.ScaleX) + ")"
	if n.Angle != 0 {
		transform = "rotate(" + num(n.Angle) + "deg) " + transform
	}
	family := n.FontFamily
	if strings.ContainsAny(family, " ,") {
		family = strconv.Quote(family)
	}
	return fmt.Sprintf("left: %spx; top: %spx; font-size: %spx; font-family: %s; transform: %s",
		num(n.Left), num(n.Top), num(n.FontSize), family, transform)
}

// num formats a CSS number with at most three decimals
func num(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
