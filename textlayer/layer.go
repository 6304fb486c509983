package textlayer

import (
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/tsawler/pdfannotate/model"
	"github.com/tsawler/pdfannotate/text"
)

// Calibration shifts and scales the text layer relative to the rendered
// surface. The values are configuration, tuned by eye against the
// raster.
type Calibration struct {
	OffsetX      float64
	OffsetY      float64
	OverlayScale float64
}

// DefaultCalibration returns the stock calibration.
func DefaultCalibration() Calibration {
	return Calibration{OffsetX: 0, OffsetY: -12, OverlayScale: 0.65}
}

// Node is one positioned text run.
type Node struct {
	// Index is the position among the nodes of the layer
	Index int
	// ItemIndex is the position among the raw text items of the page
	ItemIndex int
	// ID is stable across renders of the same page
	ID string

	Text       string
	Left       float64
	Top        float64
	FontSize   float64
	FontFamily string
	// ScaleX stretches the run horizontally to its declared width
	ScaleX float64
	// Angle is the rotation of the baseline in degrees
	Angle float64
	Dir   text.Direction
}

// Layer is the synthesized text layer of one page.
type Layer struct {
	Nodes []Node

	// Skipped counts items that had no transform
	Skipped int

	// Container placement in pixels
	Left, Top     float64
	Width, Height int
	// Transform is the scale factor applied to the container
	Transform float64

	Viewport model.Viewport
}

// NodeID returns the identifier of the node built from raw item i.
func NodeID(itemIndex int) string {
	return "r" + strconv.Itoa(itemIndex)
}

// Synthesize lays out the text of a page for a viewport. origin is the
// position of the rendered surface within its container.
func Synthesize(content *text.TextContent, vp model.Viewport, origin model.Point, cal Calibration) Layer {
	layer := Layer{
		Left:      origin.X + cal.OffsetX,
		Top:       origin.Y + cal.OffsetY,
		Width:     vp.PixelWidth(),
		Height:    vp.PixelHeight(),
		Transform: vp.Scale * cal.OverlayScale,
		Viewport:  vp,
	}
	if content == nil {
		return layer
	}

	for i, item := range content.Items {
		if !item.HasTransform() {
			layer.Skipped++
			continue
		}
		layer.Nodes = append(layer.Nodes, place(item, i, len(layer.Nodes), content, vp))
	}
	return layer
}

func place(item text.TextItem, itemIndex, index int, content *text.TextContent, vp model.Viewport) Node {
	tx := item.Transform.Multiply(vp.Transform)
	style := content.Style(item.FontName)

	angle := math.Atan2(tx[1], tx[0]) * 180 / math.Pi
	if style.Vertical {
		angle += 90
	}

	return Node{
		Index:      index,
		ItemIndex:  itemIndex,
		ID:         NodeID(itemIndex),
		Text:       item.Str,
		Left:       tx[4],
		Top:        tx[5],
		FontSize:   tx[0],
		FontFamily: style.FontFamily,
		ScaleX:     scaleX(item, tx[0]),
		Angle:      angle,
		Dir:        item.Dir,
	}
}

func scaleX(item text.TextItem, fontSize float64) float64 {
	d := float64(utf8.RuneCountInString(item.Str)) * fontSize
	if d == 0 {
		return 1
	}
	return item.Width / d
}

// NodeByID returns the node with the given identifier.
func (l *Layer) NodeByID(id string) (Node, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Text returns the text of all nodes joined by newlines.
func (l *Layer) Text() string {
	var b []byte
	for i, n := range l.Nodes {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, n.Text...)
	}
	return string(b)
}
