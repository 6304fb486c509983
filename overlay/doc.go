// Package overlay materializes a text layer as a retained HTML DOM and
// turns text selections into highlight spans.
//
// [Materialize] builds a div#text-layer element holding one absolutely
// positioned div per text node, built from golang.org/x/net/html nodes.
// Positions inside the layer are addressed by node index and character
// offset, counted in runes:
//
//	o := overlay.Materialize(layer, 1)
//	h, err := o.OnPointerUp(overlay.Selection{Ranges: []overlay.Range{
//	    {Start: overlay.Position{Node: 0, Offset: 0}, End: overlay.Position{Node: 0, Offset: 3}},
//	}})
//
// Highlighting splits the text fragments at the range boundaries and wraps
// every fragment inside the range in a span.highlight. Text outside the
// range is left alone, and earlier highlights are kept: a new span nests
// inside an older one where they overlap. [Overlay.ClearHighlights]
// unwraps every span and merges the text back to its original form.
package overlay
