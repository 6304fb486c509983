// Package textlayer computes where the selectable text of a rendered page
// goes. It is pure layout: given the text items of a page and the
// viewport it was rendered with, [Synthesize] returns positioned [Node]s
// and the placement of the layer container. Turning a [Layer] into DOM
// nodes is left to package overlay.
//
// Each positioned item is mapped through the viewport transform:
//
//	tx = item.Transform × viewport.Transform
//	Left = tx[4], Top = tx[5], FontSize = tx[0]
//	ScaleX = item.Width / (runes(item.Str) × tx[0])
//
// Items without a transform (marked-content boundaries) never become
// nodes; they are only counted in Layer.Skipped.
package textlayer
