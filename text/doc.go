// Package text extracts positioned text runs from PDF content streams.
//
// The [Extractor] processes content stream operations and produces one
// [TextItem] per text showing operator, in stream order:
//
//	ex := text.NewExtractor()
//	ex.RegisterFontsFromPage(page, resolver)
//	content, err := ex.ExtractFromBytes(data)
//
// Each item carries its string, the matrix mapping glyph space to user
// space at the start of the run, its width and height in user space, and
// render hints (fill color, render mode). A TJ array becomes a single item;
// adjustments wider than a fifth of an em are read as word spaces.
// Marked-content operators (BMC, BDC, EMC) produce boundary items without a
// transform. Form XObjects are followed in place.
//
// The extractor embeds a graphicsstate.Interpreter. A renderer can set
// OnPaint on it and OnItem on the extractor to see paths and text in
// paint order from a single pass over the stream.
//
// # Text Direction
//
// [DetectDirection] classifies strings by their strong bidi characters
// (golang.org/x/text/unicode/bidi). Items set in vertical fonts are TTB.
package text
