// Package font turns the character codes of shown strings into Unicode
// text and advance widths.
//
// [Load] reads a font resource dictionary. Simple fonts (Type1, TrueType,
// Type3) use one-byte codes decoded through a ToUnicode [CMap] when present,
// otherwise through their [Encoding] with any Differences applied. Widths
// come from /Widths, then from the descriptor's MissingWidth, then from the
// standard 14 metrics. Composite (Type0) fonts use two-byte codes and the
// /DW and /W widths of their descendant CIDFont.
//
//	f, err := font.Load("F1", dict, resolve)
//	for _, g := range f.Glyphs(data) {
//	    advance += g.Width / 1000 * fontSize
//	}
//
// Embedded font programs are not read.
package font
