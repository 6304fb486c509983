package font

import (
	"fmt"

	"github.com/tsawler/pdfannotate/core"
)

// Resolver fetches the target of an indirect reference.
type Resolver func(core.IndirectRef) (core.Object, error)

// Load reads a font resource dictionary. Type1, MMType1, TrueType and
// Type3 fonts are read as simple fonts with one-byte codes and Type0 fonts
// as composite fonts with two-byte codes. A damaged ToUnicode CMap or
// descriptor degrades decoding but does not fail the load.
func Load(name string, dict core.Dict, resolve Resolver) (*Font, error) {
	subtype, _ := dict.GetName("Subtype")
	baseFont := nameOf(dict.Get("BaseFont"))

	f := NewFont(name, baseFont, string(subtype))
	var err error
	switch subtype {
	case "Type1", "MMType1", "TrueType", "Type3":
		err = f.loadSimple(dict, resolve)
	case "Type0":
		err = f.loadComposite(dict, resolve)
	default:
		return nil, fmt.Errorf("unsupported font subtype %q", subtype)
	}
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", name, err)
	}

	if obj := deref(dict.Get("ToUnicode"), resolve); obj != nil {
		if s, ok := obj.(*core.Stream); ok {
			if cmap, err := ParseToUnicodeCMap(s); err == nil {
				f.ToUnicodeCMap = cmap
			}
		}
	}
	return f, nil
}

func (f *Font) loadSimple(dict core.Dict, resolve Resolver) error {
	if f.Subtype == "Type1" || f.Subtype == "MMType1" {
		f.Encoding = "StandardEncoding"
	}

	switch enc := deref(dict.Get("Encoding"), resolve).(type) {
	case nil:
	case core.Name:
		f.Encoding = string(enc)
	case core.Dict:
		if base, ok := enc.GetName("BaseEncoding"); ok {
			f.Encoding = string(base)
		}
		if diffs, ok := deref(enc.Get("Differences"), resolve).(core.Array); ok {
			f.enc = NewCustomEncodingFromGlyphs(GetEncoding(f.Encoding), differences(diffs))
		}
	default:
		return fmt.Errorf("invalid encoding %T", enc)
	}

	if f.Subtype == "Type3" {
		if m, ok := deref(dict.Get("FontMatrix"), resolve).(core.Array); ok && len(m) == 6 {
			f.widthScale = number(m[0]) * 1000
		}
	}

	f.Descriptor = loadDescriptor(dict, resolve)
	if f.Descriptor != nil {
		f.missingWidth = f.Descriptor.MissingWidth
	}

	widths, ok := deref(dict.Get("Widths"), resolve).(core.Array)
	if !ok {
		return nil
	}
	first, _ := dict.GetInt("FirstChar")
	lastChar := int(first) + len(widths) - 1
	if last, ok := dict.GetInt("LastChar"); ok && int(last) < lastChar {
		lastChar = int(last)
	}
	f.codeWidths = make(map[int]float64, len(widths))
	for i, w := range widths {
		code := int(first) + i
		if code > lastChar {
			break
		}
		v := deref(w, resolve)
		switch v.(type) {
		case core.Int, core.Real:
			f.codeWidths[code] = number(v)
		default:
			return fmt.Errorf("width %d is %T", i, v)
		}
	}
	return nil
}

// differences reads an encoding Differences array: a code followed by the
// glyph names of consecutive codes.
func differences(arr core.Array) map[byte]string {
	names := make(map[byte]string)
	code := 0
	for _, item := range arr {
		switch v := item.(type) {
		case core.Int:
			code = int(v)
		case core.Name:
			if code >= 0 && code <= 255 {
				names[byte(code)] = string(v)
			}
			code++
		}
	}
	return names
}

func (f *Font) loadComposite(dict core.Dict, resolve Resolver) error {
	f.Encoding = "Identity-H"
	if enc, ok := deref(dict.Get("Encoding"), resolve).(core.Name); ok {
		f.Encoding = string(enc)
	}

	kids, ok := deref(dict.Get("DescendantFonts"), resolve).(core.Array)
	if !ok || len(kids) == 0 {
		return fmt.Errorf("missing DescendantFonts")
	}
	desc, ok := deref(kids[0], resolve).(core.Dict)
	if !ok {
		return fmt.Errorf("descendant font is %T", deref(kids[0], resolve))
	}

	f.Descriptor = loadDescriptor(desc, resolve)
	if dw := deref(desc.Get("DW"), resolve); dw != nil {
		f.cid.dw = number(dw)
	}
	if w, ok := deref(desc.Get("W"), resolve).(core.Array); ok {
		f.cid.ranges = parseW(w, resolve)
	}
	return nil
}

// parseW reads a CIDFont /W array, whose entries are either
// "c [w1 w2 ...]" or "cfirst clast w".
func parseW(arr core.Array, resolve Resolver) []cidRange {
	var out []cidRange
	for i := 0; i+1 < len(arr); {
		first := int(number(arr[i]))
		if list, ok := deref(arr[i+1], resolve).(core.Array); ok {
			widths := make([]float64, len(list))
			for j, w := range list {
				widths[j] = number(w)
			}
			if len(widths) > 0 {
				out = append(out, cidRange{first: first, last: first + len(widths) - 1, widths: widths})
			}
			i += 2
			continue
		}
		if i+2 >= len(arr) {
			break
		}
		out = append(out, cidRange{first: first, last: int(number(arr[i+1])), width: number(arr[i+2])})
		i += 3
	}
	return out
}

func loadDescriptor(dict core.Dict, resolve Resolver) *Descriptor {
	fd, ok := deref(dict.Get("FontDescriptor"), resolve).(core.Dict)
	if !ok {
		return nil
	}

	d := &Descriptor{
		FontName:     nameOf(fd.Get("FontName")),
		ItalicAngle:  number(fd.Get("ItalicAngle")),
		Ascent:       number(fd.Get("Ascent")),
		Descent:      number(fd.Get("Descent")),
		CapHeight:    number(fd.Get("CapHeight")),
		MissingWidth: number(fd.Get("MissingWidth")),
	}
	if flags, ok := fd.GetInt("Flags"); ok {
		d.Flags = int(flags)
	}
	if bbox, ok := deref(fd.Get("FontBBox"), resolve).(core.Array); ok && len(bbox) == 4 {
		for i := range d.FontBBox {
			d.FontBBox[i] = number(bbox[i])
		}
	}
	for _, key := range []string{"FontFile", "FontFile2", "FontFile3"} {
		if fd.Get(key) != nil {
			d.Embedded = true
		}
	}
	return d
}

func deref(obj core.Object, resolve Resolver) core.Object {
	ref, ok := obj.(core.IndirectRef)
	if !ok {
		return obj
	}
	if resolve == nil {
		return nil
	}
	target, err := resolve(ref)
	if err != nil {
		return nil
	}
	return target
}

func nameOf(obj core.Object) string {
	switch v := obj.(type) {
	case core.Name:
		return string(v)
	case core.String:
		return string(v)
	}
	return ""
}

func number(obj core.Object) float64 {
	switch v := obj.(type) {
	case core.Int:
		return float64(v)
	case core.Real:
		return float64(v)
	}
	return 0
}
