package font

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/pdfannotate/core"
)

func resolverFor(objects map[int]core.Object) Resolver {
	return func(ref core.IndirectRef) (core.Object, error) {
		if obj, ok := objects[ref.Number]; ok {
			return obj, nil
		}
		return nil, fmt.Errorf("object %d not found", ref.Number)
	}
}

func ref(n int) core.IndirectRef {
	return core.IndirectRef{Number: n}
}

func TestLoadSimpleWithDifferences(t *testing.T) {
	resolve := resolverFor(map[int]core.Object{
		5: core.Array{core.Int(600), core.Real(700.5)},
		6: core.Dict{
			"FontName":     core.Name("ABCDEF+Foo"),
			"Flags":        core.Int(34),
			"Ascent":       core.Int(700),
			"Descent":      core.Int(-200),
			"MissingWidth": core.Int(250),
			"FontBBox":     core.Array{core.Int(-10), core.Int(-200), core.Int(1000), core.Int(900)},
			"FontFile":     ref(9),
		},
	})
	dict := core.Dict{
		"Subtype":   core.Name("Type1"),
		"BaseFont":  core.Name("ABCDEF+Foo"),
		"FirstChar": core.Int(65),
		"LastChar":  core.Int(66),
		"Widths":    ref(5),
		"Encoding": core.Dict{
			"BaseEncoding": core.Name("WinAnsiEncoding"),
			"Differences":  core.Array{core.Int(65), core.Name("bullet"), core.Name("eacute")},
		},
		"FontDescriptor": ref(6),
	}

	f, err := Load("F1", dict, resolve)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []Glyph{
		{Code: 'A', Bytes: 1, Text: "•", Width: 600},
		{Code: 'B', Bytes: 1, Text: "é", Width: 700.5},
		{Code: 'C', Bytes: 1, Text: "C", Width: 250},
	}
	if diff := cmp.Diff(want, f.Glyphs([]byte("ABC"))); diff != "" {
		t.Errorf("Glyphs mismatch (-want +got):\n%s", diff)
	}

	wantDesc := &Descriptor{
		FontName:     "ABCDEF+Foo",
		Flags:        34,
		FontBBox:     [4]float64{-10, -200, 1000, 900},
		Ascent:       700,
		Descent:      -200,
		MissingWidth: 250,
		Embedded:     true,
	}
	if diff := cmp.Diff(wantDesc, f.Descriptor); diff != "" {
		t.Errorf("Descriptor mismatch (-want +got):\n%s", diff)
	}
	if f.Descriptor.Flags&FlagSerif == 0 {
		t.Error("serif flag not set")
	}
}

func TestLoadDefaultEncodings(t *testing.T) {
	tests := []struct {
		subtype string
		data    string
		want    string
	}{
		{"Type1", "'`", "’‘"},
		{"TrueType", "'\x80", "'€"},
	}
	for _, tt := range tests {
		t.Run(tt.subtype, func(t *testing.T) {
			f, err := Load("F1", core.Dict{"Subtype": core.Name(tt.subtype), "BaseFont": core.Name("X")}, nil)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := f.DecodeString([]byte(tt.data)); got != tt.want {
				t.Errorf("DecodeString = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadToUnicode(t *testing.T) {
	resolve := resolverFor(map[int]core.Object{
		4: &core.Stream{Dict: core.Dict{}, Data: []byte("1 beginbfchar <01> <0054> endbfchar")},
	})
	dict := core.Dict{"Subtype": core.Name("TrueType"), "BaseFont": core.Name("Arial"), "ToUnicode": ref(4)}

	f, err := Load("F1", dict, resolve)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := f.DecodeString([]byte{1, 'o'}); got != "To" {
		t.Errorf("DecodeString = %q, want To", got)
	}

	// An unresolvable ToUnicode falls back to the encoding.
	f, err = Load("F1", dict, nil)
	if err != nil {
		t.Fatalf("Load without resolver: %v", err)
	}
	if f.ToUnicodeCMap != nil {
		t.Error("expected no CMap without a resolver")
	}
}

func TestLoadComposite(t *testing.T) {
	resolve := resolverFor(map[int]core.Object{
		7: core.Dict{
			"Subtype":        core.Name("CIDFontType2"),
			"DW":             core.Int(800),
			"W":              core.Array{core.Int(1), core.Array{core.Int(500), core.Int(600)}, core.Int(10), core.Int(12), core.Int(300)},
			"FontDescriptor": core.Dict{"Flags": core.Int(4)},
		},
	})
	dict := core.Dict{
		"Subtype":         core.Name("Type0"),
		"BaseFont":        core.Name("MSGothic"),
		"Encoding":        core.Name("Identity-V"),
		"DescendantFonts": core.Array{ref(7)},
	}

	f, err := Load("F2", dict, resolve)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !f.Vertical() {
		t.Error("Identity-V font should be vertical")
	}
	if f.Descriptor == nil || f.Descriptor.Flags != FlagSymbolic {
		t.Errorf("descriptor = %+v", f.Descriptor)
	}

	var got []float64
	for _, g := range f.Glyphs([]byte{0, 1, 0, 2, 0, 11, 0, 5}) {
		got = append(got, g.Width)
	}
	if diff := cmp.Diff([]float64{500, 600, 300, 800}, got); diff != "" {
		t.Errorf("widths mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadType3Scale(t *testing.T) {
	dict := core.Dict{
		"Subtype":    core.Name("Type3"),
		"FontMatrix": core.Array{core.Real(0.01), core.Int(0), core.Int(0), core.Real(0.01), core.Int(0), core.Int(0)},
		"FirstChar":  core.Int(65),
		"Widths":     core.Array{core.Int(50)},
	}

	f, err := Load("T3", dict, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := f.StringWidth([]byte("A")); got != 500 {
		t.Errorf("width = %v, want 500", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		dict    core.Dict
		wantErr string
	}{
		{"unknown subtype", core.Dict{"Subtype": core.Name("OpenType")}, "unsupported font subtype"},
		{"no descendants", core.Dict{"Subtype": core.Name("Type0")}, "missing DescendantFonts"},
		{"bad descendant", core.Dict{"Subtype": core.Name("Type0"), "DescendantFonts": core.Array{core.Int(1)}}, "descendant font"},
		{"bad encoding", core.Dict{"Subtype": core.Name("Type1"), "Encoding": core.Int(3)}, "invalid encoding"},
		{"bad width", core.Dict{"Subtype": core.Name("TrueType"), "Widths": core.Array{core.Name("x")}}, "width 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("F", tt.dict, nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
