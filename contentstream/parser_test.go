package contentstream

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tsawler/pdfannotate/core"
)

func op(name string, operands ...core.Object) Operation {
	return Operation{Operator: name, Operands: operands}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Operation
	}{
		{"empty", "", nil},
		{"whitespace", " \r\n\t ", nil},
		{"bare operators", "q Q", []Operation{op("q"), op("Q")}},
		{"numbers", "1 -2 .5 -3.25 4. cm", []Operation{
			op("cm", core.Int(1), core.Int(-2), core.Real(0.5), core.Real(-3.25), core.Real(4)),
		}},
		{"text block", "BT /F1 12 Tf 72 720 Td (Hello) Tj ET", []Operation{
			op("BT"),
			op("Tf", core.Name("F1"), core.Int(12)),
			op("Td", core.Int(72), core.Int(720)),
			op("Tj", core.String("Hello")),
			op("ET"),
		}},
		{"kerned array", "[(A) -120 (W) 30.5 <48>] TJ", []Operation{
			op("TJ", core.Array{core.String("A"), core.Int(-120), core.String("W"), core.Real(30.5), core.String("H")}),
		}},
		{"nested array", "[[1 2] [/a]] d", []Operation{
			op("d", core.Array{core.Array{core.Int(1), core.Int(2)}, core.Array{core.Name("a")}}),
		}},
		{"empty array", "[] 0 d", []Operation{op("d", core.Array{}, core.Int(0))}},
		{"string escapes", `(a\(b\)\\c\n\101) Tj`, []Operation{op("Tj", core.String("a(b)\\c\nA"))}},
		{"nested parens", "(f(o)o) Tj", []Operation{op("Tj", core.String("f(o)o"))}},
		{"hex strings", "<48 65 6c6C 6> Tj", []Operation{op("Tj", core.String("Hell`"))}},
		{"name escapes", "/Span#20A /P#23 BDC", []Operation{op("BDC", core.Name("Span A"), core.Name("P#"))}},
		{"marked content dict", "/Span << /ActualText (x) /MCID 3 >> BDC EMC", []Operation{
			op("BDC", core.Name("Span"), core.Dict{"ActualText": core.String("x"), "MCID": core.Int(3)}),
			op("EMC"),
		}},
		{"empty dict", "/P <<>> BDC", []Operation{op("BDC", core.Name("P"), core.Dict{})}},
		{"star and digit operators", "f* B* b* T* 0 0 d0", []Operation{
			op("f*"), op("B*"), op("b*"), op("T*"), op("d0", core.Int(0), core.Int(0)),
		}},
		{"quote operators", "(a) ' 1 2 (b) \"", []Operation{
			op("'", core.String("a")),
			op("\"", core.Int(1), core.Int(2), core.String("b")),
		}},
		{"keyword operands", "true false null x", []Operation{
			op("x", core.Bool(true), core.Bool(false), core.Null{}),
		}},
		{"colors", "0.5 g 1 0 0 RG /CS0 cs 0.1 0.2 0.3 0.4 k", []Operation{
			op("g", core.Real(0.5)),
			op("RG", core.Int(1), core.Int(0), core.Int(0)),
			op("cs", core.Name("CS0")),
			op("k", core.Real(0.1), core.Real(0.2), core.Real(0.3), core.Real(0.4)),
		}},
		{"path", "10 20 m 30 40 l 0 0 50 50 re h S", []Operation{
			op("m", core.Int(10), core.Int(20)),
			op("l", core.Int(30), core.Int(40)),
			op("re", core.Int(0), core.Int(0), core.Int(50), core.Int(50)),
			op("h"),
			op("S"),
		}},
		{"comments", "% header\nq % save\n[1 % inside\n2] 0 d Q", []Operation{
			op("q"),
			op("d", core.Array{core.Int(1), core.Int(2)}, core.Int(0)),
			op("Q"),
		}},
		{"dangling operands", "q 1 2", []Operation{op("q")}},
		{"inline image", "q BI /W 2 /H 1 /BPC 8 ID \x00EI\xffE EI Q", []Operation{
			op("q"),
			op("BI"),
			op("ID", core.Name("W"), core.Int(2), core.Name("H"), core.Int(1), core.Name("BPC"), core.Int(8)),
			op("EI"),
			op("Q"),
		}},
		{"inline image data with EI inside", "BI ID xEIx EI\nQ", []Operation{
			op("BI"), op("ID"), op("EI"), op("Q"),
		}},
		{"inline image without end", "BI ID abc", []Operation{op("BI"), op("ID")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewParser([]byte(tt.src)).Parse()
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.src, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("operations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"[1 2",
		"<< /A 1",
		"<< /A",
		"<< 1 2 >> BDC",
		"(unterminated",
		"<4G> Tj",
		"] Q",
	} {
		if _, err := NewParser([]byte(src)).Parse(); err == nil {
			t.Errorf("Parse(%q): expected error", src)
		}
	}
}

func TestParseConcurrent(t *testing.T) {
	src := []byte("BT /F1 9 Tf [(a) 10 (b)] TJ ET")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ops, err := NewParser(src).Parse()
			if err != nil || len(ops) != 4 {
				t.Errorf("Parse = %d ops, %v", len(ops), err)
			}
		}()
	}
	wg.Wait()
}
