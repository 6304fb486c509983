package annotation

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSidecarPath(t *testing.T) {
	tests := []struct {
		pdf  string
		want string
	}{
		{"report.pdf", "report.paj"},
		{"/docs/Report.PDF", "/docs/Report.paj"},
		{"a.pdf.pdf", "a.pdf.paj"},
		{"notes", "notes.paj"},
		{"dir.pdf/file.txt", "dir.pdf/file.txt.paj"},
	}
	for _, tt := range tests {
		if got := SidecarPath(tt.pdf); got != tt.want {
			t.Errorf("SidecarPath(%q) = %q, want %q", tt.pdf, got, tt.want)
		}
	}

	if got := PDFPath("/docs/Report.PAJ"); got != "/docs/Report.pdf" {
		t.Errorf("PDFPath = %q", got)
	}
	if got := PDFPath(SidecarPath("x/y.pdf")); got != "x/y.pdf" {
		t.Errorf("PDFPath(SidecarPath) = %q", got)
	}
}

func TestBootstrap(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "report.pdf")

	path, created, err := Bootstrap(pdf)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if !created || path != filepath.Join(dir, "report.paj") {
		t.Fatalf("Bootstrap = %q, %v", path, created)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"pdf-file\": \"report.pdf\",\n  \"annotations\": []\n}\n"
	if string(data) != want {
		t.Errorf("sidecar =\n%s\nwant\n%s", data, want)
	}

	// An existing sidecar is left alone
	if err := os.WriteFile(path, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, created, err := Bootstrap(pdf); err != nil || created {
		t.Fatalf("second Bootstrap = %v, %v", created, err)
	}
	if data, _ := os.ReadFile(path); string(data) != "keep" {
		t.Errorf("existing sidecar overwritten: %q", data)
	}
}

func TestSaveLoad_ByteIdentical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.paj")
	s := New("doc.pdf")
	s.Add(Record{Page: 1, EndOffset: 3, Text: "Top", Content: "a <b> & $x^2$", StartID: "r0", EndID: "r0"})
	s.Add(Record{Page: 2, StartNode: 1, StartOffset: 2, EndNode: 3, EndOffset: 1, Text: "é"})

	if err := Save(path, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(s, loaded); diff != "" {
		t.Errorf("loaded sidecar mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	if err := Write(&buf, loaded); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(first, buf.Bytes()) {
		t.Errorf("round trip not byte-identical:\n%s\n%s", first, buf.Bytes())
	}
	if !bytes.Contains(first, []byte(`"content": "a <b> & $x^2$"`)) {
		t.Errorf("content escaped:\n%s", first)
	}
	if bytes.Count(first, []byte(`"start-id"`)) != 1 {
		t.Errorf("start-id should be omitted when empty:\n%s", first)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %d entries", len(entries))
	}
}

func TestRead(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *Sidecar
	}{
		{
			name: "original layout",
			in: `{"pdf-file": "a.pdf", "annotations": [{"page": 1, "start-node": 0, "start-offset": 0,
				"end-node": 0, "end-offset": 3, "text": "Top", "content": ""}]}`,
			want: &Sidecar{PDFFile: "a.pdf", Annotations: []Record{{Page: 1, EndOffset: 3, Text: "Top"}}},
		},
		{
			name: "null annotations",
			in:   `{"pdf-file": "a.pdf", "annotations": null}`,
			want: &Sidecar{PDFFile: "a.pdf", Annotations: []Record{}},
		},
		{
			name: "missing annotations",
			in:   `{"pdf-file": "a.pdf"}`,
			want: &Sidecar{PDFFile: "a.pdf", Annotations: []Record{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.in))
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := Read(strings.NewReader("{")); err == nil {
		t.Error("expected error for truncated JSON")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.paj")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWrite_NilAnnotations(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, &Sidecar{PDFFile: "x.pdf"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"annotations": []`) {
		t.Errorf("nil list should encode as []:\n%s", buf.String())
	}
}

func TestForPage(t *testing.T) {
	s := New("a.pdf")
	s.Add(Record{Page: 2, Text: "a"})
	s.Add(Record{Page: 1, Text: "b"})
	s.Add(Record{Page: 2, Text: "c"})

	got := s.ForPage(2)
	if len(got) != 2 || got[0].Text != "a" || got[1].Text != "c" {
		t.Errorf("ForPage(2) = %+v", got)
	}
	if s.ForPage(3) != nil {
		t.Error("ForPage(3) should be empty")
	}
}
