// Package pdftest builds small in-memory PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Builder assembles indirect objects and writes a file with an exact
// cross-reference table.
type Builder struct {
	version string
	objects [][]byte
}

// New returns a builder for a PDF 1.7 file
func New() *Builder {
	return &Builder{version: "1.7"}
}

// Version sets the header version, e.g. "1.4"
func (b *Builder) Version(v string) *Builder {
	b.version = v
	return b
}

// Reserve allocates an object number to be filled later with Set.
func (b *Builder) Reserve() int {
	b.objects = append(b.objects, nil)
	return len(b.objects)
}

// Set stores the body of object num
func (b *Builder) Set(num int, body string) {
	b.objects[num-1] = []byte(body)
}

// Add appends an object and returns its number
func (b *Builder) Add(body string) int {
	n := b.Reserve()
	b.Set(n, body)
	return n
}

// AddStream appends a stream object. dict holds extra dictionary entries;
// /Length is computed.
func (b *Builder) AddStream(dict string, data []byte) int {
	var body bytes.Buffer
	fmt.Fprintf(&body, "<< %s /Length %d >>\nstream\n", dict, len(data))
	body.Write(data)
	body.WriteString("\nendstream")
	n := b.Reserve()
	b.objects[n-1] = body.Bytes()
	return n
}

// Bytes writes the file. trailer holds extra trailer entries such as
// "/Root 1 0 R".
func (b *Builder) Bytes(trailer string) []byte {
	var out bytes.Buffer
	fmt.Fprintf(&out, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", b.version)

	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n", i+1)
		out.Write(body)
		out.WriteString("\nendobj\n")
	}

	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", len(b.objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d %s >>\nstartxref\n%d\n%%%%EOF\n", len(b.objects)+1, trailer, xref)
	return out.Bytes()
}

// Page describes one page of a generated document.
type Page struct {
	Width, Height float64
	Rotate        int
	// CropBox overrides the visible area when non-nil
	CropBox []float64
	Content string
}

// Document builds a file with one page per entry. Every page shares a
// resource dictionary with /F1 (Helvetica) and /F2 (Courier).
func Document(pages ...Page) []byte {
	b := New()
	catalog := b.Reserve()
	tree := b.Reserve()
	helv := b.Add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	cour := b.Add("<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding >>")
	resources := fmt.Sprintf("<< /Font << /F1 %d 0 R /F2 %d 0 R >> >>", helv, cour)

	kids := make([]string, 0, len(pages))
	for _, p := range pages {
		content := b.AddStream("", []byte(p.Content))
		var extra strings.Builder
		if p.Rotate != 0 {
			fmt.Fprintf(&extra, " /Rotate %d", p.Rotate)
		}
		if p.CropBox != nil {
			fmt.Fprintf(&extra, " /CropBox [%s]", joinFloats(p.CropBox))
		}
		page := b.Add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %s %s] /Resources %s /Contents %d 0 R%s >>",
			tree, num(p.Width), num(p.Height), resources, content, extra.String()))
		kids = append(kids, fmt.Sprintf("%d 0 R", page))
	}

	b.Set(tree, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	b.Set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", tree))
	return b.Bytes(fmt.Sprintf("/Root %d 0 R", catalog))
}

// TextPage returns a Letter-sized page showing each line with Helvetica
// 12pt, starting at (72, 720) with 14pt leading.
func TextPage(lines ...string) Page {
	var c strings.Builder
	c.WriteString("BT /F1 12 Tf 14 TL 72 720 Td\n")
	for i, line := range lines {
		if i > 0 {
			c.WriteString("T*\n")
		}
		fmt.Fprintf(&c, "(%s) Tj\n", escape(line))
	}
	c.WriteString("ET")
	return Page{Width: 612, Height: 792, Content: c.String()}
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}

func num(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.4f", f), "0"), ".")
}

func joinFloats(fs []float64) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = num(f)
	}
	return strings.Join(parts, " ")
}
