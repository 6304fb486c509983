// Package format detects the two file kinds the annotator works with: PDF
// documents and their .paj annotation sidecars.
package format

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

type Format int

const (
	Unknown Format = iota
	PDF
	Sidecar
)

// headerWindow is how far into a file the %PDF marker may appear. Readers
// tolerate leading junk before the header, so sniffing does too.
const headerWindow = 1024

var formats = [...]struct{ name, ext string }{
	Unknown: {"Unknown", ""},
	PDF:     {"PDF", ".pdf"},
	Sidecar: {"PAJ", ".paj"},
}

func (f Format) known() Format {
	if f < 0 || int(f) >= len(formats) {
		return Unknown
	}
	return f
}

func (f Format) String() string { return formats[f.known()].name }

// Extension is the lower-case file extension with its dot.
func (f Format) Extension() string { return formats[f.known()].ext }

// Detect goes by the file name alone.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	for f := PDF; int(f) < len(formats); f++ {
		if formats[f].ext == ext {
			return f
		}
	}
	return Unknown
}

var (
	pdfMarker = []byte("%PDF")
	bom       = []byte("\xef\xbb\xbf")
)

// DetectFromMagic sniffs leading bytes. A sidecar is a JSON object that
// mentions "pdf-file" or "annotations" near its start.
func DetectFromMagic(data []byte) Format {
	if len(data) < len(pdfMarker) {
		return Unknown
	}
	head := data[:min(headerWindow, len(data))]
	if bytes.Contains(head, pdfMarker) {
		return PDF
	}

	body := bytes.TrimPrefix(bytes.TrimLeft(head, " \t\r\n"), bom)
	if len(body) > 0 && body[0] == '{' &&
		(bytes.Contains(body, []byte(`"pdf-file"`)) || bytes.Contains(body, []byte(`"annotations"`))) {
		return Sidecar
	}
	return Unknown
}

// DetectFromReader reads at most the header window from r. A negative
// size means unknown.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	n := int64(headerWindow)
	if size >= 0 {
		n = min(n, size)
	}
	buf := make([]byte, n)
	read, err := r.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	return DetectFromMagic(buf[:read]), nil
}
