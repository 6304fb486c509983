package annotation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Sidecar is the content of a .paj file.
type Sidecar struct {
	PDFFile     string   `json:"pdf-file"`
	Annotations []Record `json:"annotations"`
}

// New returns an empty sidecar for the PDF at pdfPath.
func New(pdfPath string) *Sidecar {
	return &Sidecar{PDFFile: filepath.Base(pdfPath), Annotations: []Record{}}
}

// Add appends a record.
func (s *Sidecar) Add(rec Record) {
	s.Annotations = append(s.Annotations, rec)
}

// ForPage returns the records of page n in file order.
func (s *Sidecar) ForPage(n int) []Record {
	var out []Record
	for _, rec := range s.Annotations {
		if rec.Page == n {
			out = append(out, rec)
		}
	}
	return out
}

// SidecarPath returns the sidecar path for a PDF: a trailing ".pdf" in any
// case is replaced by ".paj", otherwise ".paj" is appended.
func SidecarPath(pdfPath string) string {
	return swapExt(pdfPath, ".pdf", ".paj")
}

// PDFPath is the inverse of SidecarPath.
func PDFPath(pajPath string) string {
	return swapExt(pajPath, ".paj", ".pdf")
}

func swapExt(path, from, to string) string {
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, from) {
		return strings.TrimSuffix(path, ext) + to
	}
	return path + to
}

// Bootstrap creates the sidecar of pdfPath when it does not exist yet.
// It reports the sidecar path and whether the file was created.
func Bootstrap(pdfPath string) (string, bool, error) {
	path := SidecarPath(pdfPath)
	data, err := encode(New(pdfPath))
	if err != nil {
		return path, false, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return path, false, nil
	}
	if err != nil {
		return path, false, fmt.Errorf("failed to create sidecar: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return path, false, fmt.Errorf("failed to write sidecar: %w", err)
	}
	if err := f.Close(); err != nil {
		return path, false, fmt.Errorf("failed to write sidecar: %w", err)
	}
	return path, true, nil
}

// Load reads the sidecar at path.
func Load(path string) (*Sidecar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sidecar: %w", err)
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Read decodes a sidecar. A missing or null annotation list reads as empty.
func Read(r io.Reader) (*Sidecar, error) {
	var s Sidecar
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode sidecar: %w", err)
	}
	if s.Annotations == nil {
		s.Annotations = []Record{}
	}
	return &s, nil
}

// Write encodes s as two-space indented JSON followed by a newline.
func Write(w io.Writer, s *Sidecar) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Save writes s to path through a temporary file in the same directory,
// so readers never see a partial sidecar.
func Save(path string, s *Sidecar) error {
	data, err := encode(s)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to save sidecar: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save sidecar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save sidecar: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to save sidecar: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save sidecar: %w", err)
	}
	return nil
}

func encode(s *Sidecar) ([]byte, error) {
	out := *s
	if out.Annotations == nil {
		out.Annotations = []Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return nil, fmt.Errorf("failed to encode sidecar: %w", err)
	}
	return buf.Bytes(), nil
}
