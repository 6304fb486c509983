package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/pdfannotate/annotation"
	"github.com/tsawler/pdfannotate/internal/pdftest"
)

func writeDoc(t *testing.T, pages ...pdftest.Page) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, pdftest.Document(pages...), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func twoPageDoc(t *testing.T) string {
	return writeDoc(t, pdftest.TextPage("Top Left", "Top Right"), pdftest.TextPage("Page two"))
}

func exec(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"frobnicate"}, 2},
		{"missing file", []string{"pages"}, 2},
		{"too many files", []string{"pages", "a.pdf", "b.pdf"}, 2},
		{"bad flag", []string{"view", "-nope", "a.pdf"}, 2},
		{"help", []string{"view", "-h"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := exec(t, tt.args...)
			if code != tt.code {
				t.Errorf("exit code = %d, want %d\n%s", code, tt.code, stderr)
			}
		})
	}
}

func TestRun_Pages(t *testing.T) {
	path := twoPageDoc(t)
	code, out, stderr := exec(t, "pages", path)
	if code != 0 || out != "2\n" {
		t.Errorf("pages = %d %q\n%s", code, out, stderr)
	}

	code, _, stderr = exec(t, "pages", filepath.Join(t.TempDir(), "missing.pdf"))
	if code != 1 || !strings.Contains(stderr, "document load failed") {
		t.Errorf("missing file = %d\n%s", code, stderr)
	}
}

func TestRun_Init(t *testing.T) {
	path := twoPageDoc(t)
	paj := annotation.SidecarPath(path)

	code, out, _ := exec(t, "init", path)
	if code != 0 || out != "created "+paj+"\n" {
		t.Errorf("first init = %d %q", code, out)
	}
	code, out, _ = exec(t, "init", path)
	if code != 0 || !strings.Contains(out, "already exists") {
		t.Errorf("second init = %d %q", code, out)
	}
	if code, _, _ := exec(t, "init", paj); code != 1 {
		t.Errorf("init on a sidecar = %d, want 1", code)
	}
}

func TestRun_Annotate(t *testing.T) {
	path := twoPageDoc(t)

	code, out, stderr := exec(t, "annotate", "-page", "1", "-start", "0:4", "-end", "1:3", "-note", "a *note*", path)
	if code != 0 {
		t.Fatalf("annotate = %d\n%s", code, stderr)
	}
	if want := `annotated page 1: "LeftTop" (1 annotations)`; !strings.Contains(out, want) {
		t.Errorf("output = %q, want %q", out, want)
	}

	// A second annotation goes through the sidecar
	paj := annotation.SidecarPath(path)
	code, _, stderr = exec(t, "annotate", "-page", "2", "-start", "0:0", "-end", "0:4", paj)
	if code != 0 {
		t.Fatalf("annotate on sidecar = %d\n%s", code, stderr)
	}

	sc, err := annotation.Load(paj)
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Annotations) != 2 || sc.Annotations[1].Text != "Page" || sc.Annotations[0].Content != "a *note*" {
		t.Errorf("sidecar = %+v", sc.Annotations)
	}

	for _, args := range [][]string{
		{"annotate", "-start", "0:1", "-end", "0:1", path},
		{"annotate", "-start", "0:0", "-end", "9:1", path},
	} {
		if code, _, _ := exec(t, args...); code != 1 {
			t.Errorf("%v = %d, want 1", args, code)
		}
	}
	for _, args := range [][]string{
		{"annotate", "-start", "x", "-end", "0:1", path},
		{"annotate", "-page", "3", "-start", "0:0", "-end", "0:1", path},
	} {
		if code, _, _ := exec(t, args...); code != 2 {
			t.Errorf("%v = %d, want 2", args, code)
		}
	}
}

func TestRun_View(t *testing.T) {
	path := twoPageDoc(t)
	if code, _, stderr := exec(t, "annotate", "-start", "0:0", "-end", "0:3", "-note", "see *this*", path); code != 0 {
		t.Fatalf("annotate = %d\n%s", code, stderr)
	}

	out := filepath.Join(t.TempDir(), "view.html")
	code, _, stderr := exec(t, "view", "-o", out, "-scale", "1", path)
	if code != 0 {
		t.Fatalf("view = %d\n%s", code, stderr)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	for _, want := range []string{
		"<!DOCTYPE html>",
		`<title>doc.pdf - Page 1 of 2</title>`,
		`<div id="controls"><button id="prev" type="button" data-page="0" disabled="">Previous</button>`,
		`<img id="page-canvas" width="612" height="792"`,
		`src="data:image/png;base64,iVBOR`,
		`<div id="pdf-viewer">`,
		`<span class="highlight" data-highlight-id="h1">Top</span>`,
		`<div class="note" data-highlight-id="h1"><blockquote>Top</blockquote><p>see <em>this</em></p>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("view missing %s", want)
		}
	}

	// Page two: no notes, Next disabled
	code, html, stderr := exec(t, "view", "-page", "2", path)
	if code != 0 {
		t.Fatalf("view page 2 = %d\n%s", code, stderr)
	}
	if !strings.Contains(html, `id="next" type="button" data-page="3" disabled=""`) || strings.Contains(html, `id="notes"`) {
		t.Errorf("page 2 view:\n%.400s", html)
	}
}

func TestRun_ViewSinglePage(t *testing.T) {
	path := writeDoc(t, pdftest.TextPage("Only"))
	code, html, stderr := exec(t, "view", path)
	if code != 0 {
		t.Fatalf("view = %d\n%s", code, stderr)
	}
	if strings.Contains(html, `id="controls"`) {
		t.Error("single page view shows navigation controls")
	}
	if !strings.Contains(html, `<title>Page 1 of 1</title>`) {
		t.Errorf("title missing:\n%.300s", html)
	}
}
