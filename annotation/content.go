package annotation

import (
	"bytes"
	"fmt"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
)

var markdown = goldmark.New(goldmark.WithExtensions(treeblood.MathML()))

// RenderContent converts an annotation note from Markdown to HTML. Inline
// $…$ and display $$…$$ math is rendered as MathML. Raw HTML in the note
// is not passed through.
func RenderContent(content string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("failed to render annotation content: %w", err)
	}
	return buf.String(), nil
}
