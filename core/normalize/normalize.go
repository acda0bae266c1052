package normalize

import (
	"bytes"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"
)

// Unmark converts markdown text to plain text by parsing it and collecting
// the text content of the resulting tree. Formatting markup (emphasis,
// headings, link destinations) is dropped; code block contents and line
// structure are preserved. It is a stateless pure function and safe for
// concurrent use.
func Unmark(text string) string {
	source := []byte(text)
	document := goldmark.DefaultParser().Parse(gtext.NewReader(source))

	var buf bytes.Buffer
	_ = ast.Walk(document, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte('\n')
				}
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				writeLines(&buf, source, n)
			}
		case *ast.AutoLink:
			if entering {
				buf.Write(node.URL(source))
			}
		}
		// Separate block-level nodes the way rendered text would be.
		if !entering && n.Type() == ast.TypeBlock && n.NextSibling() != nil {
			buf.WriteString("\n\n")
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(buf.String())
}

// FromHTML converts an HTML fragment into markdown, so model output that
// arrives as HTML can flow through the same extraction pipeline.
func FromHTML(html string) (string, error) {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return markdown, nil
}

func writeLines(buf *bytes.Buffer, source []byte, n ast.Node) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(source))
	}
}
