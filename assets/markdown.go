package assets

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Span is a run of text sharing one style within a line.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
}

// parseLines splits payload text into styled lines. With markdown off,
// each newline-separated line becomes a single plain span. With markdown
// on, inline emphasis is honored and each block element or hard break
// starts a new line.
func parseLines(source string, markdown bool) [][]Span {
	if !markdown {
		var lines [][]Span
		for _, l := range strings.Split(source, "\n") {
			lines = append(lines, []Span{{Text: l}})
		}
		return lines
	}
	return parseMarkdownLines(source)
}

func parseMarkdownLines(source string) [][]Span {
	md := goldmark.New()
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))

	var lines [][]Span
	for block := doc.FirstChild(); block != nil; block = block.NextSibling() {
		switch b := block.(type) {
		case *ast.Paragraph, *ast.Heading, *ast.TextBlock:
			lines = append(lines, inlineLines(block, src, false, false)...)
		case *ast.List:
			for item := b.FirstChild(); item != nil; item = item.NextSibling() {
				for sub := item.FirstChild(); sub != nil; sub = sub.NextSibling() {
					for _, line := range inlineLines(sub, src, false, false) {
						lines = append(lines, append([]Span{{Text: "• "}}, line...))
					}
				}
			}
		}
	}
	if len(lines) == 0 {
		lines = append(lines, []Span{{Text: source}})
	}
	return lines
}

// inlineLines flattens the inline children of a block into lines of
// spans, splitting at soft and hard line breaks.
func inlineLines(block ast.Node, src []byte, bold, italic bool) [][]Span {
	var lines [][]Span
	var current []Span

	var walk func(n ast.Node, bold, italic bool)
	walk = func(n ast.Node, bold, italic bool) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				value := string(t.Segment.Value(src))
				if value != "" {
					current = append(current, Span{Text: value, Bold: bold, Italic: italic})
				}
				if t.HardLineBreak() || t.SoftLineBreak() {
					lines = append(lines, current)
					current = nil
				}
			case *ast.Emphasis:
				if t.Level >= 2 {
					walk(t, true, italic)
				} else {
					walk(t, bold, true)
				}
			default:
				walk(c, bold, italic)
			}
		}
	}
	walk(block, bold, italic)

	if len(current) > 0 {
		lines = append(lines, current)
	}
	return lines
}
