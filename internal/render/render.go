// Package render converts the Markdown that completion providers answer with
// into the HTML subset accepted by Telegram's HTML parse mode.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const extensions = parser.HardLineBreak | parser.NoEmptyLineBeforeBlock | parser.NoIntraEmphasis |
	parser.FencedCode | parser.Strikethrough | parser.SpaceHeadings | parser.BackslashLineBreak

// TelegramHTML renders markdown as Telegram HTML. Every piece of text is
// escaped, so the result is safe to send with ParseModeHTML.
func TelegramHTML(markdown string) string {
	doc := parser.NewWithExtensions(extensions).Parse([]byte(markdown))

	var buf bytes.Buffer
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		return renderNode(&buf, node, entering)
	})
	return collapseBlankLines(strings.TrimSpace(buf.String()))
}

// EscapeHTML escapes s for use inside a Telegram HTML message.
func EscapeHTML(s string) string {
	var buf bytes.Buffer
	html.EscapeHTML(&buf, []byte(s))
	return buf.String()
}

func renderNode(buf *bytes.Buffer, node ast.Node, entering bool) ast.WalkStatus {
	switch n := node.(type) {
	case *ast.Text:
		html.EscapeHTML(buf, n.Literal)
	case *ast.Softbreak, *ast.Hardbreak:
		buf.WriteString("\n")
	case *ast.Paragraph:
		if !entering && !inListItem(n) {
			buf.WriteString("\n\n")
		}
	case *ast.Heading:
		outOneOf(buf, entering, "<b>", "</b>\n\n")
	case *ast.Strong:
		outOneOf(buf, entering, "<b>", "</b>")
	case *ast.Emph:
		outOneOf(buf, entering, "<i>", "</i>")
	case *ast.Del:
		outOneOf(buf, entering, "<s>", "</s>")
	case *ast.Code:
		buf.WriteString("<code>")
		html.EscapeHTML(buf, n.Literal)
		buf.WriteString("</code>")
	case *ast.Link:
		if entering {
			buf.WriteString(`<a href="`)
			html.EscLink(buf, n.Destination)
			buf.WriteString(`">`)
		} else {
			buf.WriteString("</a>")
		}
	case *ast.Image:
		// Telegram messages cannot embed images; link to them instead.
		if entering {
			buf.WriteString(`<a href="`)
			html.EscLink(buf, n.Destination)
			buf.WriteString(`">`)
			if len(n.Children) == 0 {
				html.EscapeHTML(buf, n.Destination)
			}
		} else {
			buf.WriteString("</a>")
		}
	case *ast.BlockQuote:
		if entering {
			buf.WriteString("<blockquote>")
		} else {
			trimTrailingNewlines(buf)
			buf.WriteString("</blockquote>\n\n")
		}
	case *ast.HorizontalRule:
		buf.WriteString("------\n\n")
	case *ast.CodeBlock:
		writeCodeBlock(buf, n)
	case *ast.List:
		if entering && isNestedList(n) {
			ensureNewline(buf)
		}
		if !entering && !isNestedList(n) {
			buf.WriteString("\n")
		}
	case *ast.ListItem:
		if entering {
			writeListItemPrefix(buf, n)
		} else {
			ensureNewline(buf)
		}
	case *ast.HTMLSpan:
		html.EscapeHTML(buf, n.Literal)
	case *ast.HTMLBlock:
		html.EscapeHTML(buf, n.Literal)
		buf.WriteString("\n\n")
	}
	return ast.GoToNext
}

func outOneOf(buf *bytes.Buffer, entering bool, first, second string) {
	if entering {
		buf.WriteString(first)
	} else {
		buf.WriteString(second)
	}
}

func writeCodeBlock(buf *bytes.Buffer, n *ast.CodeBlock) {
	if info := bytes.TrimSpace(n.Info); len(info) > 0 {
		buf.WriteString(`<pre><code class="language-`)
		html.EscapeHTML(buf, info)
		buf.WriteString(`">`)
	} else {
		buf.WriteString("<pre><code>")
	}
	html.EscapeHTML(buf, bytes.TrimRight(n.Literal, "\n"))
	buf.WriteString("</code></pre>\n\n")
}

func writeListItemPrefix(buf *bytes.Buffer, item *ast.ListItem) {
	list, ok := item.GetParent().(*ast.List)
	if !ok {
		return
	}
	if isNestedList(list) {
		buf.WriteString("  ")
	}
	if list.ListFlags&ast.ListTypeOrdered == 0 {
		buf.WriteString("• ")
		return
	}
	start := max(list.Start, 1)
	for i, child := range list.GetChildren() {
		if child == item {
			fmt.Fprintf(buf, "%d. ", start+i)
			return
		}
	}
}

func isNestedList(list *ast.List) bool {
	for p := list.GetParent(); p != nil; p = p.GetParent() {
		if _, ok := p.(*ast.ListItem); ok {
			return true
		}
	}
	return false
}

func inListItem(n ast.Node) bool {
	_, ok := n.GetParent().(*ast.ListItem)
	return ok
}

func ensureNewline(buf *bytes.Buffer) {
	if b := buf.Bytes(); len(b) > 0 && b[len(b)-1] != '\n' {
		buf.WriteByte('\n')
	}
}

func trimTrailingNewlines(buf *bytes.Buffer) {
	buf.Truncate(len(bytes.TrimRight(buf.Bytes(), "\n")))
}

// collapseBlankLines keeps at most one empty line between blocks.
func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}
