package document

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// DoneKeyword leads the markdown line of a finished todo item.
const DoneKeyword = "DONE"

var parser = goldmark.New().Parser()

// ToMarkdown projects t to markdown. List items render as "- " bullets
// indented two spaces per depth, todo items lead with their status keyword
// (DONE once finished) and wikilinks keep their brackets.
func ToMarkdown(t *Tree) string {
	blocks := make([]string, 0)
	for _, c := range t.Children(t.root) {
		switch t.Kind(c) {
		case KindParagraph:
			blocks = append(blocks, t.PlainText(c))
		case KindList:
			lines := make([]string, 0)
			for _, item := range t.Children(c) {
				lines = append(lines, t.itemLine(item))
			}
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(blocks, "\n\n")
}

func (t *Tree) itemLine(item Key) string {
	n, _ := t.Get(item)
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", n.Depth))
	b.WriteString("- ")
	if n.Todo != nil {
		if n.Todo.Done {
			b.WriteString(DoneKeyword)
		} else {
			b.WriteString(n.Todo.Status)
		}
		b.WriteString(" ")
	}
	b.WriteString(t.PlainText(item))
	return b.String()
}

// FromMarkdown parses markdown into a tree. Nested lists flatten into depths,
// headings and code blocks become paragraphs, and inline formatting is reduced
// to its text. Todo keywords and wikilinks stay in the text; the todo and
// wikilink packages lift them into nodes.
func FromMarkdown(src string) (*Tree, error) {
	source := []byte(src)
	doc := parser.Parse(text.NewReader(source))
	t := New()
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch block := n.(type) {
		case *ast.List:
			list := t.LastList()
			t.addListItems(list, block, 0, source)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			t.AddParagraph(strings.TrimRight(blockLines(n, source), "\n"))
		case *ast.ThematicBreak:
		default:
			t.AddParagraph(inlineText(n, source))
		}
	}
	return t, nil
}

func (t *Tree) addListItems(list Key, l *ast.List, depth int, source []byte) {
	for li := l.FirstChild(); li != nil; li = li.NextSibling() {
		var parts []string
		var nested []*ast.List
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				nested = append(nested, sub)
				continue
			}
			parts = append(parts, inlineText(c, source))
		}
		t.AddItem(list, depth, strings.Join(parts, " "))
		for _, sub := range nested {
			t.addListItems(list, sub, depth+1, source)
		}
	}
}

func blockLines(n ast.Node, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return b.String()
}

func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			for i := 0; i < v.Segments.Len(); i++ {
				seg := v.Segments.At(i)
				b.Write(seg.Value(source))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
