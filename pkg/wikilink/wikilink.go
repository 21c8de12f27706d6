// Package wikilink recognizes [[title]] references in text and keeps them as
// wikilink nodes in a document tree. Resolving a title to a page is left to a
// Resolver.
package wikilink

import (
	"strings"

	"tableflip.dev/outliner/pkg/document"
)

const (
	Open  = "[["
	Close = "]]"
)

// SegmentKind classifies a piece of split text.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentBracket
	SegmentTitle
)

// Segment is a byte range of the input. Start and End index into the text
// given to Split.
type Segment struct {
	Kind  SegmentKind
	Text  string
	Start int
	End   int
}

// Span is one [[title]] occurrence. Start is the offset of the opening
// brackets and End the offset just past the closing ones.
type Span struct {
	Start int
	End   int
	Title string
}

// Spans finds every well formed reference in text. A title cannot be empty,
// span lines or contain brackets of its own.
func Spans(text string) []Span {
	var out []Span
	i := 0
	for {
		open := strings.Index(text[i:], Open)
		if open < 0 {
			return out
		}
		open += i
		close := strings.Index(text[open+len(Open):], Close)
		if close < 0 {
			return out
		}
		close += open + len(Open)
		// The innermost opener wins: "[[a [[b]]" links b.
		if inner := strings.LastIndex(text[open:close], Open); inner > 0 {
			open += inner
		}
		title := text[open+len(Open) : close]
		if strings.TrimSpace(title) == "" || strings.ContainsAny(title, "[]\n") {
			i = open + 1
			continue
		}
		out = append(out, Span{Start: open, End: close + len(Close), Title: title})
		i = close + len(Close)
	}
}

// Split breaks text into plain text, bracket and title segments.
func Split(text string) []Segment {
	var out []Segment
	pos := 0
	add := func(kind SegmentKind, start, end int) {
		if end > start {
			out = append(out, Segment{Kind: kind, Text: text[start:end], Start: start, End: end})
		}
	}
	for _, s := range Spans(text) {
		add(SegmentText, pos, s.Start)
		add(SegmentBracket, s.Start, s.Start+len(Open))
		add(SegmentTitle, s.Start+len(Open), s.End-len(Close))
		add(SegmentBracket, s.End-len(Close), s.End)
		pos = s.End
	}
	add(SegmentText, pos, len(text))
	return out
}

// CanInsertAt reports whether free text may be inserted at offset. The outer
// edges of a reference are refused; edits go strictly inside it or away
// from it.
func CanInsertAt(text string, offset int) bool {
	if offset < 0 || offset > len(text) {
		return false
	}
	for _, s := range Spans(text) {
		if offset == s.Start || offset == s.End {
			return false
		}
	}
	return true
}

// Lift turns references inside the text nodes of t into wikilink nodes and
// reports whether anything changed.
func Lift(t *document.Tree) bool {
	changed := false
	for _, k := range t.Find(document.KindText) {
		n, ok := t.Get(k)
		if !ok || len(Spans(n.Text)) == 0 {
			continue
		}
		parent := n.Parent
		index := t.IndexOf(k)
		for _, node := range inline(n.Text, n.DoneStyle) {
			t.Insert(parent, index, node)
			index++
		}
		t.Remove(k)
		changed = true
	}
	return changed
}

// SetText replaces the inline content of a paragraph or list item with text,
// lifting references into wikilink nodes. Done styling follows the first
// existing inline child.
func SetText(t *document.Tree, block document.Key, text string) bool {
	switch t.Kind(block) {
	case document.KindParagraph, document.KindListItem:
	default:
		return false
	}
	done := false
	children := t.Children(block)
	if len(children) > 0 {
		first, _ := t.Get(children[0])
		done = first.DoneStyle
	}
	t.SetChildren(block, nil)
	for _, node := range inline(text, done) {
		t.Append(block, node)
	}
	return true
}

// InsertText inserts s at offset into the plain text of block. Offsets at
// the outer edge of a reference are refused.
func InsertText(t *document.Tree, block document.Key, offset int, s string) bool {
	text := t.PlainText(block)
	if s == "" || !CanInsertAt(text, offset) {
		return false
	}
	return SetText(t, block, text[:offset]+s+text[offset:])
}

func inline(text string, done bool) []document.Node {
	var out []document.Node
	pos := 0
	for _, s := range Spans(text) {
		if s.Start > pos {
			out = append(out, document.Node{Kind: document.KindText, Text: text[pos:s.Start], DoneStyle: done})
		}
		out = append(out, document.Node{Kind: document.KindWikilink, Text: s.Title, DoneStyle: done})
		pos = s.End
	}
	if pos < len(text) {
		out = append(out, document.Node{Kind: document.KindText, Text: text[pos:], DoneStyle: done})
	}
	return out
}

// Titles returns the distinct referenced titles in document order.
func Titles(t *document.Tree) []string {
	seen := make(map[string]bool)
	var out []string
	for _, k := range t.Find(document.KindWikilink) {
		n, _ := t.Get(k)
		if seen[n.Text] {
			continue
		}
		seen[n.Text] = true
		out = append(out, n.Text)
	}
	return out
}
