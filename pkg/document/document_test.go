package document

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type itemView struct {
	Depth int
	Text  string
	Todo  *Todo
}

func items(t *Tree) []itemView {
	var out []itemView
	for _, k := range t.ListItems() {
		n, _ := t.Get(k)
		out = append(out, itemView{Depth: n.Depth, Text: t.PlainText(k), Todo: n.Todo})
	}
	return out
}

func sample() *Tree {
	t := New()
	t.AddParagraph("Notes for today")
	list := t.AddList()
	t.AddItem(list, 0, "call mom")
	buy := t.AddItem(list, 1, "buy ")
	t.Append(buy, Node{Kind: KindWikilink, Text: "Groceries"})
	t.Update(buy, func(n *Node) { n.Todo = &Todo{Status: "TODO"} })
	done := t.AddItem(list, 0, "ship it")
	t.Update(done, func(n *Node) { n.Todo = &Todo{Status: "NOW", Done: true} })
	return t
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tree := sample()
	encoded, err := Encode(tree)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(items(tree), items(decoded)); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	again, err := Encode(decoded)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if again != encoded {
		t.Fatalf("encoding not stable:\n%s\n%s", encoded, again)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := map[string]string{
		"truncated":        `{"version":1,`,
		"future version":   `{"version":2,"root":{"type":"root"}}`,
		"wrong top":        `{"version":1,"root":{"type":"list"}}`,
		"unknown type":     `{"version":1,"root":{"type":"root","children":[{"type":"table"}]}}`,
		"item under root":  `{"version":1,"root":{"type":"root","children":[{"type":"listitem"}]}}`,
		"negative depth":   `{"version":1,"root":{"type":"root","children":[{"type":"list","children":[{"type":"listitem","depth":-1}]}]}}`,
		"text with blocks": `{"version":1,"root":{"type":"root","children":[{"type":"paragraph","children":[{"type":"text","children":[{"type":"text"}]}]}]}}`,
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(value)
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestBraceParagraphStaysMarkdown(t *testing.T) {
	tree := New()
	tree.AddParagraph("{draft} plan")
	tree.AddItem(tree.AddList(), 0, "x")

	md := ToMarkdown(tree)
	if IsJSON(md) {
		t.Fatalf("markdown %q detected as JSON", md)
	}
	back, err := Decode(md)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(md, ToMarkdown(back)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	for value, want := range map[string]bool{
		`{"version":1}`:   true,
		" {\n  \"a\": 1}": true,
		"{}":              true,
		"{":               true,
		"{draft}":         false,
		"- {x}":           false,
	} {
		if got := IsJSON(value); got != want {
			t.Errorf("IsJSON(%q) = %v, want %v", value, got, want)
		}
	}
}

func TestToMarkdown(t *testing.T) {
	got := ToMarkdown(sample())
	want := "Notes for today\n\n- call mom\n  - TODO buy [[Groceries]]\n- DONE ship it"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("markdown mismatch (-want +got):\n%s", diff)
	}
}

func TestFromMarkdownFlattensNesting(t *testing.T) {
	tree, err := Decode("- a\n  - b\n    - c\n- d [[Home]]")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []itemView{
		{Depth: 0, Text: "a"},
		{Depth: 1, Text: "b"},
		{Depth: 2, Text: "c"},
		{Depth: 0, Text: "d [[Home]]"},
	}
	if diff := cmp.Diff(want, items(tree)); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultJournalValueRoundTrips(t *testing.T) {
	tree, err := Decode("- ")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := len(tree.ListItems()); got != 1 {
		t.Fatalf("expected one empty item, got %d", got)
	}
	if got := ToMarkdown(tree); got != "- " {
		t.Fatalf("expected %q, got %q", "- ", got)
	}
}

func TestFromMarkdownParagraphs(t *testing.T) {
	tree, err := Decode("# Title\n\nSome *bold* text\nwrapped\n\n- item")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := ToMarkdown(tree)
	want := "Title\n\nSome bold text wrapped\n\n- item"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("markdown mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeMutations(t *testing.T) {
	tree := New()
	list := tree.AddList()
	a := tree.AddItem(list, 0, "a")
	c := tree.AddItem(list, 0, "c")
	b := tree.Insert(list, 1, Node{Kind: KindListItem})
	tree.Append(b, Node{Kind: KindText, Text: "b"})

	if diff := cmp.Diff([]Key{a, b, c}, tree.Children(list)); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}
	if tree.IndexOf(b) != 1 {
		t.Fatalf("expected b at index 1, got %d", tree.IndexOf(b))
	}
	if got, ok := tree.Enclosing(tree.Children(b)[0], KindListItem); !ok || got != b {
		t.Fatalf("expected enclosing item %d, got %d", b, got)
	}

	snapshot := tree.Clone()
	before := tree.Len()
	if !tree.Remove(b) {
		t.Fatal("remove failed")
	}
	if tree.Len() != before-2 {
		t.Fatalf("expected subtree removed, len %d -> %d", before, tree.Len())
	}
	if snapshot.PlainText(b) != "b" {
		t.Fatal("clone shares state with original")
	}
	if tree.Remove(tree.Root()) {
		t.Fatal("root must not be removable")
	}

	tree.Update(a, func(n *Node) {
		n.Depth = 3
		n.Children = nil
	})
	n, _ := tree.Get(a)
	if n.Depth != 3 || len(n.Children) != 1 {
		t.Fatalf("update should change depth only, got %+v", n)
	}
}
