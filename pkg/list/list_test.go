package list

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"tableflip.dev/outliner/pkg/document"
	"tableflip.dev/outliner/pkg/todo"
)

type row struct {
	Text  string
	Depth int
}

func build(rows ...row) (*document.Tree, map[string]document.Key) {
	t := document.New()
	l := t.AddList()
	keys := make(map[string]document.Key, len(rows))
	for _, r := range rows {
		keys[r.Text] = t.AddItem(l, r.Depth, r.Text)
	}
	return t, keys
}

func rows(t *document.Tree) []row {
	var out []row
	for _, k := range t.ListItems() {
		n, _ := t.Get(k)
		out = append(out, row{Text: t.PlainText(k), Depth: n.Depth})
	}
	return out
}

func TestIndentRequiresPrecedingSibling(t *testing.T) {
	tree, k := build(row{"a", 0}, row{"b", 1}, row{"c", 0})

	if Indent(tree, k["a"]) {
		t.Fatal("first item cannot indent")
	}
	if Indent(tree, k["b"]) {
		t.Fatal("first child cannot indent")
	}
	if !Indent(tree, k["c"]) {
		t.Fatal("c should tuck under a")
	}
	want := []row{{"a", 0}, {"b", 1}, {"c", 1}}
	if diff := cmp.Diff(want, rows(tree)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestIndentCarriesDescendants(t *testing.T) {
	tree, k := build(row{"a", 0}, row{"b", 0}, row{"b1", 1}, row{"b2", 2}, row{"c", 0})
	if !Indent(tree, k["b"]) {
		t.Fatal("indent refused")
	}
	want := []row{{"a", 0}, {"b", 1}, {"b1", 2}, {"b2", 3}, {"c", 0}}
	if diff := cmp.Diff(want, rows(tree)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if !Outdent(tree, k["b"]) {
		t.Fatal("outdent refused")
	}
	want = []row{{"a", 0}, {"b", 0}, {"b1", 1}, {"b2", 2}, {"c", 0}}
	if diff := cmp.Diff(want, rows(tree)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOutdentLeavesLaterSiblingsWithParent(t *testing.T) {
	tree, k := build(row{"a", 0}, row{"b", 1}, row{"b1", 2}, row{"c", 1}, row{"d", 0})
	if !Outdent(tree, k["b"]) {
		t.Fatal("outdent refused")
	}
	want := []row{{"a", 0}, {"c", 1}, {"b", 0}, {"b1", 1}, {"d", 0}}
	if diff := cmp.Diff(want, rows(tree)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOutdentAtRootIsNoop(t *testing.T) {
	tree, k := build(row{"a", 0})
	if CanOutdent(tree, k["a"]) || Outdent(tree, k["a"]) {
		t.Fatal("outdent at depth 0 must be a no-op")
	}
}

func TestMoveSwapsBlocks(t *testing.T) {
	tree, k := build(row{"a", 0}, row{"a1", 1}, row{"b", 0}, row{"b1", 1}, row{"b2", 1})

	if MoveUp(tree, k["a"]) {
		t.Fatal("first block cannot move up")
	}
	if MoveDown(tree, k["b"]) {
		t.Fatal("last block cannot move down")
	}
	if !Move(tree, k["b"], Up) {
		t.Fatal("move up refused")
	}
	want := []row{{"b", 0}, {"b1", 1}, {"b2", 1}, {"a", 0}, {"a1", 1}}
	if diff := cmp.Diff(want, rows(tree)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if !Move(tree, k["b1"], Down) {
		t.Fatal("child move down refused")
	}
	want = []row{{"b", 0}, {"b2", 1}, {"b1", 1}, {"a", 0}, {"a1", 1}}
	if diff := cmp.Diff(want, rows(tree)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if MoveDown(tree, k["b1"]) {
		t.Fatal("moving past the parent's block must be refused")
	}
}

func TestDeleteRemovesBlock(t *testing.T) {
	tree, k := build(row{"a", 0}, row{"b", 0}, row{"b1", 1}, row{"c", 0})
	if got := Descendants(tree, k["b"]); len(got) != 1 || got[0] != k["b1"] {
		t.Fatalf("unexpected descendants %v", got)
	}
	if !Delete(tree, k["b"]) {
		t.Fatal("delete refused")
	}
	want := []row{{"a", 0}, {"c", 0}}
	if diff := cmp.Diff(want, rows(tree)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if _, ok := tree.Get(k["b1"]); ok {
		t.Fatal("descendant still in the arena")
	}
	if Delete(tree, tree.Root()) {
		t.Fatal("only list items can be deleted")
	}
}

func TestIndentKeepsTodoMarker(t *testing.T) {
	tree, k := build(row{"a", 0}, row{"b", 0})
	todo.Wrap(tree, k["b"], todo.Now, true)
	Indent(tree, k["b"])
	m, ok := todo.Marker(tree, k["b"])
	if !ok || todo.Status(m.Status) != todo.Now || !m.Done {
		t.Fatalf("marker lost: %+v %v", m, ok)
	}
}

// genList draws a well formed list: each depth is at most one more than the
// previous item's.
func genList(rt *rapid.T) []row {
	n := rapid.IntRange(1, 8).Draw(rt, "n")
	out := make([]row, n)
	prev := -1
	for i := range out {
		d := rapid.IntRange(0, prev+1).Draw(rt, "depth")
		out[i] = row{Text: string(rune('a' + i)), Depth: d}
		prev = d
	}
	return out
}

func TestIndentLegalityProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := genList(rt)
		tree, k := build(input...)
		target := input[rapid.IntRange(0, len(input)-1).Draw(rt, "target")]
		item := k[target.Text]

		before := rows(tree)
		descBefore := relative(tree, item)
		can := CanIndent(tree, item)
		changed := Indent(tree, item)
		if can != changed {
			rt.Fatalf("CanIndent=%v but Indent=%v", can, changed)
		}
		after := rows(tree)
		if !changed {
			if diff := cmp.Diff(before, after); diff != "" {
				rt.Fatalf("no-op indent changed list:\n%s", diff)
			}
			return
		}
		n, _ := tree.Get(item)
		if n.Depth != target.Depth+1 {
			rt.Fatalf("depth %d -> %d", target.Depth, n.Depth)
		}
		if diff := cmp.Diff(descBefore, relative(tree, item)); diff != "" {
			rt.Fatalf("descendant structure changed:\n%s", diff)
		}
	})
}

func TestOutdentLegalityProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := genList(rt)
		tree, k := build(input...)
		target := input[rapid.IntRange(0, len(input)-1).Draw(rt, "target")]
		item := k[target.Text]

		descBefore := relative(tree, item)
		changed := Outdent(tree, item)
		if changed != (target.Depth > 0) {
			rt.Fatalf("depth %d outdent returned %v", target.Depth, changed)
		}
		n, _ := tree.Get(item)
		want := target.Depth
		if changed {
			want--
		}
		if n.Depth != want {
			rt.Fatalf("depth %d -> %d", target.Depth, n.Depth)
		}
		if diff := cmp.Diff(descBefore, relative(tree, item)); diff != "" {
			rt.Fatalf("descendant structure changed:\n%s", diff)
		}
	})
}

func TestMovePreservesItemsProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := genList(rt)
		tree, k := build(input...)
		target := input[rapid.IntRange(0, len(input)-1).Draw(rt, "target")]
		dir := Direction(rapid.IntRange(0, 1).Draw(rt, "dir"))

		descBefore := relative(tree, k[target.Text])
		Move(tree, k[target.Text], dir)
		if got := len(rows(tree)); got != len(input) {
			rt.Fatalf("move changed item count %d -> %d", len(input), got)
		}
		if diff := cmp.Diff(descBefore, relative(tree, k[target.Text])); diff != "" {
			rt.Fatalf("descendant structure changed:\n%s", diff)
		}
	})
}

// relative lists item's descendants with depths relative to item.
func relative(t *document.Tree, item document.Key) []row {
	base, _ := t.Get(item)
	var out []row
	for _, k := range Descendants(t, item) {
		n, _ := t.Get(k)
		out = append(out, row{Text: t.PlainText(k), Depth: n.Depth - base.Depth})
	}
	return out
}
