// Package list implements the structural commands on list items: indent,
// outdent, move and delete.
//
// Items are addressed inside their list container, where nesting is the
// depth of each item. An item's block is the item followed by its
// descendants. Every operation moves whole blocks, so descendants keep their
// order and relative depth, and todo markers travel with their items.
// Illegal operations change nothing and return false.
package list

import (
	"tableflip.dev/outliner/pkg/document"
)

// Direction selects MoveUp or MoveDown.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

type view struct {
	tree  *document.Tree
	list  document.Key
	items []document.Key
	index int
}

func locate(t *document.Tree, item document.Key) (view, bool) {
	if t.Kind(item) != document.KindListItem {
		return view{}, false
	}
	list := t.Parent(item)
	v := view{tree: t, list: list, items: t.Children(list), index: t.IndexOf(item)}
	return v, v.index >= 0
}

func (v view) depth(i int) int {
	n, _ := v.tree.Get(v.items[i])
	return n.Depth
}

// end returns the index just past the block starting at i.
func (v view) end(i int) int {
	d := v.depth(i)
	j := i + 1
	for j < len(v.items) && v.depth(j) > d {
		j++
	}
	return j
}

// previousSibling returns the index of the block before i at the same depth.
func (v view) previousSibling(i int) (int, bool) {
	d := v.depth(i)
	for j := i - 1; j >= 0; j-- {
		switch dj := v.depth(j); {
		case dj == d:
			return j, true
		case dj < d:
			return 0, false
		}
	}
	return 0, false
}

// nextSibling returns the index of the block after i at the same depth.
func (v view) nextSibling(i int) (int, bool) {
	j := v.end(i)
	if j < len(v.items) && v.depth(j) == v.depth(i) {
		return j, true
	}
	return 0, false
}

func (v view) shift(delta int) {
	for _, k := range v.items[v.index:v.end(v.index)] {
		v.tree.Update(k, func(n *document.Node) { n.Depth += delta })
	}
}

// CanIndent reports whether item has a preceding sibling at its depth to
// tuck under.
func CanIndent(t *document.Tree, item document.Key) bool {
	v, ok := locate(t, item)
	if !ok {
		return false
	}
	_, ok = v.previousSibling(v.index)
	return ok
}

// CanOutdent reports whether item is nested.
func CanOutdent(t *document.Tree, item document.Key) bool {
	v, ok := locate(t, item)
	return ok && v.depth(v.index) > 0
}

// Indent nests item and its descendants one level deeper.
func Indent(t *document.Tree, item document.Key) bool {
	if !CanIndent(t, item) {
		return false
	}
	v, _ := locate(t, item)
	v.shift(1)
	return true
}

// Outdent lifts item and its descendants one level. The block is placed
// after its parent's block, so later siblings stay with the parent.
func Outdent(t *document.Tree, item document.Key) bool {
	if !CanOutdent(t, item) {
		return false
	}
	v, _ := locate(t, item)
	end := v.end(v.index)
	depth := v.depth(v.index)
	v.shift(-1)

	parent := v.index - 1
	for parent >= 0 && v.depth(parent) >= depth {
		parent--
	}
	if parent < 0 {
		return true
	}
	parentEnd := end
	for parentEnd < len(v.items) && v.depth(parentEnd) > v.depth(parent) {
		parentEnd++
	}
	if parentEnd == end {
		return true
	}
	order := make([]document.Key, 0, len(v.items))
	order = append(order, v.items[:v.index]...)
	order = append(order, v.items[end:parentEnd]...)
	order = append(order, v.items[v.index:end]...)
	order = append(order, v.items[parentEnd:]...)
	v.tree.SetChildren(v.list, order)
	return true
}

// Move swaps the block of item with its neighbouring sibling block.
func Move(t *document.Tree, item document.Key, dir Direction) bool {
	if dir == Up {
		return MoveUp(t, item)
	}
	return MoveDown(t, item)
}

// MoveUp swaps item's block with the previous sibling's block.
func MoveUp(t *document.Tree, item document.Key) bool {
	v, ok := locate(t, item)
	if !ok {
		return false
	}
	prev, ok := v.previousSibling(v.index)
	if !ok {
		return false
	}
	v.swap(prev, v.index)
	return true
}

// MoveDown swaps item's block with the next sibling's block.
func MoveDown(t *document.Tree, item document.Key) bool {
	v, ok := locate(t, item)
	if !ok {
		return false
	}
	next, ok := v.nextSibling(v.index)
	if !ok {
		return false
	}
	v.swap(v.index, next)
	return true
}

// swap exchanges the adjacent blocks starting at a and b, a < b.
func (v view) swap(a, b int) {
	endB := v.end(b)
	order := make([]document.Key, 0, len(v.items))
	order = append(order, v.items[:a]...)
	order = append(order, v.items[b:endB]...)
	order = append(order, v.items[a:b]...)
	order = append(order, v.items[endB:]...)
	v.tree.SetChildren(v.list, order)
}

// Delete removes item together with its descendants.
func Delete(t *document.Tree, item document.Key) bool {
	v, ok := locate(t, item)
	if !ok {
		return false
	}
	end := v.end(v.index)
	order := make([]document.Key, 0, len(v.items)-(end-v.index))
	order = append(order, v.items[:v.index]...)
	order = append(order, v.items[end:]...)
	v.tree.SetChildren(v.list, order)
	return true
}

// Descendants returns the items nested under item.
func Descendants(t *document.Tree, item document.Key) []document.Key {
	v, ok := locate(t, item)
	if !ok {
		return nil
	}
	return append([]document.Key(nil), v.items[v.index+1:v.end(v.index)]...)
}
