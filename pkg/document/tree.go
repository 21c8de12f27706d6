// Package document holds the in-memory tree a page value decodes into.
//
// Nodes live in an arena addressed by Key. Parents list their children by key
// and every node records its parent key, so nothing holds a pointer into the
// tree. Mutation replaces the node stored at a key, which keeps Clone cheap.
//
// List items are flat: a list's children are its items in order, and nesting
// is carried by each item's Depth. The descendants of an item are the items
// that follow it with a greater depth.
package document

import (
	"fmt"
	"strings"
)

// Key addresses a node inside a Tree. The zero Key addresses nothing.
type Key int

// NoKey is the zero Key.
const NoKey Key = 0

// Kind is the closed set of node variants.
type Kind int

const (
	KindRoot Kind = iota + 1
	KindParagraph
	KindList
	KindListItem
	KindText
	KindWikilink
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindParagraph:
		return "paragraph"
	case KindList:
		return "list"
	case KindListItem:
		return "listitem"
	case KindText:
		return "text"
	case KindWikilink:
		return "wikilink"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsBlock reports whether k may appear directly under the root.
func (k Kind) IsBlock() bool {
	return k == KindParagraph || k == KindList
}

// IsInline reports whether k may appear inside a paragraph or list item.
func (k Kind) IsInline() bool {
	return k == KindText || k == KindWikilink
}

// Todo is the marker carried by a todo list item.
type Todo struct {
	Status string
	Done   bool
}

// Node is one arena slot. Which fields are meaningful depends on Kind:
// Text and DoneStyle for inline nodes (Text is the title of a wikilink),
// Depth and Todo for list items.
type Node struct {
	Kind      Kind
	Parent    Key
	Children  []Key
	Text      string
	DoneStyle bool
	Depth     int
	Todo      *Todo
}

// Tree is an arena of nodes rooted at Root.
type Tree struct {
	nodes map[Key]Node
	next  Key
	root  Key
}

// New returns a tree holding only a root node.
func New() *Tree {
	t := &Tree{nodes: make(map[Key]Node)}
	t.root = t.alloc(Node{Kind: KindRoot})
	return t
}

func (t *Tree) alloc(n Node) Key {
	t.next++
	t.nodes[t.next] = n
	return t.next
}

// Root returns the key of the root node.
func (t *Tree) Root() Key {
	return t.root
}

// Len returns the number of nodes including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Get returns a copy of the node at k.
func (t *Tree) Get(k Key) (Node, bool) {
	n, ok := t.nodes[k]
	if !ok {
		return Node{}, false
	}
	n.Children = append([]Key(nil), n.Children...)
	if n.Todo != nil {
		todo := *n.Todo
		n.Todo = &todo
	}
	return n, true
}

// Kind returns the kind of the node at k, or zero when k is unknown.
func (t *Tree) Kind(k Key) Kind {
	return t.nodes[k].Kind
}

// Parent returns the parent key of k.
func (t *Tree) Parent(k Key) Key {
	return t.nodes[k].Parent
}

// Children returns a copy of the child keys of k.
func (t *Tree) Children(k Key) []Key {
	return append([]Key(nil), t.nodes[k].Children...)
}

// Update replaces the node at k with the result of fn applied to a copy.
// Parent and Children are structural and are restored after fn runs.
func (t *Tree) Update(k Key, fn func(*Node)) bool {
	n, ok := t.Get(k)
	if !ok {
		return false
	}
	parent, children := n.Parent, n.Children
	fn(&n)
	n.Parent, n.Children = parent, children
	t.nodes[k] = n
	return true
}

// Append adds n as the last child of parent and returns its key.
func (t *Tree) Append(parent Key, n Node) Key {
	return t.Insert(parent, len(t.nodes[parent].Children), n)
}

// Insert adds n as child number index of parent and returns its key.
func (t *Tree) Insert(parent Key, index int, n Node) Key {
	p, ok := t.nodes[parent]
	if !ok {
		panic(fmt.Sprintf("document: insert under unknown key %d", parent))
	}
	if index < 0 || index > len(p.Children) {
		panic(fmt.Sprintf("document: insert index %d out of range", index))
	}
	n.Parent = parent
	n.Children = nil
	k := t.alloc(n)

	children := make([]Key, 0, len(p.Children)+1)
	children = append(children, p.Children[:index]...)
	children = append(children, k)
	children = append(children, p.Children[index:]...)
	p.Children = children
	t.nodes[parent] = p
	return k
}

// SetChildren reorders or trims the children of parent. Keys dropped from the
// list are removed from the tree with their subtrees.
func (t *Tree) SetChildren(parent Key, children []Key) {
	p, ok := t.nodes[parent]
	if !ok {
		return
	}
	keep := make(map[Key]bool, len(children))
	for _, c := range children {
		keep[c] = true
	}
	for _, c := range p.Children {
		if !keep[c] {
			t.drop(c)
		}
	}
	p.Children = append([]Key(nil), children...)
	t.nodes[parent] = p
}

// Remove deletes k and its subtree. The root cannot be removed.
func (t *Tree) Remove(k Key) bool {
	n, ok := t.nodes[k]
	if !ok || k == t.root {
		return false
	}
	p := t.nodes[n.Parent]
	children := make([]Key, 0, len(p.Children))
	for _, c := range p.Children {
		if c != k {
			children = append(children, c)
		}
	}
	p.Children = children
	t.nodes[n.Parent] = p
	t.drop(k)
	return true
}

func (t *Tree) drop(k Key) {
	for _, c := range t.nodes[k].Children {
		t.drop(c)
	}
	delete(t.nodes, k)
}

// IndexOf returns the position of k among its parent's children, or -1.
func (t *Tree) IndexOf(k Key) int {
	n, ok := t.nodes[k]
	if !ok {
		return -1
	}
	for i, c := range t.nodes[n.Parent].Children {
		if c == k {
			return i
		}
	}
	return -1
}

// Clone returns an independent copy. Keys stay valid in the copy.
func (t *Tree) Clone() *Tree {
	c := &Tree{nodes: make(map[Key]Node, len(t.nodes)), next: t.next, root: t.root}
	for k := range t.nodes {
		n, _ := t.Get(k)
		c.nodes[k] = n
	}
	return c
}

// Walk visits the tree depth first in document order until fn returns false.
func (t *Tree) Walk(fn func(Key, Node) bool) {
	var visit func(Key) bool
	visit = func(k Key) bool {
		n, ok := t.Get(k)
		if !ok {
			return true
		}
		if !fn(k, n) {
			return false
		}
		for _, c := range n.Children {
			if !visit(c) {
				return false
			}
		}
		return true
	}
	visit(t.root)
}

// Find returns the keys of every node of kind k in document order.
func (t *Tree) Find(kind Kind) []Key {
	var out []Key
	t.Walk(func(k Key, n Node) bool {
		if n.Kind == kind {
			out = append(out, k)
		}
		return true
	})
	return out
}

// ListItems returns every list item in document order.
func (t *Tree) ListItems() []Key {
	return t.Find(KindListItem)
}

// Enclosing returns k itself or its nearest ancestor of the given kind.
func (t *Tree) Enclosing(k Key, kind Kind) (Key, bool) {
	for k != NoKey {
		n, ok := t.nodes[k]
		if !ok {
			return NoKey, false
		}
		if n.Kind == kind {
			return k, true
		}
		k = n.Parent
	}
	return NoKey, false
}

// PlainText renders the inline content of a paragraph or list item with
// wikilinks in their bracketed form. Todo markers are not included.
func (t *Tree) PlainText(k Key) string {
	var b strings.Builder
	for _, c := range t.nodes[k].Children {
		n := t.nodes[c]
		switch n.Kind {
		case KindText:
			b.WriteString(n.Text)
		case KindWikilink:
			b.WriteString("[[")
			b.WriteString(n.Text)
			b.WriteString("]]")
		}
	}
	return b.String()
}

// AddList appends an empty list under the root.
func (t *Tree) AddList() Key {
	return t.Append(t.root, Node{Kind: KindList})
}

// AddParagraph appends a paragraph holding text under the root.
func (t *Tree) AddParagraph(text string) Key {
	p := t.Append(t.root, Node{Kind: KindParagraph})
	if text != "" {
		t.Append(p, Node{Kind: KindText, Text: text})
	}
	return p
}

// AddItem appends a list item at depth holding text to list.
func (t *Tree) AddItem(list Key, depth int, text string) Key {
	item := t.Append(list, Node{Kind: KindListItem, Depth: depth})
	if text != "" {
		t.Append(item, Node{Kind: KindText, Text: text})
	}
	return item
}

// LastList returns the last list directly under the root, creating one when
// the document ends with something else.
func (t *Tree) LastList() Key {
	children := t.nodes[t.root].Children
	if n := len(children); n > 0 && t.nodes[children[n-1]].Kind == KindList {
		return children[n-1]
	}
	return t.AddList()
}
