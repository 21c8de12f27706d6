// Package command routes editing intents to the todo, list and wikilink
// rules.
//
// A Dispatcher holds an ordered slice of handlers fixed at construction.
// Dispatch resolves the focused list item from the selection and offers the
// intent to each handler in turn until one reports it handled. Handlers
// report false for intents they do not own and for illegal operations, which
// leave the document untouched.
package command

import (
	"tableflip.dev/outliner/pkg/document"
	"tableflip.dev/outliner/pkg/list"
	"tableflip.dev/outliner/pkg/todo"
	"tableflip.dev/outliner/pkg/wikilink"
)

// Point is a position inside the inline content of a node.
type Point struct {
	Key    document.Key
	Offset int
}

// Selection is an anchor and a focus. Intents act only on a collapsed
// selection inside a list item.
type Selection struct {
	Anchor Point
	Focus  Point
}

// Caret returns a collapsed selection at key and offset.
func Caret(key document.Key, offset int) Selection {
	p := Point{Key: key, Offset: offset}
	return Selection{Anchor: p, Focus: p}
}

// Collapsed reports whether anchor and focus coincide.
func (s Selection) Collapsed() bool {
	return s.Anchor == s.Focus
}

// Target is what a handler acts on.
type Target struct {
	Tree   *document.Tree
	Item   document.Key
	Offset int
}

// Handler applies an intent and reports whether it was handled.
type Handler interface {
	Handle(t Target, in Intent) bool
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(t Target, in Intent) bool

// Handle implements Handler.
func (f HandlerFunc) Handle(t Target, in Intent) bool {
	return f(t, in)
}

// Dispatcher offers intents to its handlers in order.
type Dispatcher struct {
	handlers []Handler
}

// New returns a dispatcher over handlers, first to last.
func New(handlers ...Handler) *Dispatcher {
	return &Dispatcher{handlers: append([]Handler(nil), handlers...)}
}

// NewDefault returns a dispatcher over DefaultHandlers.
func NewDefault() *Dispatcher {
	return New(DefaultHandlers()...)
}

// Handlers returns the dispatch order.
func (d *Dispatcher) Handlers() []Handler {
	return append([]Handler(nil), d.handlers...)
}

// Focus resolves the list item a selection points into.
func Focus(tree *document.Tree, sel Selection) (document.Key, bool) {
	if tree == nil || !sel.Collapsed() {
		return document.NoKey, false
	}
	return tree.Enclosing(sel.Focus.Key, document.KindListItem)
}

// Dispatch applies in to the item focused by sel. It returns false when no
// item is focused or no handler handled the intent.
func (d *Dispatcher) Dispatch(tree *document.Tree, sel Selection, in Intent) bool {
	item, ok := Focus(tree, sel)
	if !ok {
		return false
	}
	offset := sel.Focus.Offset
	if sel.Focus.Key != item {
		offset = offsetInItem(tree, item, sel.Focus)
	}
	target := Target{Tree: tree, Item: item, Offset: offset}
	for _, h := range d.handlers {
		if h.Handle(target, in) {
			return true
		}
	}
	return false
}

// offsetInItem converts a point inside an inline child into an offset in the
// item's plain text.
func offsetInItem(tree *document.Tree, item document.Key, p Point) int {
	offset := 0
	for _, c := range tree.Children(item) {
		n, _ := tree.Get(c)
		if c == p.Key {
			if n.Kind == document.KindWikilink {
				return offset + len(wikilink.Open) + p.Offset
			}
			return offset + p.Offset
		}
		switch n.Kind {
		case document.KindText:
			offset += len(n.Text)
		case document.KindWikilink:
			offset += len(wikilink.Open) + len(n.Text) + len(wikilink.Close)
		}
	}
	return offset
}

// DefaultHandlers returns the standard order: todo rules, then list
// structure, then text.
func DefaultHandlers() []Handler {
	return []Handler{
		HandlerFunc(TodoHandler),
		HandlerFunc(ListHandler),
		HandlerFunc(TextHandler),
	}
}

// TodoHandler handles the todo intents.
func TodoHandler(t Target, in Intent) bool {
	switch in := in.(type) {
	case InsertTodo:
		return todo.Wrap(t.Tree, t.Item, in.Status, in.Done)
	case SetTodoStatus:
		return todo.ChangeStatus(t.Tree, t.Item, in.Status)
	case SetTodoDone:
		return todo.SetDone(t.Tree, t.Item, in.Done)
	case RemoveTodo:
		return todo.Unwrap(t.Tree, t.Item)
	case CycleTodo:
		return todo.Cycle(t.Tree, t.Item)
	}
	return false
}

// ListHandler handles the structural intents.
func ListHandler(t Target, in Intent) bool {
	switch in := in.(type) {
	case Indent:
		return list.Indent(t.Tree, t.Item)
	case Outdent:
		return list.Outdent(t.Tree, t.Item)
	case Move:
		return list.Move(t.Tree, t.Item, in.Dir)
	case Delete:
		return list.Delete(t.Tree, t.Item)
	}
	return false
}

// TextHandler handles text insertion.
func TextHandler(t Target, in Intent) bool {
	if in, ok := in.(InsertText); ok {
		return wikilink.InsertText(t.Tree, t.Item, t.Offset, in.Text)
	}
	return false
}
