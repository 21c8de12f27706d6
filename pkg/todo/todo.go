// Package todo implements the todo marker carried by list items.
//
// A marker has a status and an independent done flag. Status cycles in two
// separate pairs, TODO/DOING and NOW/LATER; nothing crosses between the
// pairs. DONE is accepted as input but never stored: it becomes TODO with the
// done flag set.
package todo

import (
	"regexp"
	"strings"

	"tableflip.dev/outliner/pkg/document"
)

// Status is a todo keyword.
type Status string

const (
	Todo  Status = "TODO"
	Doing Status = "DOING"
	Now   Status = "NOW"
	Later Status = "LATER"
	Done  Status = "DONE"
)

// Statuses lists every keyword in display order.
var Statuses = []Status{Todo, Doing, Now, Later, Done}

var keywordPattern = regexp.MustCompile(`^(TODO|DOING|NOW|LATER|DONE)\s+`)

// Parse returns the Status for s, ignoring case.
func Parse(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, true
		}
	}
	return "", false
}

// Next returns the status a cycle command moves to.
func Next(s Status) Status {
	switch s {
	case Todo:
		return Doing
	case Doing:
		return Todo
	case Now:
		return Later
	case Later:
		return Now
	default:
		return s
	}
}

// ExtractStatus recognizes a leading status keyword followed by whitespace.
func ExtractStatus(text string) (Status, bool) {
	st, _, ok := SplitStatus(text)
	return st, ok
}

// SplitStatus is ExtractStatus that also returns the text after the keyword
// and its whitespace.
func SplitStatus(text string) (Status, string, bool) {
	m := keywordPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return "", text, false
	}
	return Status(text[m[2]:m[3]]), text[m[1]:], true
}

// Marker returns the todo marker of item.
func Marker(t *document.Tree, item document.Key) (document.Todo, bool) {
	n, ok := t.Get(item)
	if !ok || n.Kind != document.KindListItem || n.Todo == nil {
		return document.Todo{}, false
	}
	return *n.Todo, true
}

// Wrap attaches a marker to a list item that has none. DONE wraps as TODO
// with done set.
func Wrap(t *document.Tree, item document.Key, status Status, done bool) bool {
	if t.Kind(item) != document.KindListItem {
		return false
	}
	if _, ok := Marker(t, item); ok {
		return false
	}
	if status != "" {
		parsed, known := Parse(string(status))
		if !known {
			return false
		}
		status = parsed
	}
	status, done = settle(status, done)
	t.Update(item, func(n *document.Node) {
		n.Todo = &document.Todo{Status: string(status), Done: done}
	})
	style(t, item, done)
	return true
}

// ChangeStatus replaces the status of an existing marker; done is kept.
// Changing to DONE sets done and leaves the status alone.
func ChangeStatus(t *document.Tree, item document.Key, status Status) bool {
	m, ok := Marker(t, item)
	if !ok {
		return false
	}
	status, known := Parse(string(status))
	if !known {
		return false
	}
	if status == Done {
		return SetDone(t, item, true)
	}
	if m.Status == string(status) {
		return false
	}
	t.Update(item, func(n *document.Node) { n.Todo.Status = string(status) })
	return true
}

// SetDone sets the done flag and styles the item's inline content to match.
// The status is preserved.
func SetDone(t *document.Tree, item document.Key, done bool) bool {
	m, ok := Marker(t, item)
	if !ok || m.Done == done {
		return false
	}
	t.Update(item, func(n *document.Node) { n.Todo.Done = done })
	style(t, item, done)
	return true
}

// Unwrap removes the marker and any done styling.
func Unwrap(t *document.Tree, item document.Key) bool {
	m, ok := Marker(t, item)
	if !ok {
		return false
	}
	t.Update(item, func(n *document.Node) { n.Todo = nil })
	if m.Done {
		style(t, item, false)
	}
	return true
}

// Cycle advances the status with Next. It is refused while the item is done.
func Cycle(t *document.Tree, item document.Key) bool {
	m, ok := Marker(t, item)
	if !ok || m.Done {
		return false
	}
	next := Next(Status(m.Status))
	if string(next) == m.Status {
		return false
	}
	t.Update(item, func(n *document.Node) { n.Todo.Status = string(next) })
	return true
}

// Normalize brings one list item into canonical form. An item without a
// marker whose text leads with a status keyword gets the keyword lifted into
// a marker. An item with a marker has its styling re-synced with its done
// flag and any stored DONE status folded into the flag.
func Normalize(t *document.Tree, item document.Key) bool {
	n, ok := t.Get(item)
	if !ok || n.Kind != document.KindListItem {
		return false
	}
	if n.Todo != nil {
		changed := false
		if Status(n.Todo.Status) == Done {
			t.Update(item, func(n *document.Node) { n.Todo.Status, n.Todo.Done = string(Todo), true })
			changed = true
		}
		m, _ := Marker(t, item)
		return style(t, item, m.Done) || changed
	}
	if len(n.Children) == 0 {
		return false
	}
	first, _ := t.Get(n.Children[0])
	if first.Kind != document.KindText {
		return false
	}
	status, rest, ok := SplitStatus(first.Text)
	if !ok {
		return false
	}
	if rest == "" {
		t.Remove(n.Children[0])
	} else {
		t.Update(n.Children[0], func(n *document.Node) { n.Text = rest })
	}
	return Wrap(t, item, status, false)
}

// NormalizeAll runs Normalize over every list item and reports whether
// anything changed.
func NormalizeAll(t *document.Tree) bool {
	changed := false
	for _, item := range t.ListItems() {
		if Normalize(t, item) {
			changed = true
		}
	}
	return changed
}

func settle(status Status, done bool) (Status, bool) {
	if status == Done {
		return Todo, true
	}
	if status == "" {
		return Todo, done
	}
	return status, done
}

// style sets DoneStyle on the inline children of item.
func style(t *document.Tree, item document.Key, done bool) bool {
	changed := false
	for _, c := range t.Children(item) {
		if !t.Kind(c).IsInline() {
			continue
		}
		t.Update(c, func(n *document.Node) {
			if n.DoneStyle != done {
				n.DoneStyle = done
				changed = true
			}
		})
	}
	return changed
}
