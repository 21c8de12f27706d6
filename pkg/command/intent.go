package command

import (
	"fmt"

	"tableflip.dev/outliner/pkg/list"
	"tableflip.dev/outliner/pkg/todo"
)

// Intent is the closed set of editing commands.
type Intent interface {
	Name() string
	intent()
}

// InsertTodo wraps the focused item in a todo marker.
type InsertTodo struct {
	Status todo.Status
	Done   bool
}

// SetTodoStatus changes the status of the focused todo item.
type SetTodoStatus struct {
	Status todo.Status
}

// SetTodoDone sets or clears the done flag of the focused todo item.
type SetTodoDone struct {
	Done bool
}

// RemoveTodo turns the focused todo item back into a plain item.
type RemoveTodo struct{}

// CycleTodo advances the focused item's status within its pair.
type CycleTodo struct{}

// Indent nests the focused item under its previous sibling.
type Indent struct{}

// Outdent lifts the focused item one level.
type Outdent struct{}

// Move swaps the focused item with a sibling.
type Move struct {
	Dir list.Direction
}

// Delete removes the focused item and its descendants.
type Delete struct{}

// InsertText inserts text into the focused item at the selection offset.
type InsertText struct {
	Text string
}

func (InsertTodo) Name() string    { return "insert-todo" }
func (SetTodoStatus) Name() string { return "set-todo-status" }
func (SetTodoDone) Name() string   { return "set-todo-done" }
func (RemoveTodo) Name() string    { return "remove-todo" }
func (CycleTodo) Name() string     { return "cycle-todo" }
func (Indent) Name() string        { return "indent" }
func (Outdent) Name() string       { return "outdent" }
func (Move) Name() string          { return "move" }
func (Delete) Name() string        { return "delete" }
func (InsertText) Name() string    { return "insert-text" }

func (InsertTodo) intent()    {}
func (SetTodoStatus) intent() {}
func (SetTodoDone) intent()   {}
func (RemoveTodo) intent()    {}
func (CycleTodo) intent()     {}
func (Indent) intent()        {}
func (Outdent) intent()       {}
func (Move) intent()          {}
func (Delete) intent()        {}
func (InsertText) intent()    {}

// Parse builds an intent from its name and an optional argument, as typed on
// the command line: a status for insert-todo and set-todo-status, true/false
// for set-todo-done, up/down for move and the text for insert-text.
func Parse(name, arg string) (Intent, error) {
	switch name {
	case "insert-todo", "add":
		st := todo.Todo
		if arg != "" {
			var ok bool
			if st, ok = todo.Parse(arg); !ok {
				return nil, fmt.Errorf("unknown todo status %q", arg)
			}
		}
		return InsertTodo{Status: st}, nil
	case "set-todo-status", "status":
		st, ok := todo.Parse(arg)
		if !ok {
			return nil, fmt.Errorf("unknown todo status %q", arg)
		}
		return SetTodoStatus{Status: st}, nil
	case "set-todo-done", "done":
		return SetTodoDone{Done: arg != "false"}, nil
	case "undone":
		return SetTodoDone{Done: false}, nil
	case "remove-todo", "remove":
		return RemoveTodo{}, nil
	case "cycle-todo", "cycle":
		return CycleTodo{}, nil
	case "indent":
		return Indent{}, nil
	case "outdent":
		return Outdent{}, nil
	case "move", "up", "down":
		dir := arg
		if name != "move" {
			dir = name
		}
		switch dir {
		case "up":
			return Move{Dir: list.Up}, nil
		case "down":
			return Move{Dir: list.Down}, nil
		}
		return nil, fmt.Errorf("unknown direction %q", arg)
	case "delete", "rm":
		return Delete{}, nil
	case "insert-text":
		return InsertText{Text: arg}, nil
	}
	return nil, fmt.Errorf("unknown intent %q", name)
}
