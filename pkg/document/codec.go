package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Version is the current JSON encoding version.
const Version = 1

// ErrMalformed wraps every failure to decode a stored value.
var ErrMalformed = errors.New("document: malformed value")

type wireDocument struct {
	Version int      `json:"version"`
	Root    wireNode `json:"root"`
}

type wireNode struct {
	Type     string     `json:"type"`
	Text     string     `json:"text,omitempty"`
	Done     bool       `json:"done,omitempty"`
	Depth    int        `json:"depth,omitempty"`
	Todo     *wireTodo  `json:"todo,omitempty"`
	Children []wireNode `json:"children,omitempty"`
}

type wireTodo struct {
	Status string `json:"status"`
	Done   bool   `json:"done"`
}

var kindNames = map[string]Kind{
	"root":      KindRoot,
	"paragraph": KindParagraph,
	"list":      KindList,
	"listitem":  KindListItem,
	"text":      KindText,
	"wikilink":  KindWikilink,
}

// IsJSON reports whether value uses the JSON encoding rather than markdown.
// Only the opening of a JSON object counts: a brace followed by a key or by
// the closing brace. Markdown text such as "{draft} plan" stays markdown.
func IsJSON(value string) bool {
	rest, ok := strings.CutPrefix(strings.TrimSpace(value), "{")
	if !ok {
		return false
	}
	rest = strings.TrimSpace(rest)
	return rest == "" || rest[0] == '"' || rest[0] == '}'
}

// Decode parses a stored page value. JSON values use the versioned tree
// encoding; anything else is read as markdown.
func Decode(value string) (*Tree, error) {
	if IsJSON(value) {
		return DecodeJSON([]byte(value))
	}
	return FromMarkdown(value)
}

// Encode renders t in the versioned JSON encoding.
func Encode(t *Tree) (string, error) {
	root, err := t.wire(t.root)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(wireDocument{Version: Version, Root: root})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (t *Tree) wire(k Key) (wireNode, error) {
	n, ok := t.Get(k)
	if !ok {
		return wireNode{}, fmt.Errorf("document: dangling key %d", k)
	}
	w := wireNode{Type: n.Kind.String()}
	switch n.Kind {
	case KindRoot, KindParagraph, KindList:
	case KindListItem:
		w.Depth = n.Depth
		if n.Todo != nil {
			w.Todo = &wireTodo{Status: n.Todo.Status, Done: n.Todo.Done}
		}
	case KindText, KindWikilink:
		w.Text = n.Text
		w.Done = n.DoneStyle
	default:
		return wireNode{}, fmt.Errorf("document: cannot encode %s", n.Kind)
	}
	for _, c := range n.Children {
		child, err := t.wire(c)
		if err != nil {
			return wireNode{}, err
		}
		w.Children = append(w.Children, child)
	}
	return w, nil
}

// DecodeJSON parses the versioned JSON encoding. Any failure wraps
// ErrMalformed.
func DecodeJSON(data []byte) (*Tree, error) {
	var doc wireDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, doc.Version)
	}
	if doc.Root.Type != "root" {
		return nil, fmt.Errorf("%w: top node is %q, want root", ErrMalformed, doc.Root.Type)
	}
	t := New()
	for _, c := range doc.Root.Children {
		if err := t.unwire(t.root, KindRoot, c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Tree) unwire(parent Key, parentKind Kind, w wireNode) error {
	kind, ok := kindNames[w.Type]
	if !ok {
		return fmt.Errorf("%w: unknown node type %q", ErrMalformed, w.Type)
	}
	if !allowedChild(parentKind, kind) {
		return fmt.Errorf("%w: %s cannot contain %s", ErrMalformed, parentKind, kind)
	}
	n := Node{Kind: kind}
	switch kind {
	case KindListItem:
		if w.Depth < 0 {
			return fmt.Errorf("%w: negative depth %d", ErrMalformed, w.Depth)
		}
		n.Depth = w.Depth
		if w.Todo != nil {
			n.Todo = &Todo{Status: w.Todo.Status, Done: w.Todo.Done}
		}
	case KindText, KindWikilink:
		n.Text = w.Text
		n.DoneStyle = w.Done
	}
	k := t.Append(parent, n)
	for _, c := range w.Children {
		if err := t.unwire(k, kind, c); err != nil {
			return err
		}
	}
	return nil
}

func allowedChild(parent, child Kind) bool {
	switch parent {
	case KindRoot:
		return child.IsBlock()
	case KindList:
		return child == KindListItem
	case KindParagraph, KindListItem:
		return child.IsInline()
	default:
		return false
	}
}
