package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tableflip.dev/outliner/pkg/command"
	"tableflip.dev/outliner/pkg/document"
	"tableflip.dev/outliner/pkg/page"
	"tableflip.dev/outliner/pkg/store"
	"tableflip.dev/outliner/pkg/todo"
)

type dirConfig string

func (d dirConfig) Driver() string   { return store.DriverDiskv }
func (d dirConfig) BasePath() string { return string(d) }
func (d dirConfig) DSN() string      { return "" }

func newStore(t *testing.T) *store.Persistence {
	t.Helper()
	s, err := store.Load(dirConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	return s
}

func seed(t *testing.T, s page.Store, value string) page.Page {
	t.Helper()
	p, err := s.InsertPage(context.Background(), page.New("me", "Tasks", value))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return p
}

// gatedStore holds the first UpdateContents until release is closed.
type gatedStore struct {
	page.Store
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) UpdateContents(ctx context.Context, id, value string, expectedRevision int) (page.Page, error) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.Store.UpdateContents(ctx, id, value, expectedRevision)
}

func firstItem(t *testing.T, sess *Session) document.Key {
	t.Helper()
	items := sess.Tree().ListItems()
	if len(items) == 0 {
		t.Fatal("no list items")
	}
	return items[0]
}

func TestDispatchSavesMarkdownPage(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p := seed(t, s, "- buy milk\n- call [[Mom]]")

	sess, err := Open(ctx, s, p.ID, Options{Delay: time.Hour})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	item := firstItem(t, sess)
	if !sess.Dispatch(command.Caret(item, 0), command.InsertTodo{Status: todo.Now}) {
		t.Fatal("dispatch not handled")
	}
	if err := sess.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	stored, err := s.GetPage(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.RevisionNumber != 2 {
		t.Fatalf("expected revision 2, got %d", stored.RevisionNumber)
	}
	if want := "- NOW buy milk\n- call [[Mom]]"; stored.Value != want {
		t.Fatalf("stored %q, want %q", stored.Value, want)
	}
	if sess.Page().RevisionNumber != 2 {
		t.Fatalf("session did not track revision: %d", sess.Page().RevisionNumber)
	}
}

func TestNoopIntentSchedulesNothing(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p := seed(t, s, "- only")

	sess, err := Open(ctx, s, p.ID, Options{Delay: time.Hour})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if sess.Dispatch(command.Caret(firstItem(t, sess), 0), command.Outdent{}) {
		t.Fatal("outdent at depth 0 reported handled")
	}
	if err := sess.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	stored, _ := s.GetPage(ctx, p.ID)
	if stored.RevisionNumber != 1 {
		t.Fatalf("no-op wrote revision %d", stored.RevisionNumber)
	}
}

func TestJSONPageStaysJSON(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	tree := document.New()
	l := tree.AddList()
	tree.AddItem(l, 0, "a")
	tree.AddItem(l, 0, "b")
	value, err := document.Encode(tree)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	p := seed(t, s, value)

	sess, err := Open(ctx, s, p.ID, Options{Delay: time.Hour})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	second := sess.Tree().ListItems()[1]
	sess.Dispatch(command.Caret(second, 0), command.Indent{})
	if err := sess.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	stored, _ := s.GetPage(ctx, p.ID)
	if !document.IsJSON(stored.Value) {
		t.Fatalf("expected JSON value, got %q", stored.Value)
	}
	decoded, err := Decode(stored.Value)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := document.ToMarkdown(decoded); got != "- a\n  - b" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestConflictReloadsStoredPage(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p := seed(t, s, "- mine")

	var conflicted page.Page
	sess, err := Open(ctx, s, p.ID, Options{
		Delay: time.Hour,
		OnConflict: func(current page.Page, err error) {
			conflicted = current
		},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, err := s.UpdateContents(ctx, p.ID, "- theirs", p.RevisionNumber); err != nil {
		t.Fatalf("concurrent update: %v", err)
	}

	sess.Dispatch(command.Caret(firstItem(t, sess), 0), command.InsertTodo{Status: todo.Todo})
	err = sess.Flush(ctx)
	if !page.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if conflicted.RevisionNumber != 2 {
		t.Fatalf("OnConflict got revision %d", conflicted.RevisionNumber)
	}
	if got := document.ToMarkdown(sess.Tree()); got != "- theirs" {
		t.Fatalf("session kept local tree: %q", got)
	}
	stored, _ := s.GetPage(ctx, p.ID)
	if stored.Value != "- theirs" {
		t.Fatalf("conflicting write landed: %q", stored.Value)
	}

	// After reloading the session saves against the new revision.
	sess.Dispatch(command.Caret(firstItem(t, sess), 0), command.InsertTodo{Status: todo.Todo})
	if err := sess.Flush(ctx); err != nil {
		t.Fatalf("flush after reload: %v", err)
	}
	stored, _ = s.GetPage(ctx, p.ID)
	if stored.RevisionNumber != 3 || stored.Value != "- TODO theirs" {
		t.Fatalf("unexpected stored page %+v", stored)
	}
}

func TestMalformedPageFailsToLoad(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	bad := `{"version":1,"root":{"type":"root","children":[{"type":"listitem"}]}}`
	p := seed(t, s, bad)
	good := seed(t, s, "- fine")

	_, err := Open(ctx, s, p.ID, Options{})
	var loadErr *LoadError
	if !errors.As(err, &loadErr) || !errors.Is(err, document.ErrMalformed) {
		t.Fatalf("expected malformed load error, got %v", err)
	}
	stored, _ := s.GetPage(ctx, p.ID)
	if stored.Value != bad || stored.RevisionNumber != 1 {
		t.Fatal("stored bytes were touched")
	}
	if _, err := Open(ctx, s, good.ID, Options{}); err != nil {
		t.Fatalf("other pages must still open: %v", err)
	}
}

func TestDebouncedBurstWritesOnce(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p := seed(t, s, "- a\n- b\n- c")

	sess, err := Open(ctx, s, p.ID, Options{Delay: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, item := range sess.Tree().ListItems() {
		sess.Dispatch(command.Caret(item, 0), command.InsertTodo{Status: todo.Later})
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sess.Page().RevisionNumber == 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	history, err := s.History(ctx, p.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one coalesced write, got %d", len(history))
	}
	if err := sess.Err(); err != nil {
		t.Fatalf("background error: %v", err)
	}
}

func TestConflictDropsEditsMadeDuringLosingSave(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p := seed(t, s, "- mine")
	gate := &gatedStore{Store: s, entered: make(chan struct{}), release: make(chan struct{})}

	sess, err := Open(ctx, gate, p.ID, Options{Delay: time.Hour})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sess.Dispatch(command.Caret(firstItem(t, sess), 0), command.InsertTodo{Status: todo.Todo})

	flushed := make(chan error, 1)
	go func() { flushed <- sess.Flush(ctx) }()
	<-gate.entered

	// Another client wins revision 2 while our write is held.
	if _, err := s.UpdateContents(ctx, p.ID, "- from B", p.RevisionNumber); err != nil {
		t.Fatalf("concurrent update: %v", err)
	}
	// This edit is encoded from the tree that is about to lose.
	if !sess.Dispatch(command.Caret(firstItem(t, sess), 0), command.InsertText{Text: "A2 "}) {
		t.Fatal("insert text not handled")
	}
	close(gate.release)

	if err := <-flushed; !page.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := sess.Flush(ctx); err != nil {
		t.Fatalf("flush after reload: %v", err)
	}

	stored, err := s.GetPage(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Value != "- from B" || stored.RevisionNumber != 2 {
		t.Fatalf("winning write was overwritten: %+v", stored)
	}
	if got := document.ToMarkdown(sess.Tree()); got != "- from B" {
		t.Fatalf("session tree %q", got)
	}
}
