package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/outliner/pkg/editor"
	"tableflip.dev/outliner/pkg/page"
	"tableflip.dev/outliner/pkg/store"
)

type dirConfig string

func (d dirConfig) Driver() string   { return store.DriverDiskv }
func (d dirConfig) BasePath() string { return string(d) }
func (d dirConfig) DSN() string      { return "" }

func TestNewRegistersCommands(t *testing.T) {
	root := New()
	for _, name := range []string{"pages", "show", "journal", "todo", "indent", "rm", "append", "edit", "agenda", "export", "migrate-markdown", "watch", "mcp", "version"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
	if c, _, err := root.Find([]string{"journal", "prune"}); err != nil || c.Name() != "prune" {
		t.Error("journal prune not registered")
	}
}

func TestEditLoop(t *testing.T) {
	ctx := context.Background()
	s, err := store.Load(dirConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p, err := s.InsertPage(ctx, page.New("me", "Groceries", "- eggs\n- milk"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	sess, err := editor.Open(ctx, s, p.ID, editor.Options{Delay: time.Hour})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	in := strings.NewReader("2 add now\n1 indent\n2 insert-text  today\nshow\nquit\n1 rm\n")
	if err := editLoop(cmd, sess, in, false); err != nil {
		t.Fatalf("edit loop: %v", err)
	}
	if err := sess.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	if !strings.Contains(errOut.String(), "indent: nothing to do") {
		t.Fatalf("expected refused indent, got %q", errOut.String())
	}
	if !strings.Contains(out.String(), "NOW milk today") {
		t.Fatalf("show did not print the edited item: %q", out.String())
	}
	stored, _ := s.GetPage(ctx, p.ID)
	if stored.Value != "- eggs\n- NOW milk today" {
		t.Fatalf("unexpected stored value %q", stored.Value)
	}
	if stored.RevisionNumber != 2 {
		t.Fatalf("edits should coalesce into one save, got revision %d", stored.RevisionNumber)
	}
}

func TestWrittenDays(t *testing.T) {
	feb := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	pages := []page.Page{
		{Title: "Feb 3rd, 2024", IsJournal: true, Value: "- went skiing"},
		{Title: "Feb 4th, 2024", IsJournal: true, Value: page.DefaultJournalValue},
		{Title: "Mar 1st, 2024", IsJournal: true, Value: "- spring"},
		{Title: "Feb 5th, 2024", Value: "- not a journal"},
	}
	got := writtenDays(pages, feb)
	if len(got) != 1 || !got[3] {
		t.Fatalf("unexpected written days %v", got)
	}
}
