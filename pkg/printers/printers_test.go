package printers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/outliner/pkg/app"
	"tableflip.dev/outliner/pkg/document"
	"tableflip.dev/outliner/pkg/page"
	"tableflip.dev/outliner/pkg/todo"
	"tableflip.dev/outliner/pkg/wikilink"
)

func init() {
	color.NoColor = true
}

func TestOutline(t *testing.T) {
	tree, err := document.Decode("- TODO write\n  - DONE draft [[Plan]]\n- LATER rest")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	wikilink.Lift(tree)
	todo.NormalizeAll(tree)

	var buf bytes.Buffer
	pp := &PrettyPrint{ShowID: true, Out: &buf}
	pp.Outline(tree)

	want := "  1 - TODO write\n  2   - DONE draft [[Plan]]\n  3 - LATER rest\n\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected outline:\n%q\nwant\n%q", got, want)
	}
}

func TestPagesAndLinks(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.Pages()
	if !strings.Contains(buf.String(), "none") {
		t.Fatalf("expected none marker, got %q", buf.String())
	}

	buf.Reset()
	pp.Pages(page.Page{ID: "p1", Title: "Home", RevisionNumber: 3, LastModified: time.Now()})
	if out := buf.String(); !strings.Contains(out, "Home") || !strings.Contains(out, "r3") || strings.Contains(out, "p1") {
		t.Fatalf("unexpected page row %q", out)
	}

	buf.Reset()
	pp.Links(wikilink.Link{Title: "Home", PageID: "p1"}, wikilink.Link{Title: "Gone"})
	out := buf.String()
	if !strings.Contains(out, "[[Home]]") || !strings.Contains(out, "missing") {
		t.Fatalf("unexpected links %q", out)
	}
}

func TestAgenda(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.Agenda(app.Agenda{
		Open: 1,
		Done: 1,
		Sections: []app.AgendaSection{{
			Page: page.Page{Title: "Work"},
			Items: []app.AgendaItem{
				{Line: 2, Text: "ship", Status: todo.Now},
				{Line: 4, Text: "plan", Status: todo.Todo, Done: true},
			},
		}},
	})
	out := buf.String()
	for _, want := range []string{"Work - 2 items", "  2 NOW ship", "  4 DONE plan", "1 open, 1 done"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestJournalMonth(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	// February 2024 starts on a Thursday and has 29 days.
	feb := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	pp.JournalMonth(feb, time.Time{}, map[int]bool{3: true})

	lines := strings.Split(buf.String(), "\n")
	if !strings.Contains(lines[0], "February 2024") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != strings.Repeat("   ", 4)+" 1  2  3 " {
		t.Fatalf("unexpected first week %q", lines[1])
	}
	if DaysIn(feb) != 29 || StartDay(feb) != time.Thursday {
		t.Fatal("calendar helpers disagree with February 2024")
	}
}
