// Package printers renders pages, history and agendas for the terminal.
package printers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/outliner/pkg/app"
	"tableflip.dev/outliner/pkg/document"
	"tableflip.dev/outliner/pkg/page"
	"tableflip.dev/outliner/pkg/todo"
	"tableflip.dev/outliner/pkg/wikilink"
)

const timeLayout = "2006-01-02 15:04"

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d %s", count, noun)
	if count != 1 {
		_, _ = c.Fprint(pp.out(), "s")
	}
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.out(), " none\n\n")
}

// Pages prints one row per page.
func (pp *PrettyPrint) Pages(pages ...page.Page) {
	if len(pages) == 0 {
		pp.none()
		return
	}
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	f := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, p := range pages {
		title := p.Title
		if p.IsJournal {
			title = color.New(color.FgCyan).Sprint(title)
		}
		if p.Deleted {
			title = color.New(color.CrossedOut, color.Faint).Sprint(p.Title)
		}
		row := []any{title, f.Sprintf("r%d", p.RevisionNumber), f.Sprint(p.LastModified.Local().Format(timeLayout))}
		if pp.ShowID {
			row = append([]any{y.Sprint(p.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Outline prints a page tree as an indented outline. Done items are struck
// through and references are underlined.
func (pp *PrettyPrint) Outline(t *document.Tree) {
	plain := color.New()
	done := color.New(color.CrossedOut, color.Faint)
	ref := color.New(color.Underline, color.FgBlue)
	num := color.New(color.Faint)

	line := 0
	for _, block := range t.Children(t.Root()) {
		switch t.Kind(block) {
		case document.KindParagraph:
			_, _ = plain.Fprintln(pp.out(), t.PlainText(block))
		case document.KindList:
			for _, item := range t.Children(block) {
				line++
				n, _ := t.Get(item)
				if pp.ShowID {
					_, _ = num.Fprintf(pp.out(), "%3d ", line)
				}
				_, _ = fmt.Fprint(pp.out(), strings.Repeat("  ", n.Depth), "- ")
				m, marked := todo.Marker(t, item)
				if marked {
					_, _ = statusColor(todo.Status(m.Status), m.Done).Fprint(pp.out(), markerLabel(m), " ")
				}
				for _, child := range n.Children {
					c, _ := t.Get(child)
					printer := plain
					text := c.Text
					if c.Kind == document.KindWikilink {
						printer = ref
						text = wikilink.Open + c.Text + wikilink.Close
					}
					if c.DoneStyle {
						printer = done
					}
					_, _ = printer.Fprint(pp.out(), text)
				}
				_, _ = fmt.Fprintln(pp.out())
			}
		}
	}
	_, _ = fmt.Fprintln(pp.out())
}

func markerLabel(m document.Todo) string {
	if m.Done {
		return document.DoneKeyword
	}
	return m.Status
}

func statusColor(s todo.Status, done bool) *color.Color {
	if done {
		return color.New(color.FgGreen, color.Faint)
	}
	switch s {
	case todo.Doing, todo.Now:
		return color.New(color.FgYellow, color.Bold)
	case todo.Later:
		return color.New(color.FgMagenta)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// History prints archived revisions oldest first.
func (pp *PrettyPrint) History(entries ...page.HistoryEntry) {
	if len(entries) == 0 {
		pp.none()
		return
	}
	f := color.New(color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(color.New(color.Bold).Sprint("Rev"), color.New(color.Bold).Sprint("Archived"), color.New(color.Bold).Sprint("Title"), color.New(color.Bold).Sprint("Value"))
	for _, h := range entries {
		value := strings.ReplaceAll(h.Value, "\n", " ⏎ ")
		tbl.AddRow(fmt.Sprintf("r%d", h.RevisionNumber), f.Sprint(h.HistoryCreatedAt.Local().Format(timeLayout)), h.Title, value)
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Agenda prints todo items grouped by page.
func (pp *PrettyPrint) Agenda(a app.Agenda) {
	if len(a.Sections) == 0 {
		pp.none()
		return
	}
	num := color.New(color.Faint)
	for _, section := range a.Sections {
		pp.TitleWithCount(section.Page.Title, len(section.Items), "item")
		for _, item := range section.Items {
			m := document.Todo{Status: string(item.Status), Done: item.Done}
			_, _ = num.Fprintf(pp.out(), "%3d ", item.Line)
			_, _ = statusColor(item.Status, item.Done).Fprint(pp.out(), markerLabel(m))
			_, _ = fmt.Fprintln(pp.out(), " "+item.Text)
		}
		pp.NewLine()
	}
	_, _ = num.Fprintf(pp.out(), "%d open, %d done\n", a.Open, a.Done)
}

// Links prints references and where they resolve.
func (pp *PrettyPrint) Links(links ...wikilink.Link) {
	if len(links) == 0 {
		pp.none()
		return
	}
	missing := color.New(color.FgRed, color.Italic)
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, l := range links {
		target := missing.Sprint("missing")
		if l.Resolved() {
			target = l.PageID
		}
		tbl.AddRow(wikilink.Open+l.Title+wikilink.Close, target)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Key prints the todo status legend: two independent cycles plus done.
func (pp *PrettyPrint) Key() {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Status"), bold.Sprint("Cycles to"))
	for _, s := range todo.Statuses {
		if s == todo.Done {
			continue
		}
		tbl.AddRow(statusColor(s, false).Sprint(string(s)), string(todo.Next(s)))
	}
	tbl.AddRow(statusColor(todo.Todo, true).Sprint(document.DoneKeyword), "sets done, keeps status")
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Since formats a relative window header.
func Since(label string, since, until time.Time) string {
	return fmt.Sprintf("last %s (%s → %s)", label, since.Local().Format(timeLayout), until.Local().Format(timeLayout))
}
