package app

import (
	"context"
	"sort"
	"time"

	"tableflip.dev/outliner/pkg/page"
	"tableflip.dev/outliner/pkg/todo"
)

// AgendaItem is one todo item found on a page.
type AgendaItem struct {
	Line   int
	Text   string
	Status todo.Status
	Done   bool
}

// AgendaSection groups the todo items of one page.
type AgendaSection struct {
	Page  page.Page
	Items []AgendaItem
}

// Agenda is the result of a todo sweep over the user's pages.
type Agenda struct {
	Since    time.Time
	Sections []AgendaSection
	Open     int
	Done     int
}

// Agenda collects todo items from pages modified since the given time. A
// zero since means every page. Done items are included only when
// includeDone is set.
func (s *Service) Agenda(ctx context.Context, since time.Time, includeDone bool) (Agenda, error) {
	out := Agenda{Since: since}
	pages, err := s.Pages(ctx, false)
	if err != nil {
		return out, err
	}
	for _, p := range pages {
		if !since.IsZero() && p.LastModified.Before(since) {
			continue
		}
		tree, err := s.Tree(p)
		if err != nil {
			s.log().WithError(err).WithField("page", p.ID).Warn("skipping page that failed to load")
			continue
		}
		section := AgendaSection{Page: p}
		for i, item := range tree.ListItems() {
			m, ok := todo.Marker(tree, item)
			if !ok {
				continue
			}
			if m.Done {
				out.Done++
				if !includeDone {
					continue
				}
			} else {
				out.Open++
			}
			section.Items = append(section.Items, AgendaItem{
				Line:   i + 1,
				Text:   tree.PlainText(item),
				Status: todo.Status(m.Status),
				Done:   m.Done,
			})
		}
		if len(section.Items) > 0 {
			out.Sections = append(out.Sections, section)
		}
	}
	sort.SliceStable(out.Sections, func(i, j int) bool {
		return out.Sections[i].Page.LastModified.After(out.Sections[j].Page.LastModified)
	})
	return out, nil
}
