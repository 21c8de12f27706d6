// Package mcp exposes pages, journal and todo editing over the Model Context
// Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/outliner/pkg/app"
	"tableflip.dev/outliner/pkg/command"
	"tableflip.dev/outliner/pkg/page"
	"tableflip.dev/outliner/pkg/timeutil"
	"tableflip.dev/outliner/pkg/todo"
)

// Service adapts app.Service results into transport-friendly shapes.
type Service struct {
	App *app.Service
}

// PageSummary describes a page without its body.
type PageSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Revision     int    `json:"revision"`
	LastModified string `json:"lastModified"`
	IsJournal    bool   `json:"isJournal"`
	Deleted      bool   `json:"deleted,omitempty"`
}

// ItemDTO is one list item of a page, numbered the way set_todo expects.
type ItemDTO struct {
	Line   int    `json:"line"`
	Depth  int    `json:"depth"`
	Text   string `json:"text"`
	Status string `json:"status,omitempty"`
	Done   bool   `json:"done,omitempty"`
}

// PageDTO is a page rendered as markdown plus its list items.
type PageDTO struct {
	PageSummary
	Markdown string    `json:"markdown"`
	Items    []ItemDTO `json:"items"`
}

// NewService builds a service over the given application service.
func NewService(a *app.Service) *Service {
	return &Service{App: a}
}

func (s *Service) ready() error {
	if s.App == nil || s.App.Store == nil {
		return errors.New("store is not configured")
	}
	return nil
}

// ListPages returns summaries for the user's pages, newest first.
func (s *Service) ListPages(ctx context.Context, includeDeleted bool) ([]PageSummary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	pages, err := s.App.Pages(ctx, includeDeleted)
	if err != nil {
		return nil, err
	}
	out := make([]PageSummary, 0, len(pages))
	for _, p := range pages {
		out = append(out, summarize(p))
	}
	return out, nil
}

// GetPage renders one page.
func (s *Service) GetPage(ctx context.Context, id string) (*PageDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("id is required")
	}
	p, err := s.App.Page(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.render(p)
}

// TodayJournal returns today's journal page, creating it when missing.
func (s *Service) TodayJournal(ctx context.Context) (*PageDTO, bool, error) {
	if err := s.ready(); err != nil {
		return nil, false, err
	}
	p, created, err := s.App.Today(ctx)
	if err != nil {
		return nil, false, err
	}
	dto, err := s.render(p)
	return dto, created, err
}

// PruneJournal removes stale journal pages and returns their ids.
func (s *Service) PruneJournal(ctx context.Context) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.App.PruneJournal(ctx)
}

// RecentJournal lists journal pages within a window such as "2w".
func (s *Service) RecentJournal(ctx context.Context, window string) ([]PageSummary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if window == "" {
		window = timeutil.DefaultWindow
	}
	d, _, err := timeutil.ParseWindow(window)
	if err != nil {
		return nil, err
	}
	pages, err := s.App.RecentJournal(ctx, d)
	if err != nil {
		return nil, err
	}
	out := make([]PageSummary, 0, len(pages))
	for _, p := range pages {
		out = append(out, summarize(p))
	}
	return out, nil
}

// SetTodo applies a todo or list action, as named by command.Parse, to list
// item line of page id. The bool reports whether anything changed.
func (s *Service) SetTodo(ctx context.Context, id string, line int, action, arg string) (*PageDTO, bool, error) {
	if err := s.ready(); err != nil {
		return nil, false, err
	}
	in, err := command.Parse(action, arg)
	if err != nil {
		return nil, false, err
	}
	p, changed, err := s.App.Apply(ctx, id, line, in)
	if err != nil {
		return nil, false, err
	}
	dto, err := s.render(p)
	return dto, changed, err
}

// AppendItem adds a top-level item to a page. An empty id targets today's
// journal page.
func (s *Service) AppendItem(ctx context.Context, id, text string) (*PageDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text is required")
	}
	if id == "" {
		today, _, err := s.App.Today(ctx)
		if err != nil {
			return nil, err
		}
		id = today.ID
	}
	p, err := s.App.AppendItem(ctx, id, text)
	if err != nil {
		return nil, err
	}
	return s.render(p)
}

// CreatePage makes a new page from markdown.
func (s *Service) CreatePage(ctx context.Context, title, markdown string) (*PageDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	p, err := s.App.Create(ctx, title, markdown)
	if err != nil {
		return nil, err
	}
	return s.render(p)
}

// Agenda collects open todo items from pages modified within window. An
// empty window covers every page.
func (s *Service) Agenda(ctx context.Context, window string, includeDone bool) (app.Agenda, error) {
	if err := s.ready(); err != nil {
		return app.Agenda{}, err
	}
	var since time.Time
	if window != "" {
		d, _, err := timeutil.ParseWindow(window)
		if err != nil {
			return app.Agenda{}, err
		}
		now := time.Now
		if s.App.Now != nil {
			now = s.App.Now
		}
		since = timeutil.StartOfDay(now()).Add(-d)
	}
	return s.App.Agenda(ctx, since, includeDone)
}

func (s *Service) render(p page.Page) (*PageDTO, error) {
	tree, err := s.App.Tree(p)
	if err != nil {
		return nil, err
	}
	md, err := app.PageMarkdown(p)
	if err != nil {
		return nil, err
	}
	dto := &PageDTO{PageSummary: summarize(p), Markdown: md, Items: []ItemDTO{}}
	for i, item := range tree.ListItems() {
		n, _ := tree.Get(item)
		it := ItemDTO{Line: i + 1, Depth: n.Depth, Text: tree.PlainText(item)}
		if m, ok := todo.Marker(tree, item); ok {
			it.Status, it.Done = m.Status, m.Done
		}
		dto.Items = append(dto.Items, it)
	}
	return dto, nil
}

func summarize(p page.Page) PageSummary {
	return PageSummary{
		ID:           p.ID,
		Title:        p.Title,
		Revision:     p.RevisionNumber,
		LastModified: p.LastModified.Format(time.RFC3339),
		IsJournal:    p.IsJournal,
		Deleted:      p.Deleted,
	}
}

// ActionNames lists the actions SetTodo accepts.
func ActionNames() []string {
	return []string{"add", "status", "done", "undone", "cycle", "remove", "indent", "outdent", "up", "down", "delete"}
}

func describeAction(action, arg string) string {
	if arg == "" {
		return action
	}
	return fmt.Sprintf("%s %s", action, arg)
}
