package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"tableflip.dev/outliner/pkg/command"
	"tableflip.dev/outliner/pkg/document"
	"tableflip.dev/outliner/pkg/editor"
	"tableflip.dev/outliner/pkg/journal"
	"tableflip.dev/outliner/pkg/logger"
	"tableflip.dev/outliner/pkg/page"
	"tableflip.dev/outliner/pkg/todo"
	"tableflip.dev/outliner/pkg/wikilink"
)

// Service provides high-level page operations for one user.
// It wraps the page store, the journal manager and editing sessions so the
// CLI and the MCP server share logic.
type Service struct {
	Store  page.Store
	UserID string
	// Now defaults to time.Now.
	Now func() time.Time
	Log logrus.FieldLogger
}

var (
	// ErrNoStore is returned when the service has no store configured.
	ErrNoStore = errors.New("app: no store configured")
	// ErrNoItem is returned when a line number does not name a list item.
	ErrNoItem = errors.New("app: no such list item")
)

func (s *Service) ready() error {
	if s.Store == nil {
		return ErrNoStore
	}
	return nil
}

func (s *Service) user() string {
	if s.UserID == "" {
		return "me"
	}
	return s.UserID
}

func (s *Service) log() logrus.FieldLogger {
	return logger.Or(s.Log)
}

// Journal returns a journal manager bound to the service's store and clock.
func (s *Service) Journal() *journal.Manager {
	return &journal.Manager{Store: s.Store, Now: s.Now, Log: s.Log}
}

// Pages lists the user's pages, newest first.
func (s *Service) Pages(ctx context.Context, includeDeleted bool) ([]page.Page, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Store.FetchPages(ctx, s.user(), includeDeleted)
}

// Page returns a page by id.
func (s *Service) Page(ctx context.Context, id string) (page.Page, error) {
	if err := s.ready(); err != nil {
		return page.Page{}, err
	}
	return s.Store.GetPage(ctx, id)
}

// Create makes a regular page. An empty value starts it with one empty item.
func (s *Service) Create(ctx context.Context, title, value string) (page.Page, error) {
	if err := s.ready(); err != nil {
		return page.Page{}, err
	}
	if strings.TrimSpace(title) == "" {
		return page.Page{}, errors.New("app: title required")
	}
	if value == "" {
		value = page.DefaultJournalValue
	}
	if _, err := editor.Decode(value); err != nil {
		return page.Page{}, err
	}
	return s.Store.InsertPage(ctx, page.New(s.user(), title, value))
}

// Rename changes a page title against its current revision.
func (s *Service) Rename(ctx context.Context, id, title string) (page.Page, error) {
	p, err := s.Page(ctx, id)
	if err != nil {
		return page.Page{}, err
	}
	return s.Store.UpdateTitle(ctx, id, title, p.RevisionNumber)
}

// SetDeleted soft-deletes or restores a page against its current revision.
func (s *Service) SetDeleted(ctx context.Context, id string, deleted bool) (page.Page, error) {
	p, err := s.Page(ctx, id)
	if err != nil {
		return page.Page{}, err
	}
	if p.Deleted == deleted {
		return p, nil
	}
	return s.Store.SetDeleted(ctx, id, deleted, p.RevisionNumber)
}

// History lists the archived revisions of a page.
func (s *Service) History(ctx context.Context, id string) ([]page.HistoryEntry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Store.History(ctx, id)
}

// Today returns today's journal page, creating it if needed.
func (s *Service) Today(ctx context.Context) (page.Page, bool, error) {
	if err := s.ready(); err != nil {
		return page.Page{}, false, err
	}
	return s.Journal().Today(ctx, s.user())
}

// PruneJournal deletes stale journal pages.
func (s *Service) PruneJournal(ctx context.Context) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Journal().PruneStale(ctx, s.user())
}

// RecentJournal lists journal pages within window, newest first.
func (s *Service) RecentJournal(ctx context.Context, window time.Duration) ([]page.Page, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Journal().Recent(ctx, s.user(), window)
}

// Tree decodes a page value.
func (s *Service) Tree(p page.Page) (*document.Tree, error) {
	tree, err := editor.Decode(p.Value)
	if err != nil {
		return nil, &editor.LoadError{PageID: p.ID, Err: err}
	}
	return tree, nil
}

// Apply dispatches in against list item number line (1-based, in document
// order) of page id and saves the result. changed is false when the intent
// was a no-op.
func (s *Service) Apply(ctx context.Context, id string, line int, in command.Intent) (p page.Page, changed bool, err error) {
	if err := s.ready(); err != nil {
		return page.Page{}, false, err
	}
	sess, err := editor.Open(ctx, s.Store, id, editor.Options{Delay: time.Hour, Log: s.Log})
	if err != nil {
		return page.Page{}, false, err
	}
	items := sess.Tree().ListItems()
	if line < 1 || line > len(items) {
		return sess.Page(), false, fmt.Errorf("%w: line %d of %d", ErrNoItem, line, len(items))
	}
	changed = sess.Dispatch(command.Caret(items[line-1], 0), in)
	if err := sess.Close(ctx); err != nil {
		return sess.Page(), changed, err
	}
	s.log().WithFields(logrus.Fields{"page": id, "intent": in.Name(), "changed": changed}).Debug("applied intent")
	return sess.Page(), changed, nil
}

// AppendItem adds a top-level list item holding text to the end of a page.
// A leading status keyword becomes a todo marker.
func (s *Service) AppendItem(ctx context.Context, id, text string) (page.Page, error) {
	if err := s.ready(); err != nil {
		return page.Page{}, err
	}
	sess, err := editor.Open(ctx, s.Store, id, editor.Options{Delay: time.Hour, Log: s.Log})
	if err != nil {
		return page.Page{}, err
	}
	sess.Edit(func(tree *document.Tree) bool {
		list := tree.LastList()
		item := tree.AddItem(list, 0, "")
		// Reuse an empty placeholder item, as in a fresh journal page.
		if items := tree.Children(list); len(items) > 1 {
			prev, _ := tree.Get(items[len(items)-2])
			if prev.Depth == 0 && prev.Todo == nil && len(prev.Children) == 0 {
				tree.Remove(item)
				item = items[len(items)-2]
			}
		}
		wikilink.SetText(tree, item, text)
		todo.Normalize(tree, item)
		return true
	})
	if err := sess.Close(ctx); err != nil {
		return sess.Page(), err
	}
	return sess.Page(), nil
}

// Links resolves the wikilinks of a page against the user's pages.
func (s *Service) Links(ctx context.Context, id string) ([]wikilink.Link, error) {
	p, err := s.Page(ctx, id)
	if err != nil {
		return nil, err
	}
	tree, err := s.Tree(p)
	if err != nil {
		return nil, err
	}
	return wikilink.Resolve(ctx, &wikilink.StoreResolver{Store: s.Store}, s.user(), tree)
}
