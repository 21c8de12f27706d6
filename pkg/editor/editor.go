// Package editor ties one open page to its document tree, the command
// dispatcher and a debounced saver.
//
// A Session applies intents to its tree synchronously. Every change schedules
// a save of the encoded tree; saves go through UpdateContents with the
// revision the session last saw. When the store reports a conflict the
// session reloads the stored page, drops its local tree and reports the
// conflict to OnConflict.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"tableflip.dev/outliner/pkg/autosave"
	"tableflip.dev/outliner/pkg/command"
	"tableflip.dev/outliner/pkg/document"
	"tableflip.dev/outliner/pkg/logger"
	"tableflip.dev/outliner/pkg/page"
	"tableflip.dev/outliner/pkg/todo"
	"tableflip.dev/outliner/pkg/wikilink"
)

// Format selects how a session encodes the tree it saves.
type Format int

const (
	// FormatAuto keeps the format the page was stored in.
	FormatAuto Format = iota
	FormatJSON
	FormatMarkdown
)

// LoadError reports a page whose stored value could not be decoded. The
// stored bytes are left as they are.
type LoadError struct {
	PageID string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("page %s failed to load: %v", e.PageID, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Decode parses a stored value into canonical form: references lifted into
// wikilink nodes and todo keywords into markers.
func Decode(value string) (*document.Tree, error) {
	tree, err := document.Decode(value)
	if err != nil {
		return nil, err
	}
	wikilink.Lift(tree)
	todo.NormalizeAll(tree)
	return tree, nil
}

// Encode renders tree in format. FormatAuto means JSON.
func Encode(tree *document.Tree, format Format) (string, error) {
	if format == FormatMarkdown {
		return document.ToMarkdown(tree), nil
	}
	return document.Encode(tree)
}

// Options configure a Session.
type Options struct {
	Format     Format
	Delay      time.Duration
	Dispatcher *command.Dispatcher
	// OnConflict is called after a conflicting save has been replaced by
	// the stored page.
	OnConflict func(current page.Page, err error)
	Log        logrus.FieldLogger
}

// Session is an open page.
type Session struct {
	store      page.Store
	dispatcher *command.Dispatcher
	saver      *autosave.Saver
	format     Format
	onConflict func(page.Page, error)
	log        logrus.FieldLogger

	mu   sync.Mutex
	page page.Page
	tree *document.Tree
	err  error
}

// Open loads a page and starts a session on it.
func Open(ctx context.Context, store page.Store, id string, opts Options) (*Session, error) {
	p, err := store.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}
	tree, err := Decode(p.Value)
	if err != nil {
		return nil, &LoadError{PageID: id, Err: err}
	}
	s := &Session{
		store:      store,
		dispatcher: opts.Dispatcher,
		format:     opts.Format,
		onConflict: opts.OnConflict,
		log:        logger.Or(opts.Log).WithField("page", id),
		page:       p,
		tree:       tree,
	}
	if s.dispatcher == nil {
		s.dispatcher = command.NewDefault()
	}
	if s.format == FormatAuto {
		s.format = FormatJSON
		if !document.IsJSON(p.Value) {
			s.format = FormatMarkdown
		}
	}
	s.saver = autosave.New(s.save, autosave.Options{
		Delay: opts.Delay,
		Log:   s.log,
		OnError: func(err error) {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
		},
	})
	return s, nil
}

// Page returns the last page the store accepted or returned.
func (s *Session) Page() page.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Tree returns a copy of the current tree.
func (s *Session) Tree() *document.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Clone()
}

// Err returns and clears the last background save failure.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.err
	s.err = nil
	return err
}

// Dispatch applies in at sel and schedules a save when the tree changed.
func (s *Session) Dispatch(sel command.Selection, in command.Intent) bool {
	return s.Edit(func(tree *document.Tree) bool {
		return s.dispatcher.Dispatch(tree, sel, in)
	})
}

// Edit runs fn against the tree and schedules a save when it reports a
// change.
func (s *Session) Edit(fn func(*document.Tree) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !fn(s.tree) {
		return false
	}
	value, err := Encode(s.tree, s.format)
	if err != nil {
		s.log.WithError(err).Error("encode failed")
		s.err = err
		return true
	}
	s.saver.Schedule(value)
	return true
}

// Flush writes any pending change now.
func (s *Session) Flush(ctx context.Context) error {
	return s.saver.Flush(ctx)
}

// Close flushes and ends the session.
func (s *Session) Close(ctx context.Context) error {
	return s.saver.Close(ctx)
}

func (s *Session) save(ctx context.Context, value string) error {
	s.mu.Lock()
	id, rev := s.page.ID, s.page.RevisionNumber
	s.mu.Unlock()

	updated, err := s.store.UpdateContents(ctx, id, value, rev)
	if err == nil {
		s.mu.Lock()
		s.page = updated
		s.mu.Unlock()
		s.log.WithField("revision", updated.RevisionNumber).Debug("saved")
		return nil
	}
	if !errors.Is(err, page.ErrConflict) {
		return err
	}
	s.log.WithError(err).Warn("conflict, reloading")
	current, rerr := s.reload(ctx)
	if rerr != nil {
		return fmt.Errorf("%w (reload failed: %v)", err, rerr)
	}
	if s.onConflict != nil {
		s.onConflict(current, err)
	}
	return err
}

// reload replaces the session's page and tree with the stored ones. Values
// scheduled from the replaced tree are discarded in the same critical section,
// so they can never be written on top of the reloaded revision.
func (s *Session) reload(ctx context.Context) (page.Page, error) {
	current, err := s.store.GetPage(ctx, s.Page().ID)
	if err != nil {
		return page.Page{}, err
	}
	tree, err := Decode(current.Value)
	if err != nil {
		return page.Page{}, &LoadError{PageID: current.ID, Err: err}
	}
	s.mu.Lock()
	s.page = current
	s.tree = tree
	s.saver.Discard()
	s.mu.Unlock()
	return current, nil
}
