// Package journal manages the daily journal pages: one per calendar day,
// created the first time the day is opened and pruned once a past day's page
// is still at its default value.
package journal

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"tableflip.dev/outliner/pkg/logger"
	"tableflip.dev/outliner/pkg/page"
	"tableflip.dev/outliner/pkg/timeutil"
)

// Manager creates and prunes journal pages in a store.
type Manager struct {
	Store page.Store
	// Now defaults to time.Now. Its location decides where days begin.
	Now func() time.Time
	// DefaultValue defaults to page.DefaultJournalValue.
	DefaultValue string
	Log          logrus.FieldLogger
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Manager) defaultValue() string {
	if m.DefaultValue != "" {
		return m.DefaultValue
	}
	return page.DefaultJournalValue
}

func (m *Manager) log() logrus.FieldLogger {
	return logger.Or(m.Log)
}

// Today returns today's journal page, creating it when missing. created
// reports whether this call inserted it.
func (m *Manager) Today(ctx context.Context, userID string) (page.Page, bool, error) {
	return m.Day(ctx, userID, m.now())
}

// Day returns the journal page for the calendar day of date, creating it
// when missing.
func (m *Manager) Day(ctx context.Context, userID string, date time.Time) (page.Page, bool, error) {
	title := Title(date)
	if p, ok, err := m.find(ctx, userID, title); err != nil || ok {
		return p, false, err
	}

	p, err := m.Store.InsertJournalPage(ctx, title, m.defaultValue(), userID, timeutil.StartOfDay(date))
	if err == nil {
		m.log().WithField("title", title).Info("created journal page")
		return p, true, nil
	}

	var dup *page.DuplicateJournalError
	if !errors.As(err, &dup) {
		return page.Page{}, false, err
	}
	// Someone else created it between our fetch and insert; reuse theirs.
	if dup.ExistingID != "" {
		existing, gerr := m.Store.GetPage(ctx, dup.ExistingID)
		if gerr == nil {
			return existing, false, nil
		}
	}
	p, ok, ferr := m.find(ctx, userID, title)
	if ferr != nil {
		return page.Page{}, false, ferr
	}
	if !ok {
		return page.Page{}, false, err
	}
	return p, false, nil
}

func (m *Manager) find(ctx context.Context, userID, title string) (page.Page, bool, error) {
	pages, err := m.Store.FetchPages(ctx, userID, false)
	if err != nil {
		return page.Page{}, false, err
	}
	for _, p := range pages {
		if p.IsJournal && p.Title == title {
			return p, true, nil
		}
	}
	return page.Page{}, false, nil
}

// StaleCandidates lists journal pages dated before today whose value is
// still the default.
func (m *Manager) StaleCandidates(ctx context.Context, userID string) ([]page.Page, error) {
	pages, err := m.Store.FetchPages(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	now := m.now()
	today := timeutil.StartOfDay(now)
	var out []page.Page
	for _, p := range pages {
		if !p.IsStaleJournal(m.defaultValue()) {
			continue
		}
		date, err := ParseTitle(p.Title, now.Location())
		if err != nil {
			m.log().WithField("title", p.Title).Debug("skipping journal page with unparsable title")
			continue
		}
		if date.Before(today) {
			out = append(out, p)
		}
	}
	return out, nil
}

// PruneStale deletes stale journal pages and returns the ids the store
// actually removed. Pages edited since they were listed are skipped by the
// store's value check.
func (m *Manager) PruneStale(ctx context.Context, userID string) ([]string, error) {
	candidates, err := m.StaleCandidates(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []string{}, nil
	}
	ids := make([]string, 0, len(candidates))
	for _, p := range candidates {
		ids = append(ids, p.ID)
	}
	deleted, err := m.Store.DeleteStalePages(ctx, ids, m.defaultValue())
	if err != nil {
		return nil, err
	}
	if skipped := len(ids) - len(deleted); skipped > 0 {
		m.log().WithField("skipped", skipped).Info("journal pages edited before pruning")
	}
	m.log().WithField("deleted", len(deleted)).Debug("pruned stale journal pages")
	return deleted, nil
}

// Recent returns the existing journal pages for the days within window of
// today, newest first. Days without a page are left out.
func (m *Manager) Recent(ctx context.Context, userID string, window time.Duration) ([]page.Page, error) {
	pages, err := m.Store.FetchPages(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	byTitle := make(map[string]page.Page)
	for _, p := range pages {
		if p.IsJournal {
			byTitle[p.Title] = p
		}
	}
	var out []page.Page
	for _, day := range timeutil.DaysBack(m.now(), window) {
		if p, ok := byTitle[Title(day)]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// SortByDate orders journal pages newest first by their title date. Pages
// whose titles do not parse sort last, by title.
func SortByDate(pages []page.Page, loc *time.Location) {
	date := func(p page.Page) (time.Time, bool) {
		d, err := ParseTitle(p.Title, loc)
		return d, err == nil
	}
	sort.SliceStable(pages, func(i, j int) bool {
		di, oki := date(pages[i])
		dj, okj := date(pages[j])
		switch {
		case oki && okj:
			return di.After(dj)
		case oki != okj:
			return oki
		default:
			return pages[i].Title < pages[j].Title
		}
	})
}
