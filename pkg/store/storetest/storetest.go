// Package storetest holds the behaviour every page.Store backend must share.
// Backends call Run from their own tests with a factory that returns a fresh,
// empty store.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tableflip.dev/outliner/pkg/page"
)

// Store is a page.Store whose clock can be pinned.
type Store interface {
	page.Store
	SetClock(now func() time.Time)
}

// Factory builds an empty store. Cleanup is registered on t.
type Factory func(t *testing.T) Store

// Epoch is the fixed time the suite pins backend clocks to.
var Epoch = time.Date(2024, time.January, 5, 9, 30, 0, 0, time.UTC)

// Run executes the conformance suite.
func Run(t *testing.T, factory Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s Store)
	}{
		{"InsertAndGet", testInsertAndGet},
		{"FetchPagesOrderAndDeleted", testFetchPages},
		{"RevisionMonotonicity", testRevisionMonotonicity},
		{"HistoryCompleteness", testHistoryCompleteness},
		{"StoreAssignsLastModified", testStoreAssignsLastModified},
		{"ConcurrentEditConflict", testConcurrentEditConflict},
		{"ConcurrentWritersOneWinner", testConcurrentWriters},
		{"UpdateMissingPage", testUpdateMissing},
		{"TitleAndDeleteAreRevisioned", testTitleAndDelete},
		{"JournalDedup", testJournalDedup},
		{"JournalRestoreCollision", testJournalRestoreCollision},
		{"StaleJournalCleanup", testStaleJournalCleanup},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			s := factory(t)
			s.SetClock(func() time.Time { return Epoch })
			tt.fn(t, s)
		})
	}
}

func insert(t *testing.T, s Store, userID, title, value string) page.Page {
	t.Helper()
	p := page.New(userID, title, value)
	p.LastModified = Epoch.Add(-time.Hour)
	got, err := s.InsertPage(context.Background(), p)
	require.NoError(t, err)
	return got
}

func testInsertAndGet(t *testing.T, s Store) {
	ctx := context.Background()
	p := insert(t, s, "me", "  Inbox ", "- one")
	require.Equal(t, 1, p.RevisionNumber)

	got, err := s.GetPage(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Inbox", got.Title)
	require.Equal(t, "- one", got.Value)
	require.Equal(t, 1, got.RevisionNumber)

	_, err = s.GetPage(ctx, "missing")
	require.ErrorIs(t, err, page.ErrNotFound)
}

func testFetchPages(t *testing.T, s Store) {
	ctx := context.Background()
	old := page.New("me", "old", "a")
	old.LastModified = Epoch.Add(-48 * time.Hour)
	_, err := s.InsertPage(ctx, old)
	require.NoError(t, err)

	recent := page.New("me", "recent", "b")
	recent.LastModified = Epoch.Add(-time.Hour)
	recent, err = s.InsertPage(ctx, recent)
	require.NoError(t, err)

	other := page.New("you", "theirs", "c")
	_, err = s.InsertPage(ctx, other)
	require.NoError(t, err)

	pages, err := s.FetchPages(ctx, "me", false)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	require.Equal(t, "recent", pages[0].Title)
	require.Equal(t, "old", pages[1].Title)

	_, err = s.SetDeleted(ctx, recent.ID, true, recent.RevisionNumber)
	require.NoError(t, err)

	pages, err = s.FetchPages(ctx, "me", false)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Equal(t, "old", pages[0].Title)

	pages, err = s.FetchPages(ctx, "me", true)
	require.NoError(t, err)
	require.Len(t, pages, 2)
}

func testRevisionMonotonicity(t *testing.T, s Store) {
	ctx := context.Background()
	p := insert(t, s, "me", "counter", "v1")

	for i := 0; i < 5; i++ {
		before := p.RevisionNumber
		var err error
		p, err = s.UpdateContents(ctx, p.ID, p.Value+"!", before)
		require.NoError(t, err)
		require.Equal(t, before+1, p.RevisionNumber)

		// A stale revision never writes.
		_, err = s.UpdateContents(ctx, p.ID, "stale", before)
		var conflict *page.ConflictError
		require.ErrorAs(t, err, &conflict)
		require.Equal(t, before, conflict.Expected)
		require.Equal(t, p.RevisionNumber, conflict.Actual)

		stored, err := s.GetPage(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, p.Value, stored.Value)
		require.Equal(t, p.RevisionNumber, stored.RevisionNumber)
	}
}

func testHistoryCompleteness(t *testing.T, s Store) {
	ctx := context.Background()
	p := insert(t, s, "me", "doc", "v1")

	history, err := s.History(ctx, p.ID)
	require.NoError(t, err)
	require.Empty(t, history)

	values := []string{"v2", "v3", "v4"}
	for i, v := range values {
		prev := p
		p, err = s.UpdateContents(ctx, p.ID, v, p.RevisionNumber)
		require.NoError(t, err)

		history, err = s.History(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, history, i+1)
		last := history[len(history)-1]
		require.Equal(t, prev.Value, last.Value)
		require.Equal(t, prev.RevisionNumber, last.RevisionNumber)
		require.Equal(t, p.ID, last.PageID)
		require.True(t, last.HistoryCreatedAt.Equal(Epoch))
	}

	// Rejected updates archive nothing.
	_, err = s.UpdateContents(ctx, p.ID, "nope", 1)
	require.ErrorIs(t, err, page.ErrConflict)
	history, err = s.History(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, history, len(values))
	for i := 1; i < len(history); i++ {
		require.Less(t, history[i-1].HistoryID, history[i].HistoryID)
		require.Equal(t, history[i-1].RevisionNumber+1, history[i].RevisionNumber)
	}
}

func testStoreAssignsLastModified(t *testing.T, s Store) {
	ctx := context.Background()
	p := insert(t, s, "me", "clock", "v1")
	require.False(t, p.LastModified.Equal(Epoch))

	updated, err := s.UpdateContents(ctx, p.ID, "v2", p.RevisionNumber)
	require.NoError(t, err)
	require.True(t, updated.LastModified.Equal(Epoch), "got %v", updated.LastModified)
}

func testConcurrentEditConflict(t *testing.T, s Store) {
	ctx := context.Background()
	p := insert(t, s, "me", "shared", "r1")
	var err error
	p, err = s.UpdateContents(ctx, p.ID, "r2", 1)
	require.NoError(t, err)
	p, err = s.UpdateContents(ctx, p.ID, "r3", 2)
	require.NoError(t, err)
	require.Equal(t, 3, p.RevisionNumber)

	clientA, err := s.GetPage(ctx, p.ID)
	require.NoError(t, err)

	clientB, err := s.UpdateContents(ctx, p.ID, "from B", 3)
	require.NoError(t, err)
	require.Equal(t, 4, clientB.RevisionNumber)

	_, err = s.UpdateContents(ctx, p.ID, "from A", clientA.RevisionNumber)
	require.True(t, page.IsConflict(err), "expected conflict, got %v", err)

	stored, err := s.GetPage(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "from B", stored.Value)
	require.Equal(t, 4, stored.RevisionNumber)
}

func testConcurrentWriters(t *testing.T, s Store) {
	ctx := context.Background()
	p := insert(t, s, "me", "race", "start")

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
		others    []error
	)
	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := s.UpdateContents(ctx, p.ID, "writer", p.RevisionNumber)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, page.ErrConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	require.Empty(t, others)
	require.Equal(t, 1, wins)
	require.Equal(t, writers-1, conflicts)

	stored, err := s.GetPage(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 2, stored.RevisionNumber)

	history, err := s.History(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func testUpdateMissing(t *testing.T, s Store) {
	_, err := s.UpdateContents(context.Background(), "missing", "x", 1)
	require.ErrorIs(t, err, page.ErrNotFound)
}

func testTitleAndDelete(t *testing.T, s Store) {
	ctx := context.Background()
	p := insert(t, s, "me", "draft", "body")

	p, err := s.UpdateTitle(ctx, p.ID, " final ", 1)
	require.NoError(t, err)
	require.Equal(t, "final", p.Title)
	require.Equal(t, 2, p.RevisionNumber)

	p, err = s.SetDeleted(ctx, p.ID, true, 2)
	require.NoError(t, err)
	require.True(t, p.Deleted)
	require.Equal(t, 3, p.RevisionNumber)

	p, err = s.SetDeleted(ctx, p.ID, false, 3)
	require.NoError(t, err)
	require.False(t, p.Deleted)
	require.Equal(t, "body", p.Value)

	history, err := s.History(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, "draft", history[0].Title)
	require.True(t, history[2].Deleted)
}

func testJournalDedup(t *testing.T, s Store) {
	ctx := context.Background()
	day := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	first, err := s.InsertJournalPage(ctx, "Jan 1st, 2024", page.DefaultJournalValue, "me", day)
	require.NoError(t, err)
	require.Equal(t, 1, first.RevisionNumber)
	require.True(t, first.IsJournal)

	_, err = s.InsertJournalPage(ctx, "Jan 1st, 2024", page.DefaultJournalValue, "me", day)
	var dup *page.DuplicateJournalError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "Jan 1st, 2024", dup.Title)

	pages, err := s.FetchPages(ctx, "me", true)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	// Another user keeps their own journal.
	_, err = s.InsertJournalPage(ctx, "Jan 1st, 2024", page.DefaultJournalValue, "you", day)
	require.NoError(t, err)

	// A deleted journal page frees its title.
	_, err = s.SetDeleted(ctx, first.ID, true, first.RevisionNumber)
	require.NoError(t, err)
	_, err = s.InsertJournalPage(ctx, "Jan 1st, 2024", page.DefaultJournalValue, "me", day)
	require.NoError(t, err)
}

func testJournalRestoreCollision(t *testing.T, s Store) {
	ctx := context.Background()
	day := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

	first, err := s.InsertJournalPage(ctx, "Jan 2nd, 2024", page.DefaultJournalValue, "me", day)
	require.NoError(t, err)
	first, err = s.SetDeleted(ctx, first.ID, true, first.RevisionNumber)
	require.NoError(t, err)
	_, err = s.InsertJournalPage(ctx, "Jan 2nd, 2024", page.DefaultJournalValue, "me", day)
	require.NoError(t, err)

	_, err = s.SetDeleted(ctx, first.ID, false, first.RevisionNumber)
	require.ErrorIs(t, err, page.ErrDuplicateJournal)

	stored, err := s.GetPage(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, stored.Deleted)
	require.Equal(t, first.RevisionNumber, stored.RevisionNumber)
}

func testStaleJournalCleanup(t *testing.T, s Store) {
	ctx := context.Background()
	day := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	empty, err := s.InsertJournalPage(ctx, "Jan 1st, 2024", page.DefaultJournalValue, "me", day)
	require.NoError(t, err)
	edited, err := s.InsertJournalPage(ctx, "Jan 1st, 2024", "- bought milk", "you", day)
	require.NoError(t, err)

	deleted, err := s.DeleteStalePages(ctx, []string{empty.ID, edited.ID, "missing"}, page.DefaultJournalValue)
	require.NoError(t, err)
	require.Equal(t, []string{empty.ID}, deleted)

	_, err = s.GetPage(ctx, empty.ID)
	require.ErrorIs(t, err, page.ErrNotFound)

	kept, err := s.GetPage(ctx, edited.ID)
	require.NoError(t, err)
	require.Equal(t, "- bought milk", kept.Value)

	deleted, err = s.DeleteStalePages(ctx, nil, page.DefaultJournalValue)
	require.NoError(t, err)
	require.Empty(t, deleted)
}
