package page

import (
	"context"
	"time"
)

// Store is the persistence contract for pages. Every mutation is atomic: a
// failed precondition leaves the store unchanged.
type Store interface {
	// FetchPages returns the pages owned by userID, newest first. Deleted
	// pages are skipped unless includeDeleted is set.
	FetchPages(ctx context.Context, userID string, includeDeleted bool) ([]Page, error)

	// GetPage returns a single page or ErrNotFound.
	GetPage(ctx context.Context, id string) (Page, error)

	// InsertPage creates a page at revision 1.
	InsertPage(ctx context.Context, p Page) (Page, error)

	// UpdateContents replaces the value of a page if its stored revision is
	// still expectedRevision. The pre-update row is archived to history and
	// the new revision is expectedRevision+1. A stale expectedRevision yields
	// a *ConflictError and no write.
	UpdateContents(ctx context.Context, id, value string, expectedRevision int) (Page, error)

	// UpdateTitle renames a page under the same revision protocol as
	// UpdateContents.
	UpdateTitle(ctx context.Context, id, title string, expectedRevision int) (Page, error)

	// SetDeleted soft-deletes or restores a page under the same revision
	// protocol as UpdateContents.
	SetDeleted(ctx context.Context, id string, deleted bool, expectedRevision int) (Page, error)

	// InsertJournalPage creates the journal page for date. It fails with a
	// *DuplicateJournalError when a non-deleted journal page with the same
	// title already exists for userID.
	InsertJournalPage(ctx context.Context, title, value, userID string, date time.Time) (Page, error)

	// DeleteStalePages removes those ids whose value still equals
	// expectedValue and returns the ids actually deleted. Ids that no longer
	// match are skipped without error.
	DeleteStalePages(ctx context.Context, ids []string, expectedValue string) ([]string, error)

	// History lists the archived revisions of a page, oldest first.
	History(ctx context.Context, id string) ([]HistoryEntry, error)

	// Close releases backend resources.
	Close() error
}
