package page

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a page id is unknown to the store.
	ErrNotFound = errors.New("page: not found")

	// ErrConflict matches every *ConflictError.
	ErrConflict = errors.New("page: revision conflict")

	// ErrDuplicateJournal matches every *DuplicateJournalError.
	ErrDuplicateJournal = errors.New("page: duplicate journal page")
)

// ConflictError reports an update based on a revision that is no longer
// current. Nothing was written. Callers refetch and re-apply or discard; they
// never retry with a guessed revision.
type ConflictError struct {
	PageID   string
	Expected int
	Actual   int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("page %s: expected revision %d, store has %d", e.PageID, e.Expected, e.Actual)
}

// Is lets errors.Is(err, ErrConflict) match.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// DuplicateJournalError reports an attempt to create a second journal page
// for the same day. Callers look up and reuse ExistingID.
type DuplicateJournalError struct {
	Title      string
	ExistingID string
}

func (e *DuplicateJournalError) Error() string {
	return fmt.Sprintf("journal page %q already exists", e.Title)
}

// Is lets errors.Is(err, ErrDuplicateJournal) match.
func (e *DuplicateJournalError) Is(target error) bool {
	return target == ErrDuplicateJournal
}

// IsConflict reports whether err is a revision conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
