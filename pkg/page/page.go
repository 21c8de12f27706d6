// Package page defines the revisioned page model and the storage contract
// every backend implements.
package page

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultJournalValue is the serialized value of a journal page nobody has
// typed into yet.
const DefaultJournalValue = "- "

// Page is a titled, versioned document owned by a user.
type Page struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Value          string    `json:"value"`
	UserID         string    `json:"userId"`
	RevisionNumber int       `json:"revisionNumber"`
	LastModified   time.Time `json:"lastModified"`
	IsJournal      bool      `json:"isJournal"`
	Deleted        bool      `json:"deleted"`
}

// HistoryEntry is an immutable snapshot of a page taken immediately before an
// accepted update.
type HistoryEntry struct {
	HistoryID        int64     `json:"historyId"`
	PageID           string    `json:"id"`
	Value            string    `json:"value"`
	UserID           string    `json:"userId"`
	Title            string    `json:"title"`
	LastModified     time.Time `json:"lastModified"`
	HistoryCreatedAt time.Time `json:"historyCreatedAt"`
	RevisionNumber   int       `json:"revisionNumber"`
	IsJournal        bool      `json:"isJournal"`
	Deleted          bool      `json:"deleted"`
}

// New builds a regular page at revision 1.
func New(userID, title, value string) Page {
	return Page{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(title),
		Value:          value,
		UserID:         userID,
		RevisionNumber: 1,
	}
}

// NewJournal builds a journal page at revision 1.
func NewJournal(userID, title, value string) Page {
	p := New(userID, title, value)
	p.IsJournal = true
	return p
}

// Snapshot captures p as a history entry.
func (p Page) Snapshot(at time.Time) HistoryEntry {
	return HistoryEntry{
		PageID:           p.ID,
		Value:            p.Value,
		UserID:           p.UserID,
		Title:            p.Title,
		LastModified:     p.LastModified,
		HistoryCreatedAt: at,
		RevisionNumber:   p.RevisionNumber,
		IsJournal:        p.IsJournal,
		Deleted:          p.Deleted,
	}
}

// IsStaleJournal reports whether p is an untouched journal page. Date checks
// are left to the journal package.
func (p Page) IsStaleJournal(defaultValue string) bool {
	return p.IsJournal && !p.Deleted && p.Value == defaultValue
}
