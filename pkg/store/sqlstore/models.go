package sqlstore

import (
	"time"

	"tableflip.dev/outliner/pkg/page"
)

// pageRow maps the pages table.
type pageRow struct {
	ID             string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	Value          string    `gorm:"column:value;type:text;not null"`
	UserID         string    `gorm:"column:user_id;type:varchar(64);index;not null"`
	Title          string    `gorm:"column:title;type:text;not null"`
	LastModified   time.Time `gorm:"column:last_modified;not null"`
	RevisionNumber int       `gorm:"column:revision_number;not null;default:1"`
	IsJournal      bool      `gorm:"column:is_journal;not null;default:false"`
	Deleted        bool      `gorm:"column:deleted;not null;default:false"`
}

func (pageRow) TableName() string { return "pages" }

// historyRow maps the append-only pages_history table.
type historyRow struct {
	HistoryID        int64     `gorm:"column:history_id;primaryKey;autoIncrement"`
	ID               string    `gorm:"column:id;type:varchar(64);index;not null"`
	Value            string    `gorm:"column:value;type:text;not null"`
	UserID           string    `gorm:"column:user_id;type:varchar(64);not null"`
	Title            string    `gorm:"column:title;type:text;not null"`
	LastModified     time.Time `gorm:"column:last_modified;not null"`
	HistoryCreatedAt time.Time `gorm:"column:history_created_at;not null"`
	RevisionNumber   int       `gorm:"column:revision_number;not null;default:1"`
	IsJournal        bool      `gorm:"column:is_journal;not null;default:false"`
	Deleted          bool      `gorm:"column:deleted;not null;default:false"`
}

func (historyRow) TableName() string { return "pages_history" }

func rowFromPage(p page.Page) pageRow {
	return pageRow{
		ID:             p.ID,
		Value:          p.Value,
		UserID:         p.UserID,
		Title:          p.Title,
		LastModified:   p.LastModified,
		RevisionNumber: p.RevisionNumber,
		IsJournal:      p.IsJournal,
		Deleted:        p.Deleted,
	}
}

func (r pageRow) page() page.Page {
	return page.Page{
		ID:             r.ID,
		Title:          r.Title,
		Value:          r.Value,
		UserID:         r.UserID,
		RevisionNumber: r.RevisionNumber,
		LastModified:   r.LastModified,
		IsJournal:      r.IsJournal,
		Deleted:        r.Deleted,
	}
}

func (r pageRow) archive(at time.Time) historyRow {
	return historyRow{
		ID:               r.ID,
		Value:            r.Value,
		UserID:           r.UserID,
		Title:            r.Title,
		LastModified:     r.LastModified,
		HistoryCreatedAt: at,
		RevisionNumber:   r.RevisionNumber,
		IsJournal:        r.IsJournal,
		Deleted:          r.Deleted,
	}
}

func (h historyRow) entry() page.HistoryEntry {
	return page.HistoryEntry{
		HistoryID:        h.HistoryID,
		PageID:           h.ID,
		Value:            h.Value,
		UserID:           h.UserID,
		Title:            h.Title,
		LastModified:     h.LastModified,
		HistoryCreatedAt: h.HistoryCreatedAt,
		RevisionNumber:   h.RevisionNumber,
		IsJournal:        h.IsJournal,
		Deleted:          h.Deleted,
	}
}
