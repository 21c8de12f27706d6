// Package sqlstore keeps pages in a relational database through GORM.
//
// The pages table holds the live row of every page and pages_history holds
// one archived row per accepted update. Updates run inside a transaction that
// compares the stored revision, archives the current row and then issues an
// UPDATE guarded by the expected revision, so two writers racing on the same
// revision cannot both win. On postgres the row is additionally locked with
// SELECT ... FOR UPDATE.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"tableflip.dev/outliner/pkg/page"
)

const journalIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_pages_journal_title
	ON pages (user_id, title) WHERE is_journal AND NOT deleted`

// Store implements page.Store on top of GORM.
type Store struct {
	db       *gorm.DB
	lockRows bool
	now      func() time.Time
}

var _ page.Store = (*Store)(nil)

// NewPostgres connects to the postgres database named by dsn.
func NewPostgres(dsn string, log logrus.FieldLogger) (*Store, error) {
	return Open(postgres.Open(dsn), log)
}

// NewSQLite opens (creating if needed) the sqlite database at path.
func NewSQLite(path string, log logrus.FieldLogger) (*Store, error) {
	s, err := Open(sqlite.Open(path), log)
	if err != nil {
		return nil, err
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; a single connection queues transactions
	// instead of failing them with SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	return s, nil
}

// Open wraps an arbitrary dialector and migrates the schema.
func Open(dialector gorm.Dialector, log logrus.FieldLogger) (*Store, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: connect: %w", err)
	}
	s := &Store{
		db:       db,
		lockRows: db.Dialector.Name() == "postgres",
		now:      time.Now,
	}
	if err := s.Migrate(context.Background()); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// SetClock replaces the clock used for last-modified stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Migrate creates the pages and pages_history tables and the journal title
// index. It is safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&pageRow{}, &historyRow{}); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	if err := db.Exec(journalIndex).Error; err != nil {
		return fmt.Errorf("sqlstore: journal index: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// FetchPages implements page.Store.
func (s *Store) FetchPages(ctx context.Context, userID string, includeDeleted bool) ([]page.Page, error) {
	var rows []pageRow
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includeDeleted {
		q = q.Where("deleted = ?", false)
	}
	if err := q.Order("last_modified desc").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]page.Page, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.page())
	}
	return out, nil
}

// GetPage implements page.Store.
func (s *Store) GetPage(ctx context.Context, id string) (page.Page, error) {
	var row pageRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return page.Page{}, page.ErrNotFound
		}
		return page.Page{}, err
	}
	return row.page(), nil
}

// InsertPage implements page.Store.
func (s *Store) InsertPage(ctx context.Context, p page.Page) (page.Page, error) {
	if strings.TrimSpace(p.ID) == "" {
		return page.Page{}, errors.New("sqlstore: page id required")
	}
	p.RevisionNumber = 1
	if p.LastModified.IsZero() {
		p.LastModified = s.now()
	}
	row := rowFromPage(p)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if row.IsJournal && !row.Deleted {
			var existing pageRow
			err := tx.Where("user_id = ? AND title = ? AND is_journal = ? AND deleted = ?",
				row.UserID, row.Title, true, false).First(&existing).Error
			if err == nil {
				return &page.DuplicateJournalError{Title: row.Title, ExistingID: existing.ID}
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		return tx.Create(&row).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) && row.IsJournal {
		// Lost a race with a concurrent insert of the same day.
		return page.Page{}, &page.DuplicateJournalError{Title: row.Title}
	}
	if err != nil {
		return page.Page{}, err
	}
	return row.page(), nil
}

// InsertJournalPage implements page.Store.
func (s *Store) InsertJournalPage(ctx context.Context, title, value, userID string, date time.Time) (page.Page, error) {
	p := page.NewJournal(userID, title, value)
	p.LastModified = date
	return s.InsertPage(ctx, p)
}

// UpdateContents implements page.Store.
func (s *Store) UpdateContents(ctx context.Context, id, value string, expectedRevision int) (page.Page, error) {
	return s.update(ctx, id, expectedRevision, map[string]any{"value": value}, nil)
}

// UpdateTitle implements page.Store.
func (s *Store) UpdateTitle(ctx context.Context, id, title string, expectedRevision int) (page.Page, error) {
	return s.update(ctx, id, expectedRevision, map[string]any{"title": strings.TrimSpace(title)}, nil)
}

// SetDeleted implements page.Store.
func (s *Store) SetDeleted(ctx context.Context, id string, deleted bool, expectedRevision int) (page.Page, error) {
	return s.update(ctx, id, expectedRevision, map[string]any{"deleted": deleted}, func(tx *gorm.DB, current pageRow) error {
		if !current.IsJournal || !current.Deleted || deleted {
			return nil
		}
		var live pageRow
		err := tx.Where("user_id = ? AND title = ? AND is_journal = ? AND deleted = ?",
			current.UserID, current.Title, true, false).First(&live).Error
		if err == nil {
			return &page.DuplicateJournalError{Title: current.Title, ExistingID: live.ID}
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	})
}

// update runs the revision protocol inside one transaction. check, when set,
// sees the locked current row and may veto the write.
func (s *Store) update(ctx context.Context, id string, expectedRevision int, fields map[string]any, check func(*gorm.DB, pageRow) error) (page.Page, error) {
	var updated, current pageRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if s.lockRows {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&current, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return page.ErrNotFound
			}
			return err
		}
		if current.RevisionNumber != expectedRevision {
			return &page.ConflictError{PageID: id, Expected: expectedRevision, Actual: current.RevisionNumber}
		}
		if check != nil {
			if err := check(tx, current); err != nil {
				return err
			}
		}

		now := s.now()
		archived := current.archive(now)
		if err := tx.Create(&archived).Error; err != nil {
			return fmt.Errorf("sqlstore: archive revision: %w", err)
		}

		changes := map[string]any{
			"revision_number": expectedRevision + 1,
			"last_modified":   now,
		}
		for k, v := range fields {
			changes[k] = v
		}
		res := tx.Model(&pageRow{}).
			Where("id = ? AND revision_number = ?", id, expectedRevision).
			Updates(changes)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			// Another writer committed between our read and our update.
			return &page.ConflictError{PageID: id, Expected: expectedRevision, Actual: expectedRevision + 1}
		}
		return tx.First(&updated, "id = ?", id).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// The journal index rejected the row: its day already has a live page.
		title := current.Title
		if t, ok := fields["title"].(string); ok {
			title = t
		}
		dup := &page.DuplicateJournalError{Title: title}
		var live pageRow
		if s.db.WithContext(ctx).Where("user_id = ? AND title = ? AND is_journal = ? AND deleted = ? AND id <> ?",
			current.UserID, title, true, false, id).First(&live).Error == nil {
			dup.ExistingID = live.ID
		}
		return page.Page{}, dup
	}
	if err != nil {
		return page.Page{}, err
	}
	return updated.page(), nil
}

// DeleteStalePages implements page.Store.
func (s *Store) DeleteStalePages(ctx context.Context, ids []string, expectedValue string) ([]string, error) {
	deleted := make([]string, 0, len(ids))
	if len(ids) == 0 {
		return deleted, nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			res := tx.Where("id = ? AND value = ?", id, expectedValue).Delete(&pageRow{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				deleted = append(deleted, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// History implements page.Store.
func (s *Store) History(ctx context.Context, id string) ([]page.HistoryEntry, error) {
	var rows []historyRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).Order("history_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]page.HistoryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.entry())
	}
	return out, nil
}
