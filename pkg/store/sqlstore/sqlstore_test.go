package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"tableflip.dev/outliner/pkg/page"
	"tableflip.dev/outliner/pkg/store/storetest"
)

func quietLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func TestSQLiteConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Store {
		s, err := NewSQLite(filepath.Join(t.TempDir(), "pages.db"), quietLogger())
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestMigrateIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.db")
	for i := 0; i < 2; i++ {
		s, err := NewSQLite(path, quietLogger())
		if err != nil {
			t.Fatalf("open sqlite (pass %d): %v", i, err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
}

func TestJournalIndexReportsExistingPage(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "pages.db"), quietLogger())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	first, err := s.InsertPage(ctx, page.NewJournal("me", "Jan 1st, 2024", ""))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	second, err := s.InsertPage(ctx, page.NewJournal("me", "Jan 2nd, 2024", ""))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Only the unique index stands between this rename and two pages for one day.
	_, err = s.UpdateTitle(ctx, second.ID, "Jan 1st, 2024", second.RevisionNumber)
	var dup *page.DuplicateJournalError
	if !errors.As(err, &dup) {
		t.Fatalf("expected duplicate journal error, got %v", err)
	}
	if dup.Title != "Jan 1st, 2024" || dup.ExistingID != first.ID {
		t.Fatalf("unexpected error details %+v", dup)
	}
	stored, err := s.GetPage(ctx, second.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Title != "Jan 2nd, 2024" || stored.RevisionNumber != 1 {
		t.Fatalf("rejected rename was applied: %+v", stored)
	}
}
