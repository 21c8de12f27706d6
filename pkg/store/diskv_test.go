package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"tableflip.dev/outliner/pkg/page"
	"tableflip.dev/outliner/pkg/store/storetest"
)

func TestPersistenceConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Store {
		p, err := Load(testConfig{path: t.TempDir()})
		if err != nil {
			t.Fatalf("load persistence: %v", err)
		}
		t.Cleanup(func() { _ = p.Close() })
		return p
	})
}

func TestHistoryKeySortsBySequence(t *testing.T) {
	if got := historyKey("abc", 7); got != "history/abc/000000000007" {
		t.Fatalf("unexpected history key %q", got)
	}
	pk := keyToPathTransform("history/abc/000000000007")
	if back := pathToKeyTransform(pk); back != "history/abc/000000000007" {
		t.Fatalf("round trip mismatch: %q", back)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	s, err := Open(testConfig{path: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*Persistence); !ok {
		t.Fatalf("expected diskv persistence, got %T", s)
	}

	if _, err := Open(badDriver{}, nil); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

type badDriver struct{ testConfig }

func (badDriver) Driver() string { return "etcd" }

func TestFailedArchiveLeavesPageUntouched(t *testing.T) {
	ctx := context.Background()
	p, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	pg, err := p.InsertPage(ctx, page.New("me", "Plans", "- one"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	// A file where the page's history directory belongs makes archiving fail.
	if err := os.MkdirAll(filepath.Join(p.basePath, historyPrefix), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(p.basePath, historyPrefix, pg.ID), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := p.UpdateContents(ctx, pg.ID, "- two", 1); err == nil {
		t.Fatal("expected archive failure")
	}
	stored, err := p.GetPage(ctx, pg.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.RevisionNumber != 1 || stored.Value != "- one" {
		t.Fatalf("page changed without an archived revision: %+v", stored)
	}
	history, err := p.History(ctx, pg.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected no history, got %d", len(history))
	}
}

func TestFetchPagesLogsUnreadableRecord(t *testing.T) {
	ctx := context.Background()
	p, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	log, hook := test.NewNullLogger()
	p.SetLogger(log)

	if _, err := p.InsertPage(ctx, page.New("me", "Plans", "- one")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := p.d.Write(pageKey("broken"), []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}

	pages, err := p.FetchPages(ctx, "me", false)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected the readable page only, got %d", len(pages))
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel || entry.Data["key"] != pageKey("broken") {
		t.Fatalf("unreadable record not logged: %+v", entry)
	}
}
