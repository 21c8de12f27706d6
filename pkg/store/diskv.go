package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"github.com/sirupsen/logrus"

	"tableflip.dev/outliner/pkg/page"
)

const (
	pagePrefix    = "page"
	historyPrefix = "history"
	metaSequence  = "meta/sequence"
)

// Load creates a page store backed by diskv using the provided config.
func Load(cfg Config) (*Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	basePath, err := expandPath(cfg.BasePath())
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &Persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	}), basePath: basePath, now: time.Now, log: logrus.StandardLogger()}, nil
}

// Persistence keeps one JSON record per page plus one per archived revision.
// All mutations hold mu, which makes the revision compare-and-set atomic for
// every goroutine sharing this value. Separate processes writing to the same
// base path are not coordinated.
type Persistence struct {
	mu       sync.Mutex
	d        *diskv.Diskv
	basePath string
	now      func() time.Time
	log      logrus.FieldLogger
}

var _ page.Store = (*Persistence)(nil)

// SetLogger replaces the logger used to report unreadable records.
func (p *Persistence) SetLogger(log logrus.FieldLogger) {
	if log == nil {
		return
	}
	p.mu.Lock()
	p.log = log
	p.mu.Unlock()
}

// SetClock replaces the clock used for last-modified stamps.
func (p *Persistence) SetClock(now func() time.Time) {
	p.mu.Lock()
	p.now = now
	p.mu.Unlock()
}

func (p *Persistence) read(key string) (page.Page, error) {
	val, err := p.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return page.Page{}, page.ErrNotFound
		}
		return page.Page{}, err
	}
	var pg page.Page
	if err := json.Unmarshal(val, &pg); err != nil {
		return page.Page{}, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return pg, nil
}

func (p *Persistence) write(pg page.Page) error {
	data, err := json.Marshal(pg)
	if err != nil {
		return err
	}
	return p.d.Write(pageKey(pg.ID), data)
}

// FetchPages implements page.Store.
func (p *Persistence) FetchPages(ctx context.Context, userID string, includeDeleted bool) ([]page.Page, error) {
	all := make([]page.Page, 0)
	for key := range p.d.KeysPrefix(pagePrefix+"/", ctx.Done()) {
		pg, err := p.read(key)
		if err != nil {
			p.log.WithError(err).WithField("key", key).Warn("store: skipping unreadable page")
			continue
		}
		if pg.UserID != userID {
			continue
		}
		if pg.Deleted && !includeDeleted {
			continue
		}
		all = append(all, pg)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sortPages(all)
	return all, nil
}

// GetPage implements page.Store.
func (p *Persistence) GetPage(_ context.Context, id string) (page.Page, error) {
	return p.read(pageKey(id))
}

// InsertPage implements page.Store.
func (p *Persistence) InsertPage(_ context.Context, pg page.Page) (page.Page, error) {
	if strings.TrimSpace(pg.ID) == "" {
		return page.Page{}, errors.New("store: page id required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.d.Has(pageKey(pg.ID)) {
		return page.Page{}, fmt.Errorf("store: page %s already exists", pg.ID)
	}
	if pg.IsJournal && !pg.Deleted {
		if existing, ok := p.findJournal(pg.UserID, pg.Title); ok {
			return page.Page{}, &page.DuplicateJournalError{Title: pg.Title, ExistingID: existing.ID}
		}
	}
	pg.RevisionNumber = 1
	if pg.LastModified.IsZero() {
		pg.LastModified = p.now()
	}
	if err := p.write(pg); err != nil {
		return page.Page{}, err
	}
	return pg, nil
}

// InsertJournalPage implements page.Store.
func (p *Persistence) InsertJournalPage(ctx context.Context, title, value, userID string, date time.Time) (page.Page, error) {
	pg := page.NewJournal(userID, title, value)
	pg.LastModified = date
	return p.InsertPage(ctx, pg)
}

func (p *Persistence) findJournal(userID, title string) (page.Page, bool) {
	cancel := make(chan struct{})
	defer close(cancel)
	for key := range p.d.KeysPrefix(pagePrefix+"/", cancel) {
		pg, err := p.read(key)
		if err != nil {
			continue
		}
		if pg.UserID == userID && pg.IsJournal && !pg.Deleted && pg.Title == title {
			return pg, true
		}
	}
	return page.Page{}, false
}

// UpdateContents implements page.Store.
func (p *Persistence) UpdateContents(_ context.Context, id, value string, expectedRevision int) (page.Page, error) {
	return p.update(id, expectedRevision, func(pg *page.Page) error {
		pg.Value = value
		return nil
	})
}

// UpdateTitle implements page.Store.
func (p *Persistence) UpdateTitle(_ context.Context, id, title string, expectedRevision int) (page.Page, error) {
	return p.update(id, expectedRevision, func(pg *page.Page) error {
		pg.Title = strings.TrimSpace(title)
		return nil
	})
}

// SetDeleted implements page.Store.
func (p *Persistence) SetDeleted(_ context.Context, id string, deleted bool, expectedRevision int) (page.Page, error) {
	return p.update(id, expectedRevision, func(pg *page.Page) error {
		if pg.IsJournal && pg.Deleted && !deleted {
			if existing, ok := p.findJournal(pg.UserID, pg.Title); ok {
				return &page.DuplicateJournalError{Title: pg.Title, ExistingID: existing.ID}
			}
		}
		pg.Deleted = deleted
		return nil
	})
}

// update runs the revision protocol: compare, archive the current row, then
// write the mutated row at expectedRevision+1.
func (p *Persistence) update(id string, expectedRevision int, mutate func(*page.Page) error) (page.Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	current, err := p.read(pageKey(id))
	if err != nil {
		return page.Page{}, err
	}
	if current.RevisionNumber != expectedRevision {
		return page.Page{}, &page.ConflictError{PageID: id, Expected: expectedRevision, Actual: current.RevisionNumber}
	}

	next := current
	if err := mutate(&next); err != nil {
		return page.Page{}, err
	}

	now := p.now()
	seq, err := p.nextSequence()
	if err != nil {
		return page.Page{}, fmt.Errorf("store: history sequence: %w", err)
	}
	entry := current.Snapshot(now)
	entry.HistoryID = seq
	data, err := json.Marshal(entry)
	if err != nil {
		return page.Page{}, err
	}

	// The page record goes first so that a failed write leaves no history
	// row behind. A failed archive rolls the page record back.
	next.RevisionNumber = expectedRevision + 1
	next.LastModified = now
	if err := p.write(next); err != nil {
		return page.Page{}, err
	}
	if err := p.d.Write(historyKey(id, seq), data); err != nil {
		if rerr := p.write(current); rerr != nil {
			p.log.WithError(rerr).WithField("page", id).Error("store: roll back after failed archive")
		}
		return page.Page{}, fmt.Errorf("store: archive revision: %w", err)
	}
	return next, nil
}

// DeleteStalePages implements page.Store.
func (p *Persistence) DeleteStalePages(_ context.Context, ids []string, expectedValue string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	deleted := make([]string, 0, len(ids))
	for _, id := range ids {
		current, err := p.read(pageKey(id))
		if errors.Is(err, page.ErrNotFound) {
			continue
		}
		if err != nil {
			return deleted, err
		}
		if current.Value != expectedValue {
			continue
		}
		if err := p.d.Erase(pageKey(id)); err != nil {
			return deleted, fmt.Errorf("store: erase %s: %w", id, err)
		}
		deleted = append(deleted, id)
	}
	return deleted, nil
}

// History implements page.Store.
func (p *Persistence) History(ctx context.Context, id string) ([]page.HistoryEntry, error) {
	out := make([]page.HistoryEntry, 0)
	for key := range p.d.KeysPrefix(historyPrefix+"/"+id+"/", ctx.Done()) {
		val, err := p.d.Read(key)
		if err != nil {
			return nil, err
		}
		var h page.HistoryEntry
		if err := json.Unmarshal(val, &h); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", key, err)
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HistoryID < out[j].HistoryID })
	return out, nil
}

// Close implements page.Store.
func (p *Persistence) Close() error {
	return nil
}

// nextSequence must be called with mu held.
func (p *Persistence) nextSequence() (int64, error) {
	var seq int64
	if raw, err := p.d.Read(metaSequence); err == nil {
		seq, err = strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
		if err != nil {
			return 0, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return 0, err
	}
	seq++
	if err := p.d.Write(metaSequence, []byte(strconv.FormatInt(seq, 10))); err != nil {
		return 0, err
	}
	return seq, nil
}

func sortPages(pages []page.Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		left := pages[i].LastModified
		right := pages[j].LastModified
		if left.Equal(right) {
			return pages[i].ID < pages[j].ID
		}
		return left.After(right)
	})
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return fmt.Sprintf("%s/%s", strings.Join(pathKey.Path, "/"), pathKey.FileName)
}

// pageKey makes `page/<id>`
func pageKey(id string) string {
	return pagePrefix + "/" + id
}

// historyKey makes `history/<id>/<seq>`, zero padded so directory listings
// sort in archive order.
func historyKey(id string, seq int64) string {
	return fmt.Sprintf("%s/%s/%012d", historyPrefix, id, seq)
}
