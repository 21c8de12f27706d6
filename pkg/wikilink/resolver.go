package wikilink

import (
	"context"
	"strings"

	"tableflip.dev/outliner/pkg/document"
	"tableflip.dev/outliner/pkg/page"
)

// Resolver maps a referenced title to a page id.
type Resolver interface {
	Resolve(ctx context.Context, userID, title string) (pageID string, ok bool, err error)
}

// StoreResolver looks titles up among the user's live pages, ignoring case.
type StoreResolver struct {
	Store page.Store
}

var _ Resolver = (*StoreResolver)(nil)

// Resolve implements Resolver.
func (r *StoreResolver) Resolve(ctx context.Context, userID, title string) (string, bool, error) {
	pages, err := r.Store.FetchPages(ctx, userID, false)
	if err != nil {
		return "", false, err
	}
	want := strings.TrimSpace(title)
	for _, p := range pages {
		if strings.EqualFold(p.Title, want) {
			return p.ID, true, nil
		}
	}
	return "", false, nil
}

// Link is a referenced title and the page it resolved to, if any.
type Link struct {
	Title  string `json:"title"`
	PageID string `json:"pageId,omitempty"`
}

// Resolved reports whether the title matched a page.
func (l Link) Resolved() bool {
	return l.PageID != ""
}

// Resolve looks up every title referenced in t.
func Resolve(ctx context.Context, r Resolver, userID string, t *document.Tree) ([]Link, error) {
	titles := Titles(t)
	out := make([]Link, 0, len(titles))
	for _, title := range titles {
		id, ok, err := r.Resolve(ctx, userID, title)
		if err != nil {
			return nil, err
		}
		l := Link{Title: title}
		if ok {
			l.PageID = id
		}
		out = append(out, l)
	}
	return out, nil
}
