package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"tableflip.dev/outliner/pkg/document"
	"tableflip.dev/outliner/pkg/page"
)

// PageMarkdown projects a page's value to markdown.
func PageMarkdown(p page.Page) (string, error) {
	s := &Service{}
	tree, err := s.Tree(p)
	if err != nil {
		return "", err
	}
	return document.ToMarkdown(tree), nil
}

// MigrationResult summarises a MigrateMarkdown run.
type MigrationResult struct {
	Converted []string
	Skipped   []string
	Failed    map[string]error
}

// MigrateMarkdown rewrites every JSON page value of the user as markdown.
// Each rewrite goes through UpdateContents, so the JSON value is kept in
// history. Pages already in markdown are skipped; pages that fail to decode
// or lose a revision race are reported and left alone.
func (s *Service) MigrateMarkdown(ctx context.Context) (MigrationResult, error) {
	res := MigrationResult{Failed: make(map[string]error)}
	pages, err := s.Pages(ctx, true)
	if err != nil {
		return res, err
	}
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !document.IsJSON(p.Value) {
			res.Skipped = append(res.Skipped, p.ID)
			continue
		}
		md, err := PageMarkdown(p)
		if err != nil {
			res.Failed[p.ID] = err
			continue
		}
		if _, err := s.Store.UpdateContents(ctx, p.ID, md, p.RevisionNumber); err != nil {
			if !errors.Is(err, page.ErrConflict) {
				return res, err
			}
			res.Failed[p.ID] = err
			continue
		}
		res.Converted = append(res.Converted, p.ID)
	}
	s.log().WithField("converted", len(res.Converted)).WithField("failed", len(res.Failed)).Info("markdown migration finished")
	return res, nil
}

var unsafeName = regexp.MustCompile(`[^\pL\pN ,._-]+`)

// FileName turns a page title into a markdown file name.
func FileName(title string) string {
	name := strings.TrimSpace(unsafeName.ReplaceAllString(title, "-"))
	if name == "" {
		name = "untitled"
	}
	return name + ".md"
}

// Export writes each live page as <title>.md under dir and returns the paths
// written. Pages sharing a file name get the page id appended.
func (s *Service) Export(ctx context.Context, dir string) ([]string, error) {
	pages, err := s.Pages(ctx, false)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("app: export dir: %w", err)
	}
	used := make(map[string]bool)
	var written []string
	for _, p := range pages {
		md, err := PageMarkdown(p)
		if err != nil {
			s.log().WithError(err).WithField("page", p.ID).Warn("skipping page that failed to load")
			continue
		}
		name := FileName(p.Title)
		if used[name] {
			name = strings.TrimSuffix(name, ".md") + "-" + p.ID + ".md"
		}
		used[name] = true
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(md+"\n"), 0o644); err != nil {
			return written, fmt.Errorf("app: write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
