package wikilink

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/outliner/pkg/document"
	"tableflip.dev/outliner/pkg/page"
	"tableflip.dev/outliner/pkg/store"
)

func TestSplit(t *testing.T) {
	got := Split("see [[Home]] and [[Jan 1st, 2024]].")
	want := []Segment{
		{Kind: SegmentText, Text: "see ", Start: 0, End: 4},
		{Kind: SegmentBracket, Text: "[[", Start: 4, End: 6},
		{Kind: SegmentTitle, Text: "Home", Start: 6, End: 10},
		{Kind: SegmentBracket, Text: "]]", Start: 10, End: 12},
		{Kind: SegmentText, Text: " and ", Start: 12, End: 17},
		{Kind: SegmentBracket, Text: "[[", Start: 17, End: 19},
		{Kind: SegmentTitle, Text: "Jan 1st, 2024", Start: 19, End: 32},
		{Kind: SegmentBracket, Text: "]]", Start: 32, End: 34},
		{Kind: SegmentText, Text: ".", Start: 34, End: 35},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSpansRejectsMalformed(t *testing.T) {
	tests := map[string][]string{
		"[[]]":          nil,
		"[[  ]]":        nil,
		"[[open":        nil,
		"[[a\nb]]":      nil,
		"[single]":      nil,
		"[[a [[b]]":     {"b"},
		"[[x]][[y]]":    {"x", "y"},
		"no links here": nil,
	}
	for text, want := range tests {
		var got []string
		for _, s := range Spans(text) {
			got = append(got, s.Title)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("Spans(%q) mismatch (-want +got):\n%s", text, diff)
		}
	}
}

func TestCanInsertAt(t *testing.T) {
	text := "a [[Home]] b"
	tests := []struct {
		offset int
		want   bool
	}{
		{0, true},
		{1, true},
		{2, false},  // before the opening brackets
		{3, true},   // between the brackets
		{4, true},   // start of the title
		{8, true},   // end of the title
		{10, false}, // after the closing brackets
		{11, true},
		{12, true},
		{13, false},
		{-1, false},
	}
	for _, tt := range tests {
		if got := CanInsertAt(text, tt.offset); got != tt.want {
			t.Fatalf("CanInsertAt(%d) = %v, want %v", tt.offset, got, tt.want)
		}
	}
}

func TestLiftAndTitles(t *testing.T) {
	tree, err := document.Decode("- call [[Mom]] about [[Dinner]]\n- [[Mom]] again")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !Lift(tree) {
		t.Fatal("expected links to be lifted")
	}
	if Lift(tree) {
		t.Fatal("second pass should change nothing")
	}
	if diff := cmp.Diff([]string{"Mom", "Dinner"}, Titles(tree)); diff != "" {
		t.Fatalf("titles mismatch (-want +got):\n%s", diff)
	}
	if got := document.ToMarkdown(tree); got != "- call [[Mom]] about [[Dinner]]\n- [[Mom]] again" {
		t.Fatalf("markdown changed: %q", got)
	}
}

func TestInsertText(t *testing.T) {
	tree := document.New()
	item := tree.AddItem(tree.AddList(), 0, "see [[Home]]")
	Lift(tree)

	if InsertText(tree, item, 4, "x") {
		t.Fatal("insert before a reference must be refused")
	}
	if !InsertText(tree, item, 6, "My ") {
		t.Fatal("insert inside the title refused")
	}
	if got := Titles(tree); len(got) != 1 || got[0] != "My Home" {
		t.Fatalf("unexpected titles %v", got)
	}
	if !InsertText(tree, item, 0, "please ") {
		t.Fatal("insert at start refused")
	}
	if got := tree.PlainText(item); got != "please see [[My Home]]" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestStoreResolver(t *testing.T) {
	ctx := context.Background()
	s, err := store.Load(dirConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	home, err := s.InsertPage(ctx, page.New("me", "Home", "- "))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	tree := document.New()
	tree.AddItem(tree.AddList(), 0, "[[home]] and [[Nowhere]]")
	Lift(tree)

	links, err := Resolve(ctx, &StoreResolver{Store: s}, "me", tree)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []Link{{Title: "home", PageID: home.ID}, {Title: "Nowhere"}}
	if diff := cmp.Diff(want, links); diff != "" {
		t.Fatalf("links mismatch (-want +got):\n%s", diff)
	}
	if links[1].Resolved() {
		t.Fatal("unknown title must not resolve")
	}
}

type dirConfig string

func (d dirConfig) Driver() string   { return store.DriverDiskv }
func (d dirConfig) BasePath() string { return string(d) }
func (d dirConfig) DSN() string      { return "" }
