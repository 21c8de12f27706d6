package timeutil

import (
	"testing"
	"time"
)

func TestParseWindowDefault(t *testing.T) {
	dur, label, err := ParseWindow("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dur != 2*Week {
		t.Fatalf("expected %v, got %v", 2*Week, dur)
	}
	if label != "2w" {
		t.Fatalf("expected label 2w, got %s", label)
	}
}

func TestParseWindowComposite(t *testing.T) {
	dur, label, err := ParseWindow("1w 10d 6hours")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Week + 10*Day + 6*time.Hour
	if dur != want {
		t.Fatalf("expected %v, got %v", want, dur)
	}
	if label != "2w3d6h" {
		t.Fatalf("unexpected label: %s", label)
	}
}

func TestParseWindowInvalid(t *testing.T) {
	for _, in := range []string{"noop", "3 fortnights", "0d"} {
		if _, _, err := ParseWindow(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestDaysBack(t *testing.T) {
	now := time.Date(2024, time.March, 2, 15, 4, 5, 0, time.UTC)
	days := DaysBack(now, 3*Day)
	want := []time.Time{
		time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
	}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(days))
	}
	for i := range want {
		if !days[i].Equal(want[i]) {
			t.Fatalf("day %d: got %v, want %v", i, days[i], want[i])
		}
	}
	if got := DaysBack(now, time.Hour); len(got) != 1 {
		t.Fatalf("short window should still yield today, got %d", len(got))
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.January, 1, 23, 59, 0, 0, time.UTC)
	if !SameDay(a, b) {
		t.Fatal("expected same day")
	}
	if SameDay(a, b.Add(time.Minute)) {
		t.Fatal("expected different days")
	}
}
