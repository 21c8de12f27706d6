// Package timeutil parses look-back windows and walks calendar days.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultWindow is how far back journal listings look when no window is
// given.
const DefaultWindow = "2w"

const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

type unit struct {
	label   string
	size    time.Duration
	aliases []string
}

// units are ordered largest first; FormatWindow relies on it.
var units = []unit{
	{"w", Week, []string{"w", "wk", "wks", "week", "weeks"}},
	{"d", Day, []string{"d", "day", "days"}},
	{"h", time.Hour, []string{"h", "hr", "hrs", "hour", "hours"}},
	{"m", time.Minute, []string{"m", "min", "mins", "minute", "minutes"}},
	{"s", time.Second, []string{"s", "sec", "secs", "second", "seconds"}},
}

var (
	segment = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	byAlias = func() map[string]time.Duration {
		m := make(map[string]time.Duration)
		for _, u := range units {
			for _, a := range u.aliases {
				m[a] = u.size
			}
		}
		return m
	}()
)

// ParseWindow reads a window such as "2w", "10d" or "1w3d" and returns its
// length with the canonical spelling. Empty input means DefaultWindow.
func ParseWindow(input string) (time.Duration, string, error) {
	rest := strings.ToLower(strings.TrimSpace(input))
	if rest == "" {
		rest = DefaultWindow
	}
	var total time.Duration
	for rest != "" {
		m := segment.FindStringSubmatch(rest)
		if m == nil {
			return 0, "", fmt.Errorf("invalid window segment %q", strings.TrimSpace(rest))
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, "", fmt.Errorf("invalid window value %q: %w", m[1], err)
		}
		size, ok := byAlias[m[2]]
		if !ok {
			return 0, "", fmt.Errorf("unsupported window unit %q", m[2])
		}
		total += time.Duration(n) * size
		rest = strings.TrimSpace(rest[len(m[0]):])
	}
	if total <= 0 {
		return 0, "", fmt.Errorf("window must be greater than zero")
	}
	return total, FormatWindow(total), nil
}

// FormatWindow spells d with the largest units first, e.g. "1w3d".
func FormatWindow(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	var b strings.Builder
	for _, u := range units {
		if d < u.size {
			continue
		}
		n := d / u.size
		d -= n * u.size
		fmt.Fprintf(&b, "%d%s", n, u.label)
	}
	if b.Len() == 0 {
		return "0s"
	}
	return b.String()
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date in a's
// location.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b.In(a.Location())))
}

// DaysBack lists the calendar days from the day of now back across window,
// newest first. A window shorter than a day still yields today.
func DaysBack(now time.Time, window time.Duration) []time.Time {
	today := StartOfDay(now)
	n := int(window / Day)
	if n < 1 {
		n = 1
	}
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, today.AddDate(0, 0, -i))
	}
	return out
}
