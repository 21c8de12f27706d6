package journal

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var titlePattern = regexp.MustCompile(`^([A-Z][a-z]{2}) (\d{1,2})(st|nd|rd|th), (\d{4})$`)

// Title names the journal page for date, e.g. "Jan 1st, 2024".
func Title(date time.Time) string {
	return fmt.Sprintf("%s %d%s, %d", date.Format("Jan"), date.Day(), Ordinal(date.Day()), date.Year())
}

// Ordinal returns the English suffix for a day of the month.
func Ordinal(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// ParseTitle is the inverse of Title. The date is midnight in loc.
func ParseTitle(title string, loc *time.Location) (time.Time, error) {
	m := titlePattern.FindStringSubmatch(title)
	if m == nil {
		return time.Time{}, fmt.Errorf("journal: %q is not a journal title", title)
	}
	day, _ := strconv.Atoi(m[2])
	if Ordinal(day) != m[3] {
		return time.Time{}, fmt.Errorf("journal: %q has the wrong ordinal suffix", title)
	}
	if loc == nil {
		loc = time.Local
	}
	date, err := time.ParseInLocation("Jan 2 2006", fmt.Sprintf("%s %d %s", m[1], day, m[4]), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("journal: %q: %w", title, err)
	}
	return date, nil
}
