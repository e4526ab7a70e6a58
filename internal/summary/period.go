package summary

import (
	"fmt"
	"strings"
	"time"
)

type ViewMode string

const (
	ViewMonth   ViewMode = "MONTH"
	ViewQuarter ViewMode = "QUARTER"
	ViewYear    ViewMode = "YEAR"
	ViewAll     ViewMode = "ALL"
)

// ParseViewMode accepts a view mode name in any case.
func ParseViewMode(s string) (ViewMode, error) {
	switch mode := ViewMode(strings.ToUpper(strings.TrimSpace(s))); mode {
	case ViewMonth, ViewQuarter, ViewYear, ViewAll:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown view mode %q", s)
	}
}

// Period is the inclusive date range a dashboard view covers. Start and End
// are zero for ViewAll.
type Period struct {
	Mode   ViewMode
	Cursor time.Time
	Start  time.Time
	End    time.Time
}

// PeriodFor returns the month, quarter or year that contains cursor, from the
// first instant of its first day to the last instant of its last day, in
// cursor's location.
func PeriodFor(mode ViewMode, cursor time.Time) Period {
	p := Period{Mode: mode, Cursor: cursor}
	loc := cursor.Location()
	year, month := cursor.Year(), cursor.Month()

	switch mode {
	case ViewMonth:
		p.Start = time.Date(year, month, 1, 0, 0, 0, 0, loc)
		p.End = p.Start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	case ViewQuarter:
		first := time.Month((int(month)-1)/3*3 + 1)
		p.Start = time.Date(year, first, 1, 0, 0, 0, 0, loc)
		p.End = p.Start.AddDate(0, 3, 0).Add(-time.Nanosecond)
	case ViewYear:
		p.Start = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		p.End = p.Start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	}
	return p
}

// Bounded reports whether the period has a date range.
func (p Period) Bounded() bool {
	return p.Mode != ViewAll
}

// Contains reports whether the calendar day of t falls inside the period.
// Every day is inside an unbounded period.
func (p Period) Contains(t time.Time) bool {
	if !p.Bounded() {
		return true
	}
	d := civilDay(t, p.Start.Location())
	return !d.Before(p.Start) && !d.After(p.End)
}

// Overlaps reports whether [start, due] intersects the period. A nil due
// date is treated as open ended.
func (p Period) Overlaps(start time.Time, due *time.Time) bool {
	if !p.Bounded() {
		return true
	}
	loc := p.Start.Location()
	end := civilDay(farFuture, loc)
	if due != nil {
		end = civilDay(*due, loc)
	}
	return !civilDay(start, loc).After(p.End) && !end.Before(p.Start)
}

// Label is the human readable name of the period.
func (p Period) Label() string {
	switch p.Mode {
	case ViewMonth:
		return p.Cursor.Format("January 2006")
	case ViewQuarter:
		return fmt.Sprintf("Q%d %d", (int(p.Cursor.Month())-1)/3+1, p.Cursor.Year())
	case ViewYear:
		return fmt.Sprintf("%d", p.Cursor.Year())
	default:
		return "All Time"
	}
}

// Shift moves cursor by steps months, quarters or years depending on mode.
// The day of month is clamped so that Jan 31 + 1 month lands on the last day
// of February. ViewAll has no navigation and returns cursor unchanged.
func Shift(mode ViewMode, cursor time.Time, steps int) time.Time {
	var months int
	switch mode {
	case ViewMonth:
		months = steps
	case ViewQuarter:
		months = 3 * steps
	case ViewYear:
		months = 12 * steps
	default:
		return cursor
	}

	first := time.Date(cursor.Year(), cursor.Month()+time.Month(months), 1,
		cursor.Hour(), cursor.Minute(), cursor.Second(), cursor.Nanosecond(), cursor.Location())
	day := min(cursor.Day(), daysIn(first.Year(), first.Month()))
	return first.AddDate(0, 0, day-1)
}

var farFuture = time.Date(2099, time.December, 31, 0, 0, 0, 0, time.UTC)

// civilDay reinterprets the calendar date of t as midnight in loc, so that
// a date parsed in UTC compares by day against ranges built in another zone.
func civilDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
