// Package format converts typed scalar values into display strings.
// Numbers get locale-aware grouping, timestamps get unit-aware layouts,
// and recent instants get relative labels ("Today", "Last week").
package format

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/cardsnap/cardsnap/pkg/card"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// timeNow is swapped out in tests.
var timeNow = time.Now

// Number formats a numeric value: integers with grouping separators,
// everything else fixed to two decimal places.
func Number(v any) string {
	f, ok := asFloat(v)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return printer.Sprintf("%d", int64(f))
	}
	return printer.Sprintf("%.2f", f)
}

// Timestamp formats a temporal cell according to the column's unit.
// Bucketed units (year, hour-of-day, day-of-week, week-of-year,
// month-of-year) are ordinal buckets, not absolute dates, and render
// verbatim.
func Timestamp(loc *time.Location, v any, col card.Column) string {
	switch col.Unit {
	case "year", "hour-of-day", "day-of-week", "week-of-year", "month-of-year":
		return fmt.Sprintf("%v", v)
	}

	t, err := ParseTime(loc, v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	switch col.Unit {
	case "hour":
		return t.Format("3 PM - Jan 2006")
	case "week":
		year, week := t.ISOWeek()
		return fmt.Sprintf("Week %d - %d", week, year)
	case "month":
		return t.Format("January 2006")
	case "quarter":
		return fmt.Sprintf("Q%d - %d", quarterOf(t), t.Year())
	default:
		return t.Format("Jan 2, 2006")
	}
}

// Relative returns a relative label for the value when its instant falls
// in the current or immediately preceding interval of the column's unit.
// ok is false for units without relative labels and for instants outside
// both intervals; callers fall through to absolute formatting.
func Relative(loc *time.Location, v any, col card.Column) (label string, ok bool) {
	t, err := ParseTime(loc, v)
	if err != nil {
		return "", false
	}
	now := timeNow().In(loc)
	t = t.In(loc)

	switch col.Unit {
	case "day":
		switch {
		case sameDay(t, now):
			return "Today", true
		case sameDay(t, now.AddDate(0, 0, -1)):
			return "Yesterday", true
		}
	case "week":
		switch {
		case sameWeek(t, now):
			return "This week", true
		case sameWeek(t, now.AddDate(0, 0, -7)):
			return "Last week", true
		}
	case "month":
		switch {
		case sameMonth(t, now):
			return "This month", true
		case sameMonth(t, now.AddDate(0, -1, 0)):
			return "Last month", true
		}
	case "quarter":
		switch {
		case sameQuarter(t, now):
			return "This quarter", true
		case sameQuarter(t, now.AddDate(0, -3, 0)):
			return "Last quarter", true
		}
	case "year":
		switch {
		case t.Year() == now.Year():
			return "This year", true
		case t.Year() == now.Year()-1:
			return "Last year", true
		}
	}
	return "", false
}

// TimestampPair formats the two endpoints of a series. When the first
// endpoint has a relative label, the second becomes "Previous {unit}";
// otherwise both render absolutely.
func TimestampPair(loc *time.Location, a, b any, col card.Column) (string, string) {
	if label, ok := Relative(loc, a, col); ok {
		return label, "Previous " + col.Unit
	}
	return Timestamp(loc, a, col), Timestamp(loc, b, col)
}

// Cell formats one table cell: datetime columns go through Timestamp,
// numeric values through Number, anything else through its string form.
func Cell(loc *time.Location, v any, col card.Column) string {
	if v == nil {
		return ""
	}
	if col.Kind() == card.Datetime {
		return Timestamp(loc, v, col)
	}
	if _, ok := asFloat(v); ok {
		return Number(v)
	}
	return fmt.Sprintf("%v", v)
}

// ParseTime interprets a cell value as an instant in the given location.
// Accepted forms: time.Time, RFC3339 (with or without zone), and
// date-only strings. Zoneless forms are taken to be in loc.
func ParseTime(loc *time.Location, v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		for _, layout := range []string{
			time.RFC3339Nano,
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02",
		} {
			if parsed, err := time.ParseInLocation(layout, t, loc); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", t)
	default:
		return time.Time{}, fmt.Errorf("cannot parse %T as timestamp", v)
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func sameQuarter(a, b time.Time) bool {
	return a.Year() == b.Year() && quarterOf(a) == quarterOf(b)
}
