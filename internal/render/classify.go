package render

import (
	"github.com/cardsnap/cardsnap/pkg/card"
)

// Kind is the visualization a result renders as. It is derived from the
// card and result shape on every render, never stored.
type Kind int

const (
	// Unsupported covers raw row listings and map displays; they get a
	// generic cannot-display fragment rather than one of the chart
	// kinds.
	Unsupported Kind = iota
	Empty
	Scalar
	Sparkline
	Bar
	Table
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Scalar:
		return "scalar"
	case Sparkline:
		return "sparkline"
	case Bar:
		return "bar"
	case Table:
		return "table"
	default:
		return "unsupported"
	}
}

// mapDisplays are display settings this renderer cannot draw.
var mapDisplays = map[string]bool{
	"pin_map":     true,
	"state_map":   true,
	"country_map": true,
}

// Classify picks the visualization kind for a card's result. Checks run
// top to bottom and the first match wins; in particular the datetime
// test on the first column is what separates sparkline from bar for
// two-column numeric results.
func Classify(c card.Card, res *card.QueryResult) Kind {
	cols, rows := res.Columns, res.Rows

	switch {
	case c.IsRawRows() || mapDisplays[c.Display]:
		return Unsupported
	case len(rows) == 0 || soleValueMissing(rows):
		return Empty
	case len(cols) == 1 && len(rows) == 1:
		return Scalar
	case len(cols) == 2 && len(rows) > 1 &&
		cols[0].Kind() == card.Datetime && cols[1].Kind() == card.Numeric:
		return Sparkline
	case len(cols) == 2 && cols[1].Kind() == card.Numeric:
		return Bar
	default:
		return Table
	}
}

// soleValueMissing reports a single-row result whose only row is empty
// or whose only cell is null. One-row aggregates over no data come back
// this way.
func soleValueMissing(rows []card.Row) bool {
	if len(rows) != 1 {
		return false
	}
	row := rows[0]
	if len(row) == 0 {
		return true
	}
	return len(row) == 1 && row[0] == nil
}
