package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/cardsnap/cardsnap/internal/render/format"
	"github.com/cardsnap/cardsnap/pkg/card"
)

// Row/column limits for tabular display.
const (
	rowsLimit     = 10
	tableColLimit = 3
	barColLimit   = 2
)

// displayRow is one prepared table row. Bar is nil for the header row
// and whenever no bar column was requested; otherwise it is the bar
// width as a percentage of the table's bar track.
type displayRow struct {
	Cells []string
	Bar   *float64
}

// barSelector extracts the value a row's bar length is based on.
type barSelector func(card.Row) float64

// resolveRemapping locates, for each remapping target, the index of the
// column holding its display substitute: a column declaring
// remapped_from = "X" is the substitute for the column named "X".
func resolveRemapping(cols []card.Column) map[string]int {
	remap := make(map[string]int)
	for i, col := range cols {
		if col.RemappedFrom != "" {
			remap[col.RemappedFrom] = i
		}
	}
	return remap
}

// headerRow builds the header. Remapped columns render exactly once:
// the remapped-to side shows its substitute's label, and the substitute
// column itself is skipped. A trailing empty header reserves bar track
// width when a bar column is in play.
func headerRow(cols []card.Column, includeBar bool) displayRow {
	remap := resolveRemapping(cols)

	var cells []string
	for _, col := range cols {
		if col.RemappedFrom != "" {
			continue
		}
		label := col
		if col.RemappedTo != "" {
			if idx, ok := remap[col.Name]; ok {
				label = cols[idx]
			}
		}
		cells = append(cells, strings.ToUpper(displayName(label)))
	}
	if includeBar {
		cells = append(cells, "")
	}
	return displayRow{Cells: cells}
}

func displayName(col card.Column) string {
	if col.DisplayName != "" {
		return col.DisplayName
	}
	return col.Name
}

// bodyRows formats data rows with the same remap substitution as the
// header. When barSel is set, each row carries a bar width of
// 100*barSel(row)/maxValue; the caller supplies the true maximum, and
// widths are deliberately not clamped.
func bodyRows(loc *time.Location, cols []card.Column, rows []card.Row, barSel barSelector, maxValue float64) []displayRow {
	remap := resolveRemapping(cols)

	out := make([]displayRow, 0, len(rows))
	for _, row := range rows {
		var cells []string
		for i, col := range cols {
			if col.RemappedFrom != "" {
				continue
			}
			value, valueCol := row[i], col
			if col.RemappedTo != "" {
				if idx, ok := remap[col.Name]; ok {
					value, valueCol = row[idx], cols[idx]
				}
			}
			cells = append(cells, format.Cell(loc, value, valueCol))
		}

		dr := displayRow{Cells: cells}
		if barSel != nil {
			width := 100 * barSel(row) / maxValue
			dr.Bar = &width
		}
		out = append(out, dr)
	}
	return out
}

// prepareForDisplay truncates to the first colLimit columns and the
// first rowsLimit rows and returns header plus body.
func prepareForDisplay(loc *time.Location, cols []card.Column, rows []card.Row, barSel barSelector, maxValue float64, colLimit int) []displayRow {
	if len(cols) > colLimit {
		cols = cols[:colLimit]
		trimmed := make([]card.Row, len(rows))
		for i, row := range rows {
			trimmed[i] = row[:colLimit]
		}
		rows = trimmed
	}
	if len(rows) > rowsLimit {
		rows = rows[:rowsLimit]
	}

	out := []displayRow{headerRow(cols, barSel != nil)}
	return append(out, bodyRows(loc, cols, rows, barSel, maxValue)...)
}

// truncationWarning describes what the limits cut off. Row truncation
// takes precedence when both limits were exceeded; no warning when
// neither was.
func truncationWarning(colLimit, colCount, rowLimit, rowCount int) string {
	if rowCount > rowLimit {
		return fmt.Sprintf("Showing %d of %d rows.", rowLimit, rowCount)
	}
	if colCount > colLimit {
		return fmt.Sprintf("Showing %d of %d columns.", colLimit, colCount)
	}
	return ""
}
