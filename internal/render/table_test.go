package render

import (
	"fmt"
	"testing"
	"time"

	"github.com/cardsnap/cardsnap/pkg/card"
)

func TestHeaderRowRemapping(t *testing.T) {
	cols := []card.Column{
		{Name: "product_id", DisplayName: "Product ID", BaseType: "type/Integer", RemappedTo: "title"},
		{Name: "title", DisplayName: "Title", BaseType: "type/Text", RemappedFrom: "product_id"},
		{Name: "count", DisplayName: "Count", BaseType: "type/Integer"},
	}

	got := headerRow(cols, false)
	want := []string{"TITLE", "COUNT"}
	if len(got.Cells) != len(want) {
		t.Fatalf("headerRow() = %v, want %v", got.Cells, want)
	}
	for i := range want {
		if got.Cells[i] != want[i] {
			t.Errorf("header[%d] = %q, want %q", i, got.Cells[i], want[i])
		}
	}
}

func TestHeaderRowBarColumn(t *testing.T) {
	cols := []card.Column{
		{Name: "category", BaseType: "type/Text"},
		{Name: "count", BaseType: "type/Integer"},
	}
	got := headerRow(cols, true)
	if len(got.Cells) != 3 || got.Cells[2] != "" {
		t.Errorf("expected trailing empty bar header, got %v", got.Cells)
	}
}

func TestBodyRowsRemapping(t *testing.T) {
	cols := []card.Column{
		{Name: "product_id", BaseType: "type/Integer", RemappedTo: "title"},
		{Name: "title", BaseType: "type/Text", RemappedFrom: "product_id"},
	}
	rows := []card.Row{{17, "Widget"}}

	got := bodyRows(time.UTC, cols, rows, nil, 0)
	if len(got) != 1 {
		t.Fatalf("bodyRows() returned %d rows", len(got))
	}
	// Exactly one cell for the remapped pair, carrying the substitute value.
	if len(got[0].Cells) != 1 || got[0].Cells[0] != "Widget" {
		t.Errorf("remapped row = %v, want [Widget]", got[0].Cells)
	}
}

func TestBodyRowsBarWidths(t *testing.T) {
	cols := []card.Column{
		{Name: "category", BaseType: "type/Text"},
		{Name: "count", BaseType: "type/Integer"},
	}
	rows := []card.Row{{"a", 10}, {"b", 20}}
	sel := func(r card.Row) float64 { return float64(r[1].(int)) }

	got := bodyRows(time.UTC, cols, rows, sel, 20)
	if got[0].Bar == nil || *got[0].Bar != 50 {
		t.Errorf("row 0 bar = %v, want 50", got[0].Bar)
	}
	if got[1].Bar == nil || *got[1].Bar != 100 {
		t.Errorf("row 1 bar = %v, want 100", got[1].Bar)
	}
}

func TestBodyRowsBarNotClamped(t *testing.T) {
	cols := []card.Column{
		{Name: "category", BaseType: "type/Text"},
		{Name: "count", BaseType: "type/Integer"},
	}
	rows := []card.Row{{"a", 30}}
	sel := func(r card.Row) float64 { return float64(r[1].(int)) }

	got := bodyRows(time.UTC, cols, rows, sel, 20)
	if *got[0].Bar != 150 {
		t.Errorf("bar widths are not clamped; got %v, want 150", *got[0].Bar)
	}
}

func TestPrepareForDisplayTruncation(t *testing.T) {
	cols := []card.Column{
		{Name: "a", BaseType: "type/Text"},
		{Name: "b", BaseType: "type/Text"},
	}
	var rows []card.Row
	for i := 0; i < 15; i++ {
		rows = append(rows, card.Row{fmt.Sprintf("r%d", i), "x"})
	}

	got := prepareForDisplay(time.UTC, cols, rows, nil, 0, 3)
	if len(got) != 1+rowsLimit {
		t.Fatalf("prepareForDisplay() = %d rows, want header + %d", len(got), rowsLimit)
	}
	if got[1].Cells[0] != "r0" || got[10].Cells[0] != "r9" {
		t.Errorf("truncation kept wrong rows: first=%q last=%q", got[1].Cells[0], got[10].Cells[0])
	}
}

func TestPrepareForDisplayColumnTruncation(t *testing.T) {
	cols := []card.Column{
		{Name: "a", BaseType: "type/Text"},
		{Name: "b", BaseType: "type/Text"},
		{Name: "c", BaseType: "type/Text"},
		{Name: "d", BaseType: "type/Text"},
	}
	rows := []card.Row{{"1", "2", "3", "4"}}

	got := prepareForDisplay(time.UTC, cols, rows, nil, 0, 3)
	if len(got[0].Cells) != 3 {
		t.Errorf("header has %d cells, want 3", len(got[0].Cells))
	}
	if len(got[1].Cells) != 3 {
		t.Errorf("body row has %d cells, want 3", len(got[1].Cells))
	}
}

func TestTruncationWarning(t *testing.T) {
	tests := []struct {
		colLimit, colCount, rowLimit, rowCount int
		want                                   string
	}{
		{3, 2, 10, 5, ""},
		{3, 5, 10, 5, "Showing 3 of 5 columns."},
		{3, 2, 10, 15, "Showing 10 of 15 rows."},
		// Rows win when both limits are exceeded.
		{3, 5, 10, 15, "Showing 10 of 15 rows."},
	}
	for _, tt := range tests {
		got := truncationWarning(tt.colLimit, tt.colCount, tt.rowLimit, tt.rowCount)
		if got != tt.want {
			t.Errorf("truncationWarning(%d,%d,%d,%d) = %q, want %q",
				tt.colLimit, tt.colCount, tt.rowLimit, tt.rowCount, got, tt.want)
		}
	}
}
