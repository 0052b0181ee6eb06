// Package card defines the card descriptor and query result types consumed
// by the rendering pipeline. A card is a saved query plus its display
// settings; a query result is the typed column/row payload produced for it
// by the query layer.
package card

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Card describes a saved question: identity, display settings, and the
// query that produced the result being rendered.
type Card struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Display      string       `json:"display"`
	DatasetQuery DatasetQuery `json:"dataset_query"`
}

// DatasetQuery carries the subset of the query definition the renderer
// needs: whether the result is an aggregation or a raw row listing.
type DatasetQuery struct {
	Type  string `json:"type"`
	Query Query  `json:"query"`
}

// Query holds the structured-query fields relevant to classification.
type Query struct {
	Aggregation string `json:"aggregation,omitempty"`
}

// IsRawRows reports whether the card's query is an unaggregated row
// listing. Raw listings are never rendered as one of the chart kinds.
func (c Card) IsRawRows() bool {
	return c.DatasetQuery.Query.Aggregation == "rows"
}

// URL returns the card's canonical URL under the given site base.
func (c Card) URL(siteURL string) string {
	return fmt.Sprintf("%s/card/%d", strings.TrimRight(siteURL, "/"), c.ID)
}

// Kind is the closed set of column types the renderer distinguishes.
// It is derived once from the column's type metadata; call sites never
// inspect raw type tags.
type Kind int

const (
	Other Kind = iota
	Numeric
	Datetime
)

// Column is one column of a query result, positionally aligned with the
// cells of every row.
//
// At most one of RemappedTo/RemappedFrom is set per column, and a
// RemappedFrom reference names another column in the same column list.
type Column struct {
	Name         string `json:"name"`
	DisplayName  string `json:"display_name,omitempty"`
	BaseType     string `json:"base_type"`
	SpecialType  string `json:"special_type,omitempty"`
	Unit         string `json:"unit,omitempty"`
	RemappedTo   string `json:"remapped_to,omitempty"`
	RemappedFrom string `json:"remapped_from,omitempty"`
}

// Kind derives the column's renderer-facing type from its base and
// special types. Special type wins over base type, matching how the
// query layer annotates foreign keys and unix timestamps.
func (c Column) Kind() Kind {
	if isDatetimeType(c.SpecialType) || isDatetimeType(c.BaseType) {
		return Datetime
	}
	if isNumericType(c.BaseType) || isNumericType(c.SpecialType) {
		return Numeric
	}
	return Other
}

func isDatetimeType(t string) bool {
	switch baseName(t) {
	case "datetime", "date", "time", "timestamp", "unixtimestamp", "creationtimestamp":
		return true
	}
	return false
}

func isNumericType(t string) bool {
	switch baseName(t) {
	case "number", "integer", "biginteger", "float", "decimal":
		return true
	}
	return false
}

// baseName lowercases a type tag and strips the "type/" namespace the
// query layer uses ("type/BigInteger" -> "biginteger").
func baseName(t string) string {
	t = strings.ToLower(t)
	return strings.TrimPrefix(t, "type/")
}

// Row is one result row; cell i is the value for column i.
type Row []any

// QueryResult is the immutable input to a render: columns, rows, and an
// optional error from the query layer. Renderers never mutate it.
type QueryResult struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
	Error   string   `json:"error,omitempty"`
}

// Validate checks the structural invariants the renderer relies on:
// row width matches the column count, remap fields are mutually
// exclusive, and remap references resolve within the column list.
func (r QueryResult) Validate() error {
	names := make(map[string]bool, len(r.Columns))
	for _, col := range r.Columns {
		names[col.Name] = true
	}

	for _, col := range r.Columns {
		if col.RemappedTo != "" && col.RemappedFrom != "" {
			return fmt.Errorf("column %q: remapped_to and remapped_from are mutually exclusive", col.Name)
		}
		if col.RemappedFrom != "" && !names[col.RemappedFrom] {
			return fmt.Errorf("column %q: remapped_from references unknown column %q", col.Name, col.RemappedFrom)
		}
	}

	for i, row := range r.Rows {
		if len(row) != len(r.Columns) {
			return fmt.Errorf("row %d has %d cells, expected %d", i, len(row), len(r.Columns))
		}
	}
	return nil
}

// LoadCard reads a card descriptor from a JSON file.
func LoadCard(path string) (*Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read card: %w", err)
	}
	var c Card
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse card %s: %w", path, err)
	}
	return &c, nil
}

// LoadResult reads a query result from a JSON file and validates it.
func LoadResult(path string) (*QueryResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result: %w", err)
	}
	var r QueryResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse result %s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid result %s: %w", path, err)
	}
	return &r, nil
}
