// Package render turns a card's query result into an HTML fragment plus
// the binary attachments the fragment references. One render is a
// synchronous, side-effect-light computation; independent cards can be
// rendered concurrently.
package render

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cardsnap/cardsnap/internal/render/format"
	"github.com/cardsnap/cardsnap/internal/render/img"
	"github.com/cardsnap/cardsnap/internal/render/markup"
	"github.com/cardsnap/cardsnap/internal/render/sparkline"
	"github.com/cardsnap/cardsnap/pkg/card"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Fragment is a renderable piece of a digest: markup plus the byte
// sources for any content-id references it makes. Attachments is nil
// exactly when the markup references no binary asset.
type Fragment struct {
	Content     *markup.Node
	Attachments map[string]img.ByteSource
}

// Outcome says how a card body render concluded.
type Outcome int

const (
	OK Outcome = iota
	// NotSupported is an expected classification outcome (maps, raw
	// listings), not an error; it is never logged.
	NotSupported
	// Failed covers query-layer errors and render errors; the cause is
	// logged and replaced with a fixed failure fragment.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case NotSupported:
		return "unsupported"
	case Failed:
		return "failed"
	default:
		return "ok"
	}
}

// Options configure one render call.
type Options struct {
	Mode           img.Mode
	Location       *time.Location
	Style          Style
	SiteURL        string
	IncludeTitle   bool
	IncludeButtons bool
	Img            img.Options
	Logger         *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Style == (Style{}) {
		o.Style = DefaultStyle()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Card renders one card end to end: classified body, optional title
// block, error fallback. It never fails; a query error, render error,
// or panic inside a renderer collapses to the fixed failure fragment
// for this card alone.
func Card(opts Options, c card.Card, res *card.QueryResult) (frag Fragment, outcome Outcome) {
	opts = opts.withDefaults()

	defer func() {
		if r := recover(); r != nil {
			opts.Logger.Error("panic rendering card", "card_id", c.ID, "card_name", c.Name, "panic", r)
			frag, outcome = failureFragment(opts), Failed
		}
	}()

	if res.Error != "" {
		opts.Logger.Error("card query failed", "card_id", c.ID, "card_name", c.Name, "error", res.Error)
		return failureFragment(opts), Failed
	}

	body, kind, err := Body(opts, c, res)
	switch {
	case err != nil:
		opts.Logger.Error("failed to render card", "card_id", c.ID, "card_name", c.Name, "kind", kind.String(), "error", err)
		return failureFragment(opts), Failed
	case kind == Unsupported:
		return assemble(opts, c, body), NotSupported
	default:
		return assemble(opts, c, body), OK
	}
}

// Body renders just the visualization for the classified kind, without
// title block or error wrapping.
func Body(opts Options, c card.Card, res *card.QueryResult) (Fragment, Kind, error) {
	opts = opts.withDefaults()
	kind := Classify(c, res)

	var (
		frag Fragment
		err  error
	)
	switch kind {
	case Empty:
		frag, err = renderEmpty(opts)
	case Scalar:
		frag = renderScalar(opts, res)
	case Bar:
		frag, err = renderBar(opts, res)
	case Table:
		frag, err = renderTable(opts, res)
	case Sparkline:
		frag, err = renderSparkline(opts, res)
	default:
		frag = unsupportedFragment(opts)
	}
	return frag, kind, err
}

func renderScalar(opts Options, res *card.QueryResult) Fragment {
	value := format.Cell(opts.Location, res.Rows[0][0], res.Columns[0])
	node := markup.El("div", markup.Text(value)).Styled(
		"font-family", opts.Style.FontFamily,
		"font-size", "24px",
		"font-weight", "700",
		"color", opts.Style.TextColor,
	)
	return Fragment{Content: node}
}

func renderEmpty(opts Options) (Fragment, error) {
	bundle, err := img.NoResults(opts.Mode, opts.Img)
	if err != nil {
		return Fragment{}, fmt.Errorf("failed to bundle no-results icon: %w", err)
	}

	node := markup.El("div",
		markup.El("img").Attr("src", bundle.DisplaySrc).Styled("width", "24px"),
		markup.El("div", markup.Text("No results")).Styled(
			"margin-top", "8px",
			"color", opts.Style.HeaderColor,
			"font-family", opts.Style.FontFamily,
		),
	).Styled("text-align", "center", "padding", "16px 0")

	return Fragment{Content: node, Attachments: bundle.AttachmentEntry()}, nil
}

func renderBar(opts Options, res *card.QueryResult) (Fragment, error) {
	maxValue, err := columnMax(res.Rows, 1)
	if err != nil {
		return Fragment{}, err
	}
	sel := func(row card.Row) float64 {
		v, _ := numericCell(row[1])
		return v
	}

	prepared := prepareForDisplay(opts.Location, res.Columns, res.Rows, sel, maxValue, barColLimit)
	warning := truncationWarning(barColLimit, len(res.Columns), rowsLimit, len(res.Rows))
	return Fragment{Content: htmlTable(opts.Style, prepared, warning)}, nil
}

func renderTable(opts Options, res *card.QueryResult) (Fragment, error) {
	prepared := prepareForDisplay(opts.Location, res.Columns, res.Rows, nil, 0, tableColLimit)
	warning := truncationWarning(tableColLimit, len(res.Columns), rowsLimit, len(res.Rows))
	return Fragment{Content: htmlTable(opts.Style, prepared, warning)}, nil
}

func renderSparkline(opts Options, res *card.QueryResult) (Fragment, error) {
	rows, err := ascendingByTime(opts.Location, res.Columns[0], res.Rows)
	if err != nil {
		return Fragment{}, err
	}

	xraw := make([]float64, len(rows))
	yraw := make([]float64, len(rows))
	for i, row := range rows {
		x, err := temporalValue(opts.Location, row[0])
		if err != nil {
			return Fragment{}, fmt.Errorf("row %d: %w", i, err)
		}
		y, ok := numericCell(row[1])
		if !ok {
			return Fragment{}, fmt.Errorf("row %d: non-numeric value %v", i, row[1])
		}
		xraw[i], yraw[i] = x, y
	}

	xs, ys := sparkline.Normalize(xraw, yraw)
	png, err := sparkline.Render(xs, ys, sparkline.Options{
		LineColor: hexColor(opts.Style.LightColor),
		DotColor:  hexColor(opts.Style.AccentColor),
	})
	if err != nil {
		return Fragment{}, err
	}

	bundle, err := img.New(opts.Mode, img.BufferSource(png), opts.Img)
	if err != nil {
		return Fragment{}, err
	}

	// The two most recent samples caption the chart, oldest on the
	// left so reading order matches the curve.
	last, prev := rows[len(rows)-1], rows[len(rows)-2]
	labelNew, labelOld := format.TimestampPair(opts.Location, last[0], prev[0], res.Columns[0])

	node := markup.El("div",
		markup.El("img").Attr("src", bundle.DisplaySrc).Styled("display", "block", "width", "100%"),
		captionRow(opts.Style, format.Number(prev[1]), format.Number(last[1]), "font-weight", "700", "color", opts.Style.TextColor),
		captionRow(opts.Style, labelOld, labelNew, "color", opts.Style.HeaderColor),
	)

	return Fragment{Content: node, Attachments: bundle.AttachmentEntry()}, nil
}

func captionRow(style Style, left, right string, extraKV ...string) *markup.Node {
	cell := func(s string, align string) *markup.Node {
		n := markup.El("td", markup.Text(s)).Styled(
			"font-family", style.FontFamily,
			"text-align", align,
			"padding", "4px 8px",
		)
		return n.Styled(extraKV...)
	}
	return markup.El("table",
		markup.El("tr", cell(left, "left"), cell(right, "right")),
	).Attr("cellpadding", "0").Attr("cellspacing", "0").Styled("width", "100%", "border-collapse", "collapse")
}

// htmlTable lays out prepared rows, including the relative bar track
// when rows carry bar widths.
func htmlTable(style Style, rows []displayRow, warning string) *markup.Node {
	table := markup.El("table").
		Attr("cellpadding", "0").Attr("cellspacing", "0").
		Styled("border-collapse", "collapse", "width", "100%", "font-family", style.FontFamily)

	for i, row := range rows {
		tr := markup.El("tr")
		for _, cell := range row.Cells {
			if i == 0 {
				tr.Append(markup.El("th", markup.Text(cell)).Styled(
					"text-align", "left",
					"padding", "4px 8px",
					"font-size", "12px",
					"color", style.HeaderColor,
					"border-bottom", "1px solid #EDEFF1",
				))
				continue
			}
			tr.Append(markup.El("td", markup.Text(cell)).Styled(
				"padding", "4px 8px",
				"color", style.TextColor,
				"border-bottom", "1px solid #F4F5F6",
			))
		}
		if row.Bar != nil {
			bar := markup.El("div").Styled(
				"background-color", style.BarColor,
				"height", "10px",
				"width", fmt.Sprintf("%.0f%%", *row.Bar),
			)
			tr.Append(markup.El("td", bar).Styled("width", "99%", "padding", "4px 8px"))
		}
		table.Append(tr)
	}

	wrapper := markup.El("div", table)
	if warning != "" {
		wrapper.Append(markup.El("div", markup.Text(warning)).Styled(
			"margin-top", "8px",
			"font-size", "12px",
			"color", style.HeaderColor,
			"font-family", style.FontFamily,
		))
	}
	return wrapper
}

// assemble wraps a body with the optional title block and merges title
// attachments into the fragment's map.
func assemble(opts Options, c card.Card, body Fragment) Fragment {
	if !opts.IncludeTitle {
		return body
	}

	title := markup.El("span", markup.Text(c.Name)).Styled(
		"font-family", opts.Style.FontFamily,
		"font-size", "16px",
		"font-weight", "700",
		"color", opts.Style.TextColor,
		"text-decoration", "none",
	)

	header := markup.El("a", title).
		Attr("href", c.URL(opts.SiteURL)).
		Styled("text-decoration", "none", "display", "block", "margin-bottom", "8px")

	attachments := body.Attachments
	if opts.IncludeButtons {
		if bundle, err := img.ExternalLink(opts.Mode, opts.Img); err == nil {
			header.Append(markup.El("img").
				Attr("src", bundle.DisplaySrc).
				Styled("width", "16px", "margin-left", "8px", "vertical-align", "middle"))
			attachments = mergeAttachments(attachments, bundle.AttachmentEntry())
		} else {
			opts.Logger.Warn("failed to bundle external link icon", "card_id", c.ID, "error", err)
		}
	}

	return Fragment{
		Content:     markup.El("div", header, body.Content),
		Attachments: attachments,
	}
}

func failureFragment(opts Options) Fragment {
	return Fragment{Content: message(opts.Style, "An error occurred while displaying this card.")}
}

func unsupportedFragment(opts Options) Fragment {
	return Fragment{Content: message(opts.Style, "We were unable to display this card.")}
}

func message(style Style, text string) *markup.Node {
	return markup.El("div", markup.Text(text)).Styled(
		"font-family", style.FontFamily,
		"color", style.HeaderColor,
		"padding", "16px 0",
		"text-align", "center",
	)
}

func mergeAttachments(maps ...map[string]img.ByteSource) map[string]img.ByteSource {
	var out map[string]img.ByteSource
	for _, m := range maps {
		for k, v := range m {
			if out == nil {
				out = make(map[string]img.ByteSource)
			}
			out[k] = v
		}
	}
	return out
}

// ascendingByTime returns rows ordered oldest first. Query layers hand
// back time series either direction; a descending series is detected by
// comparing endpoints and reversed.
func ascendingByTime(loc *time.Location, col card.Column, rows []card.Row) ([]card.Row, error) {
	if len(rows) < 2 {
		return rows, nil
	}
	first, err := temporalValue(loc, rows[0][0])
	if err != nil {
		return nil, err
	}
	last, err := temporalValue(loc, rows[len(rows)-1][0])
	if err != nil {
		return nil, err
	}
	if first <= last {
		return rows, nil
	}

	reversed := make([]card.Row, len(rows))
	for i, row := range rows {
		reversed[len(rows)-1-i] = row
	}
	return reversed, nil
}

// temporalValue maps a temporal cell onto a comparable axis: parsed
// instants as unix seconds, bucketed units (year etc.) as their numeric
// value.
func temporalValue(loc *time.Location, v any) (float64, error) {
	if t, err := format.ParseTime(loc, v); err == nil {
		return float64(t.Unix()), nil
	}
	if f, ok := numericCell(v); ok {
		return f, nil
	}
	return 0, fmt.Errorf("cannot order temporal value %v", v)
}

func columnMax(rows []card.Row, idx int) (float64, error) {
	var max float64
	for i, row := range rows {
		v, ok := numericCell(row[idx])
		if !ok {
			return 0, fmt.Errorf("row %d: non-numeric value %v in column %d", i, row[idx], idx)
		}
		if i == 0 || v > max {
			max = v
		}
	}
	return max, nil
}

func numericCell(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// hexColor parses "#RRGGBB" into a drawing color; bad input falls back
// to opaque black.
func hexColor(s string) drawing.Color {
	if len(s) == 7 && s[0] == '#' {
		var r, g, b uint8
		if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err == nil {
			return drawing.Color{R: r, G: g, B: b, A: 0xFF}
		}
	}
	return drawing.Color{A: 0xFF}
}
