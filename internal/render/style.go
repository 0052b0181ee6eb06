package render

// Style is the immutable presentation configuration threaded through
// the renderers. No renderer consults global style state; callers
// compose a Style once and pass it down.
type Style struct {
	FontFamily  string
	TextColor   string
	HeaderColor string
	AccentColor string
	LightColor  string
	BarColor    string
}

// DefaultStyle returns the stock digest palette.
func DefaultStyle() Style {
	return Style{
		FontFamily:  "Lato, \"Helvetica Neue\", Helvetica, Arial, sans-serif",
		TextColor:   "#333333",
		HeaderColor: "#6D7580",
		AccentColor: "#4C9AE8",
		LightColor:  "#B8BBC3",
		BarColor:    "#A2C7EF",
	}
}

// Merge returns a copy of s with any non-zero field of over applied.
func (s Style) Merge(over Style) Style {
	if over.FontFamily != "" {
		s.FontFamily = over.FontFamily
	}
	if over.TextColor != "" {
		s.TextColor = over.TextColor
	}
	if over.HeaderColor != "" {
		s.HeaderColor = over.HeaderColor
	}
	if over.AccentColor != "" {
		s.AccentColor = over.AccentColor
	}
	if over.LightColor != "" {
		s.LightColor = over.LightColor
	}
	if over.BarColor != "" {
		s.BarColor = over.BarColor
	}
	return s
}
