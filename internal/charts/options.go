package charts

import (
	"errors"
	"fmt"
	"image/color"
	"slices"
	"strconv"
	"strings"
)

// ErrNoData is returned when a series has nothing to draw. No file is written.
var ErrNoData = errors.New("no data to plot")

// ErrUnknownKind is returned for chart kinds without a renderer.
var ErrUnknownKind = errors.New("unknown chart kind")

// Kind names a chart style.
type Kind string

const (
	KindBar      Kind = "bar"
	KindBarH     Kind = "barh"
	KindPie      Kind = "pie"
	KindDonut    Kind = "donut"
	KindPareto   Kind = "pareto"
	KindLollipop Kind = "lollipop"
)

// Kinds lists every supported chart kind.
func Kinds() []Kind {
	return []Kind{KindBar, KindBarH, KindPie, KindDonut, KindPareto, KindLollipop}
}

// Valid reports whether k has a renderer.
func (k Kind) Valid() bool {
	return slices.Contains(Kinds(), k)
}

// Options controls a single render. It is passed by value; Colors is
// cloned before use so callers can reuse an Options safely.
type Options struct {
	OutputDir string

	// Width and Height are in inches.
	Width  float64
	Height float64
	DPI    int

	// FontSize applies to ticks and the annotation box, LabelSize to value labels.
	FontSize  float64
	LabelSize float64

	// Colors are hex strings (#rgb or #rrggbb), cycled across bars or slices.
	Colors []string

	Title         string
	Unit          string
	DateLabel     string
	LocationLabel string
}

// DefaultOptions returns a fresh Options for kind.
func DefaultOptions(kind Kind) Options {
	opts := Options{
		Width:     10,
		Height:    7,
		DPI:       150,
		FontSize:  12,
		LabelSize: 12,
		Unit:      "CF",
	}

	switch kind {
	case KindBar:
		opts.Colors = []string{"#c31432"}
	case KindBarH:
		opts.Width = 12
		opts.FontSize, opts.LabelSize = 14, 14
		opts.Colors = []string{"#1976D2"}
	case KindPie:
		opts.Width = 7
		opts.FontSize, opts.LabelSize = 10, 14
		opts.Colors = []string{
			"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
			"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
			"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
			"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
		}
	case KindDonut:
		opts.Width = 7
		opts.FontSize, opts.LabelSize = 12, 16
		opts.Colors = []string{"#F57C00", "#FF9800", "#FFB74D", "#FFE0B2"}
	case KindPareto:
		opts.FontSize, opts.LabelSize = 14, 16
		opts.Colors = []string{"#D32F2F", "#424242"}
	case KindLollipop:
		opts.Width = 12
		opts.FontSize, opts.LabelSize = 14, 14
		opts.Colors = []string{"#B71C1C"}
	}

	return opts
}

// Merge overlays the non-zero fields of o onto base.
func (base Options) Merge(o Options) Options {
	if o.OutputDir != "" {
		base.OutputDir = o.OutputDir
	}
	if o.Width > 0 {
		base.Width = o.Width
	}
	if o.Height > 0 {
		base.Height = o.Height
	}
	if o.DPI > 0 {
		base.DPI = o.DPI
	}
	if o.FontSize > 0 {
		base.FontSize = o.FontSize
	}
	if o.LabelSize > 0 {
		base.LabelSize = o.LabelSize
	}
	if len(o.Colors) > 0 {
		base.Colors = slices.Clone(o.Colors)
	}
	if o.Title != "" {
		base.Title = o.Title
	}
	if o.Unit != "" {
		base.Unit = o.Unit
	}
	if o.DateLabel != "" {
		base.DateLabel = o.DateLabel
	}
	if o.LocationLabel != "" {
		base.LocationLabel = o.LocationLabel
	}
	return base
}

// palette parses Colors into a fresh slice, falling back to black.
func (o Options) palette() ([]color.Color, error) {
	if len(o.Colors) == 0 {
		return []color.Color{color.Black}, nil
	}
	out := make([]color.Color, len(o.Colors))
	for i, hex := range o.Colors {
		c, err := ParseHexColor(hex)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// ParseHexColor parses "#rgb" or "#rrggbb".
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
