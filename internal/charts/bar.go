package charts

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"opsreports/internal/dataprocessing"
)

var barOutline = draw.LineStyle{Color: color.Black, Width: vg.Points(0.5)}

// maxValue returns the largest value, at least zero.
func maxValue(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		m = math.Max(m, v)
	}
	return m
}

// minValue returns the smallest value, at most zero.
func minValue(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		m = math.Min(m, v)
	}
	return m
}

// valueRange returns the value axis bounds with headroom on both sides of
// zero, so negative totals draw below the baseline instead of being clipped.
func valueRange(values []float64, headroom float64) (lo, hi float64) {
	lo, hi = minValue(values)*headroom, maxValue(values)*headroom
	if lo == 0 && hi == 0 {
		hi = 1
	}
	return lo, hi
}

// barPlot draws vertical bars in series order with value labels on top.
func barPlot(series dataprocessing.Series, opts Options, palette []color.Color) (*plot.Plot, error) {
	p := newPlot(series, opts)
	values := series.Floats()

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(grid)

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(barWidth(opts, len(values))))
	if err != nil {
		return nil, err
	}
	bars.Color = palette[0]
	bars.LineStyle = barOutline
	p.Add(bars)

	labels, err := valueLabels(values, opts, false)
	if err != nil {
		return nil, err
	}
	labels.Offset = vg.Point{Y: vg.Points(5)}
	p.Add(labels)

	p.Add(newAnnotation(summary(series, opts), opts, false))

	p.NominalX(series.Labels()...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	p.Y.Tick.Marker = commaTicks{}
	p.Y.Min, p.Y.Max = valueRange(values, 1.25)

	return p, nil
}

// barhPlot draws horizontal bars with the largest value on top.
func barhPlot(series dataprocessing.Series, opts Options, palette []color.Color) (*plot.Plot, error) {
	p := newPlot(series, opts)

	// NominalY puts index 0 at the bottom, so plot smallest first.
	ordered := series.Reversed()
	values := ordered.Floats()

	grid := plotter.NewGrid()
	grid.Horizontal.Color = nil
	grid.Vertical.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(grid)

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(barWidth(opts, len(values))))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = palette[0]
	bars.LineStyle = barOutline
	p.Add(bars)

	labels, err := valueLabels(values, opts, true)
	if err != nil {
		return nil, err
	}
	labels.Offset = vg.Point{X: vg.Points(5)}
	p.Add(labels)

	p.Add(newAnnotation(summary(series, opts), opts, true))

	p.NominalY(ordered.Labels()...)
	p.X.Tick.Marker = commaTicks{}
	p.X.Min, p.X.Max = valueRange(values, 1.3)

	return p, nil
}

// valueLabels places a formatted label at each bar end.
func valueLabels(values []float64, opts Options, horizontal bool) (*plotter.Labels, error) {
	xys := make(plotter.XYs, len(values))
	strs := make([]string, len(values))
	for i, v := range values {
		if horizontal {
			xys[i] = plotter.XY{X: v, Y: float64(i)}
		} else {
			xys[i] = plotter.XY{X: float64(i), Y: v}
		}
		strs[i] = formatValue(v, opts.Unit)
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: strs})
	if err != nil {
		return nil, err
	}

	style := labelStyle(opts, text.XCenter, text.YBottom)
	if horizontal {
		style = labelStyle(opts, text.XLeft, text.YCenter)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i] = style
	}
	return labels, nil
}

// barWidth spreads bars over the plot width, in points.
func barWidth(opts Options, n int) float64 {
	span := opts.Width
	if opts.Height > span {
		span = opts.Height
	}
	w := span * 72 * 0.6 / float64(n)
	return math.Max(4, math.Min(w, 60))
}
