package charts

import (
	"fmt"
	"image/color"
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"opsreports/internal/dataprocessing"
)

// CumulativePercent returns the running share of the total after each
// point, in percent. The last value is 100 for a positive total.
func CumulativePercent(series dataprocessing.Series) []float64 {
	total := series.Total()
	out := make([]float64, series.Len())
	if total.IsZero() {
		return out
	}

	running := decimal.Zero
	for i, point := range series.Points {
		running = running.Add(point.Value)
		out[i] = running.Div(total).InexactFloat64() * 100
	}
	return out
}

// paretoPlot draws bars plus the cumulative percentage line. The line is
// scaled so 100% sits at the tallest bar's axis maximum.
func paretoPlot(series dataprocessing.Series, opts Options, palette []color.Color) (*plot.Plot, error) {
	p := newPlot(series, opts)
	values := series.Floats()
	lineColor := color.Color(color.Black)
	if len(palette) > 1 {
		lineColor = palette[1]
	}

	top := maxValue(values)
	if top == 0 {
		top = 1
	}
	axisMax := top * 1.25

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(barWidth(opts, len(values))))
	if err != nil {
		return nil, err
	}
	bars.Color = palette[0]
	bars.LineStyle = barOutline
	p.Add(bars)

	cumulative := CumulativePercent(series)
	xys := make(plotter.XYs, len(cumulative))
	strs := make([]string, len(cumulative))
	for i, pct := range cumulative {
		xys[i] = plotter.XY{X: float64(i), Y: pct / 100 * top}
		strs[i] = fmt.Sprintf("%.0f%%", pct)
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.LineStyle = draw.LineStyle{Color: lineColor, Width: vg.Points(2)}
	p.Add(line)

	points, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	points.GlyphStyle = draw.GlyphStyle{Color: lineColor, Radius: vg.Points(3), Shape: draw.CircleGlyph{}}
	p.Add(points)

	pctLabels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: strs})
	if err != nil {
		return nil, err
	}
	for i := range pctLabels.TextStyle {
		pctLabels.TextStyle[i] = labelStyle(Options{LabelSize: opts.FontSize}, text.XCenter, text.YBottom)
		pctLabels.TextStyle[i].Color = lineColor
	}
	pctLabels.Offset = vg.Point{Y: vg.Points(6)}
	p.Add(pctLabels)

	p.Add(newAnnotation(summary(series, opts), opts, false))

	p.NominalX(series.Labels()...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	p.Y.Tick.Marker = commaTicks{}
	p.Y.Min = minValue(values) * 1.25
	p.Y.Max = axisMax

	return p, nil
}
