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

// lollipopPlot draws a stem and a round head per category.
func lollipopPlot(series dataprocessing.Series, opts Options, palette []color.Color) (*plot.Plot, error) {
	p := newPlot(series, opts)
	values := series.Floats()
	stemColor := palette[0]

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(grid)

	heads := make(plotter.XYs, len(values))
	for i, v := range values {
		stem, err := plotter.NewLine(plotter.XYs{{X: float64(i), Y: 0}, {X: float64(i), Y: v}})
		if err != nil {
			return nil, err
		}
		stem.LineStyle = draw.LineStyle{Color: stemColor, Width: vg.Points(2)}
		p.Add(stem)
		heads[i] = plotter.XY{X: float64(i), Y: v}
	}

	scatter, err := plotter.NewScatter(heads)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle = draw.GlyphStyle{
		Color:  stemColor,
		Radius: vg.Points(opts.LabelSize * 0.6),
		Shape:  draw.CircleGlyph{},
	}
	p.Add(scatter)

	labels, err := valueLabels(values, opts, false)
	if err != nil {
		return nil, err
	}
	labels.Offset = vg.Point{Y: vg.Points(opts.LabelSize)}
	p.Add(labels)

	p.Add(newAnnotation(summary(series, opts), opts, false))

	p.NominalX(series.Labels()...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	p.X.Min = -0.5
	p.X.Max = float64(len(values)) - 0.5
	p.Y.Tick.Marker = commaTicks{}
	p.Y.Min, p.Y.Max = valueRange(values, 1.3)

	return p, nil
}
