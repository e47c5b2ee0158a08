package charts

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"opsreports/internal/dataprocessing"
)

const (
	// donutHole is the inner radius as a fraction of the outer one.
	donutHole = 0.55
	// minPercentLabel hides slice percentages at or below this share.
	minPercentLabel = 2.0
	// startAngle is where the first slice begins, in degrees.
	startAngle = 145.0
	explode    = 0.05
)

// pieChart draws slices clockwise from startAngle on the unit circle.
type pieChart struct {
	values []float64
	colors []color.Color
	hole   float64
	style  text.Style
}

// SlicePercents returns each value's share of the total, in percent.
func SlicePercents(values []float64) []float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	out := make([]float64, len(values))
	if total <= 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / total * 100
	}
	return out
}

func (pc *pieChart) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -1.15, 1.15, -1.15, 1.15
}

func (pc *pieChart) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	center := vg.Point{X: trX(0), Y: trY(0)}
	radius := vg.Length(math.Min(float64(trX(1)-trX(0)), float64(trY(1)-trY(0))))

	percents := SlicePercents(pc.values)
	angle := startAngle * math.Pi / 180
	edge := draw.LineStyle{Color: color.White, Width: vg.Points(1)}

	for i, pct := range percents {
		sweep := -pct / 100 * 2 * math.Pi
		mid := angle + sweep/2

		origin := center
		if i == 0 && pc.hole == 0 {
			shift := radius * explode
			origin = center.Add(vg.Point{X: shift * vg.Length(math.Cos(mid)), Y: shift * vg.Length(math.Sin(mid))})
		}

		var path vg.Path
		path.Move(origin)
		path.Arc(origin, radius, angle, sweep)
		path.Close()

		c.SetColor(pc.colors[i%len(pc.colors)])
		c.Fill(path)
		c.SetLineStyle(edge)
		c.Stroke(path)

		if pct > minPercentLabel {
			at := radius * 0.68
			if pc.hole > 0 {
				at = radius * vg.Length((1+pc.hole)/2)
			}
			pt := origin.Add(vg.Point{X: at * vg.Length(math.Cos(mid)), Y: at * vg.Length(math.Sin(mid))})
			c.FillText(pc.style, pt, fmt.Sprintf("%.1f%%", pct))
		}

		angle += sweep
	}

	if pc.hole > 0 {
		var hole vg.Path
		hole.Move(vg.Point{X: center.X + radius*vg.Length(pc.hole), Y: center.Y})
		hole.Arc(center, radius*vg.Length(pc.hole), 0, 2*math.Pi)
		hole.Close()
		c.SetColor(color.White)
		c.Fill(hole)
	}
}

// piePlot draws a pie, or a donut when hole > 0, with a legend of labels.
func piePlot(series dataprocessing.Series, opts Options, palette []color.Color, hole float64) (*plot.Plot, error) {
	values := series.Floats()
	for i, v := range values {
		if v < 0 {
			return nil, fmt.Errorf("negative value for %q cannot be drawn as a slice", series.Points[i].Label)
		}
	}
	if series.Total().Sign() <= 0 {
		return nil, ErrNoData
	}

	p := newPlot(series, opts)
	p.HideAxes()

	style := labelStyle(opts, text.XCenter, text.YCenter)
	style.Color = color.White
	if hole > 0 {
		style.Color = color.Black
	}

	p.Add(&pieChart{values: values, colors: palette, hole: hole, style: style})

	for i, label := range series.Labels() {
		p.Legend.Add(label, swatch{color: pick(palette, i)})
	}
	p.Legend.Top = true
	p.Legend.ThumbnailWidth = vg.Points(opts.FontSize)

	p.Add(newAnnotation(summary(series, opts), opts, true))

	return p, nil
}
