package charts

import (
	"image/color"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// annotation draws a boxed text block in a corner of the data area.
type annotation struct {
	Text  string
	Style text.Style
	// Bottom places the box in the bottom-right corner instead of top-right.
	Bottom bool
}

func newAnnotation(txt string, opts Options, bottom bool) *annotation {
	yAlign := text.YTop
	if bottom {
		yAlign = text.YBottom
	}
	return &annotation{
		Text:   txt,
		Style:  labelStyle(Options{LabelSize: opts.FontSize}, text.XRight, yAlign),
		Bottom: bottom,
	}
}

func (a *annotation) Plot(c draw.Canvas, _ *plot.Plot) {
	pad := vg.Points(6)
	pt := vg.Point{X: c.Max.X - 2*pad, Y: c.Max.Y - 2*pad}
	if a.Bottom {
		pt.Y = c.Min.Y + 2*pad
	}

	box := a.Style.Rectangle(a.Text).Add(pt)
	box.Min = box.Min.Sub(vg.Point{X: pad, Y: pad})
	box.Max = box.Max.Add(vg.Point{X: pad, Y: pad})
	outline := []vg.Point{
		box.Min,
		{X: box.Max.X, Y: box.Min.Y},
		box.Max,
		{X: box.Min.X, Y: box.Max.Y},
	}

	c.FillPolygon(color.White, outline)
	c.StrokeLines(draw.LineStyle{Color: color.Gray{Y: 0x80}, Width: vg.Points(0.5)}, append(outline, box.Min))
	c.FillText(a.Style, pt, a.Text)
}

// commaTicks labels default tick positions with thousands separators.
type commaTicks struct{}

func (commaTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = humanize.FormatFloat("#,###.", ticks[i].Value)
		}
	}
	return ticks
}

// swatch is a solid legend thumbnail.
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(s.color, []vg.Point{
		c.Min,
		{X: c.Max.X, Y: c.Min.Y},
		c.Max,
		{X: c.Min.X, Y: c.Max.Y},
	})
}
