package charts

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"opsreports/internal/dataprocessing"
)

var sansFont = font.Font{Typeface: "Liberation", Variant: "Sans"}

var fileNameReplacer = strings.NewReplacer("/", "-", `\`, "-", ":", "-", " / ", "-")

// FileName returns the PNG name for a chart: {kind}_{group_by}_{indicator}.png
func FileName(kind Kind, series dataprocessing.Series) string {
	name := fmt.Sprintf("%s_%s_%s.png", kind, series.GroupName(), series.Indicator)
	return fileNameReplacer.Replace(name)
}

// Render draws series as kind and writes it under opts.OutputDir, returning
// the written path. An empty series returns ErrNoData.
func Render(kind Kind, series dataprocessing.Series, opts Options) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if series.Len() == 0 {
		return "", ErrNoData
	}

	opts = DefaultOptions(kind).Merge(opts)
	palette, err := opts.palette()
	if err != nil {
		return "", err
	}

	var p *plot.Plot
	switch kind {
	case KindBar:
		p, err = barPlot(series, opts, palette)
	case KindBarH:
		p, err = barhPlot(series, opts, palette)
	case KindPie:
		p, err = piePlot(series, opts, palette, 0)
	case KindDonut:
		p, err = piePlot(series, opts, palette, donutHole)
	case KindPareto:
		p, err = paretoPlot(series, opts, palette)
	case KindLollipop:
		p, err = lollipopPlot(series, opts, palette)
	}
	if err != nil {
		return "", err
	}

	path := filepath.Join(opts.OutputDir, FileName(kind, series))
	if err := savePNG(p, opts, path); err != nil {
		return "", err
	}
	return path, nil
}

// newPlot applies the shared title, fonts and grid settings.
func newPlot(series dataprocessing.Series, opts Options) *plot.Plot {
	p := plot.New()

	title := opts.Title
	if title == "" {
		title = strings.ToUpper(strings.Join(series.GroupBy, " / "))
	}
	if opts.LocationLabel != "" {
		title += " - " + opts.LocationLabel
	}
	p.Title.Text = title
	p.Title.TextStyle.Font = font.From(sansFont, vg.Points(opts.FontSize+4))
	p.Title.Padding = vg.Points(8)

	for _, axis := range []*plot.Axis{&p.X, &p.Y} {
		axis.Tick.Label.Font = font.From(sansFont, vg.Points(opts.FontSize))
		axis.Label.Text = ""
	}
	p.Legend.TextStyle.Font = font.From(sansFont, vg.Points(opts.FontSize))

	return p
}

// labelStyle is the text style for value labels.
func labelStyle(opts Options, xAlign text.XAlignment, yAlign text.YAlignment) text.Style {
	return text.Style{
		Color:   color.Black,
		Font:    font.From(sansFont, vg.Points(opts.LabelSize)),
		XAlign:  xAlign,
		YAlign:  yAlign,
		Handler: plot.DefaultTextHandler,
	}
}

// formatValue renders 1234.56 as "1,234.6 CF".
func formatValue(v float64, unit string) string {
	s := humanize.FormatFloat("#,###.#", v)
	if unit == "" {
		return s
	}
	return s + " " + unit
}

// summary is the "Fecha / Total" annotation text.
func summary(series dataprocessing.Series, opts Options) string {
	total := formatValue(series.Total().InexactFloat64(), opts.Unit)
	if opts.DateLabel == "" {
		return "Total: " + total
	}
	return fmt.Sprintf("Fecha: %s\nTotal: %s", opts.DateLabel, total)
}

func pick(palette []color.Color, i int) color.Color {
	return palette[i%len(palette)]
}

func savePNG(p *plot.Plot, opts Options, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create chart directory: %w", err)
		}
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opts.Width)*vg.Inch, vg.Length(opts.Height)*vg.Inch),
		vgimg.UseDPI(opts.DPI),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode chart: %w", err)
	}
	return f.Close()
}
