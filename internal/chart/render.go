package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Format is an image encoding supported by Encode.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ErrUnknownFormat is returned for file extensions other than .png and .svg.
var ErrUnknownFormat = errors.New("chart: unknown image format")

// FormatFor picks the encoding from a file name extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".svg":
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// annotationOffset lifts the value labels 1pt above the top of each bar.
const annotationOffset vg.Length = 1

// Figure is a chart laid out on a gonum plot, ready to be encoded.
type Figure struct {
	Plot   *plot.Plot
	Bars   []*Bars
	Labels []*plotter.Labels
	// Ticks are the x-axis ticks, one per bar group.
	Ticks []plot.Tick

	chart Chart
}

// Figure validates the chart and lays it out.
func (c Chart) Figure() (*Figure, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c = c.withDefaults()

	p := plot.New()
	p.Title.Text = c.Title
	p.Y.Label.Text = c.YLabel
	p.Legend.Top = true

	fig := &Figure{Plot: p, chart: c}
	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymin, ymax := 0.0, 0.0
	for k, bars := range c.Layout() {
		series := c.Series[k]
		b := &Bars{Bars: bars, Color: series.Color}
		labels, err := annotations(bars)
		if err != nil {
			return nil, fmt.Errorf("chart: annotate %q: %w", series.Name, err)
		}
		p.Add(b, labels)
		p.Legend.Add(series.Name, b)
		fig.Bars = append(fig.Bars, b)
		fig.Labels = append(fig.Labels, labels)

		x0, x1, y0, y1 := b.DataRange()
		xmin, xmax = math.Min(xmin, x0), math.Max(xmax, x1)
		ymin, ymax = math.Min(ymin, y0), math.Max(ymax, y1)
	}

	fig.Ticks = make([]plot.Tick, len(c.Labels))
	for i, label := range c.Labels {
		fig.Ticks[i] = plot.Tick{Value: float64(i), Label: label}
	}
	p.X.Tick.Marker = plot.ConstantTicks(fig.Ticks)

	margin := c.BarWidth / 2
	p.X.Min, p.X.Max = xmin-margin, xmax+margin
	if ymax == ymin {
		ymax = ymin + 1
	}
	headroom := (ymax - ymin) * 0.05
	p.Y.Min = ymin
	if ymin < 0 {
		p.Y.Min = ymin - headroom
	}
	p.Y.Max = ymax + headroom
	return fig, nil
}

func annotations(bars []Bar) (*plotter.Labels, error) {
	xys := make(plotter.XYs, len(bars))
	texts := make([]string, len(bars))
	for i, b := range bars {
		xys[i].X = b.Center
		xys[i].Y = b.Value
		texts[i] = b.Annotation
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YBottom
	}
	labels.Offset = vg.Point{Y: annotationOffset}
	return labels, nil
}

// Encode draws the figure onto a canvas of the requested format and writes
// the encoded image to w.
func (f *Figure) Encode(w io.Writer, format Format) error {
	c := f.chart
	switch format {
	case FormatPNG:
		img := vgimg.NewWith(vgimg.UseWH(c.Width, c.Height), vgimg.UseDPI(c.DPI))
		f.Plot.Draw(pad(draw.New(img), c.Padding))
		if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
			return fmt.Errorf("chart: encode png: %w", err)
		}
	case FormatSVG:
		svg := vgsvg.New(c.Width, c.Height)
		f.Plot.Draw(pad(draw.New(svg), c.Padding))
		if _, err := svg.WriteTo(w); err != nil {
			return fmt.Errorf("chart: encode svg: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return nil
}

func pad(c draw.Canvas, by vg.Length) draw.Canvas {
	return draw.Crop(c, by, -by, by, -by)
}

// Render lays the chart out and encodes it to w.
func (c Chart) Render(w io.Writer, format Format) error {
	fig, err := c.Figure()
	if err != nil {
		return err
	}
	return fig.Encode(w, format)
}

// Save writes the chart into dir once per file name, picking the encoding
// from each extension. It returns the written paths.
func (c Chart) Save(dir string, names ...string) ([]string, error) {
	fig, err := c.Figure()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		format, err := FormatFor(name)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, name)
		if err := writeFile(path, fig, format); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, fig *Figure, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("chart: create %s: %w", path, err)
	}
	if err := fig.Encode(f, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("chart: close %s: %w", path, err)
	}
	return nil
}

// SaveRulesetInit renders the ruleset initialization chart to test.png and
// test.svg inside dir.
func SaveRulesetInit(dir string) ([]string, error) {
	return RulesetInit().Save(dir, PNGFile, SVGFile)
}
