package chart

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Bars is a plot.Plotter drawing one series of bars at explicit data-space
// positions. plotter.BarChart offsets bars in canvas units; grouped bars need
// their width and offset in data units so they stay aligned with the ticks.
type Bars struct {
	Bars  []Bar
	Color color.Color
}

var (
	_ plot.Plotter     = (*Bars)(nil)
	_ plot.DataRanger  = (*Bars)(nil)
	_ plot.Thumbnailer = (*Bars)(nil)
)

// Plot implements plot.Plotter.
func (b *Bars) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, bar := range b.Bars {
		x0, x1 := trX(bar.Left), trX(bar.Right)
		y0, y1 := trY(0), trY(bar.Value)
		pts := []vg.Point{{X: x0, Y: y0}, {X: x0, Y: y1}, {X: x1, Y: y1}, {X: x1, Y: y0}}
		c.FillPolygon(b.Color, c.ClipPolygonY(pts))
	}
}

// DataRange implements plot.DataRanger. The y range always includes zero.
func (b *Bars) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = math.Inf(1), math.Inf(-1)
	for _, bar := range b.Bars {
		xmin = math.Min(xmin, bar.Left)
		xmax = math.Max(xmax, bar.Right)
		ymin = math.Min(ymin, bar.Value)
		ymax = math.Max(ymax, bar.Value)
	}
	if len(b.Bars) == 0 {
		xmin, xmax = 0, 0
	}
	return xmin, xmax, ymin, ymax
}

// Thumbnail implements plot.Thumbnailer so the series shows up in the legend.
func (b *Bars) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(b.Color, c.ClipPolygonY(pts))
}
