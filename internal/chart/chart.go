// Package chart draws grouped bar charts with a value annotation above every
// bar and encodes them as PNG and SVG.
//
// A Chart is a plain value: labels along the x axis, one Series per bar
// colour, and the bar width in data units. Group i is centred on x = i and the
// bars of a group are spread around that centre by Offset.
package chart

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot/vg"
)

var (
	// ErrNoLabels indicates a chart without any x-axis labels.
	ErrNoLabels = errors.New("chart: no labels")
	// ErrNoSeries indicates a chart without any data series.
	ErrNoSeries = errors.New("chart: no series")
	// ErrSeriesLength indicates a series whose length differs from the labels.
	ErrSeriesLength = errors.New("chart: series length does not match labels")
)

const (
	// DefaultBarWidth is the width of a single bar in data units.
	DefaultBarWidth = 0.35
	// DefaultWidth and DefaultHeight give a 6.4in x 4.8in figure.
	DefaultWidth  = 6.4 * vg.Inch
	DefaultHeight = 4.8 * vg.Inch
	// DefaultPadding keeps three 10pt font heights between the figure edge
	// and the plot. vg lengths are in points.
	DefaultPadding vg.Length = 3 * 10
	// DefaultDPI is the raster resolution used for PNG output.
	DefaultDPI = 100
)

// Series is one set of bars sharing a colour and a legend entry.
type Series struct {
	Name   string
	Values []float64
	Color  color.Color
}

// Chart describes a grouped bar chart.
type Chart struct {
	Title    string
	YLabel   string
	Labels   []string
	Series   []Series
	BarWidth float64

	Width   vg.Length
	Height  vg.Length
	Padding vg.Length
	DPI     int
}

// Validate reports whether every series has one value per label.
func (c Chart) Validate() error {
	if len(c.Labels) == 0 {
		return ErrNoLabels
	}
	if len(c.Series) == 0 {
		return ErrNoSeries
	}
	for _, s := range c.Series {
		if len(s.Values) != len(c.Labels) {
			return fmt.Errorf("%w: %q has %d values for %d labels", ErrSeriesLength, s.Name, len(s.Values), len(c.Labels))
		}
	}
	return nil
}

// withDefaults fills zero-valued geometry with the package defaults.
func (c Chart) withDefaults() Chart {
	if c.BarWidth <= 0 {
		c.BarWidth = DefaultBarWidth
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.Padding <= 0 {
		c.Padding = DefaultPadding
	}
	if c.DPI <= 0 {
		c.DPI = DefaultDPI
	}
	series := make([]Series, len(c.Series))
	copy(series, c.Series)
	c.Series = series
	for i := range c.Series {
		if c.Series[i].Color == nil {
			c.Series[i].Color = Palette[i%len(Palette)]
		}
	}
	return c
}
