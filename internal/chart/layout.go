package chart

import "strconv"

// Bar is the geometry of one rendered bar, in data units.
type Bar struct {
	Series int
	Group  int
	Center float64
	Left   float64
	Right  float64
	Value  float64
	// Annotation is the text drawn above the bar.
	Annotation string
}

// Offset returns the distance between the centre of group and the centre of
// bar k out of n bars of the given width. Two bars sit at -width/2 and
// +width/2.
func Offset(k, n int, width float64) float64 {
	return (float64(k) - float64(n-1)/2) * width
}

// Annotate formats a bar value the way it is printed above the bar: the
// shortest decimal representation, without a trailing ".0".
func Annotate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Layout returns the bars of every series, series-major. It does not
// validate the chart.
func (c Chart) Layout() [][]Bar {
	c = c.withDefaults()
	n := len(c.Series)
	out := make([][]Bar, n)
	for k, s := range c.Series {
		off := Offset(k, n, c.BarWidth)
		bars := make([]Bar, len(s.Values))
		for i, v := range s.Values {
			center := float64(i) + off
			bars[i] = Bar{
				Series:     k,
				Group:      i,
				Center:     center,
				Left:       center - c.BarWidth/2,
				Right:      center + c.BarWidth/2,
				Value:      v,
				Annotation: Annotate(v),
			}
		}
		out[k] = bars
	}
	return out
}

// Groups returns the number of bar groups, one per label.
func (c Chart) Groups() int {
	return len(c.Labels)
}
