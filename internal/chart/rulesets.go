package chart

import "image/color"

// Palette holds the default series colours (blue, orange, green, red).
var Palette = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
}

// Output file names written by SaveRulesetInit.
const (
	PNGFile = "test.png"
	SVGFile = "test.svg"
)

// RulesetInit is the average initialization time, in milliseconds, of each
// ruleset loading strategy in Chrome and Firefox.
func RulesetInit() Chart {
	return Chart{
		Title:  "Average initialization time for rulesets",
		YLabel: "Initialization time (milliseconds)",
		Labels: []string{"HTTPS E. (WASM)", "HTTPS E. (JS)", "Index"},
		Series: []Series{
			{Name: "Chrome", Values: []float64{1500, 275, 12}},
			{Name: "Firefox", Values: []float64{540, 305, 45}},
		},
		BarWidth: DefaultBarWidth,
	}
}
