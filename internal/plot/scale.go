package plot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type rgb struct{ r, g, b float64 }

// Gradient anchors sampled from the matplotlib colour maps the tags refer
// to; positions are evenly spaced.
var gradients = map[string][]rgb{
	"viridis": {
		{68, 1, 84}, {59, 82, 139}, {33, 145, 140}, {94, 201, 98}, {253, 231, 37},
	},
	"plasma": {
		{13, 8, 135}, {126, 3, 168}, {204, 71, 120}, {248, 149, 64}, {240, 249, 33},
	},
	"magma": {
		{0, 0, 4}, {81, 18, 124}, {183, 55, 121}, {252, 137, 97}, {252, 253, 191},
	},
}

// FillColor maps a score into the profile's fill scale. A "mono:#rrggbb"
// scale ignores the score entirely.
func FillColor(scale string, score, min, max float64) string {
	scale = strings.ToLower(strings.TrimSpace(scale))
	if hex, ok := strings.CutPrefix(scale, "mono:"); ok {
		return hex
	}
	anchors, ok := gradients[scale]
	if !ok {
		anchors = gradients["viridis"]
	}
	t := 0.0
	if max > min {
		t = (score - min) / (max - min)
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	pos := t * float64(len(anchors)-1)
	i := int(pos)
	if i >= len(anchors)-1 {
		return hexColor(anchors[len(anchors)-1])
	}
	f := pos - float64(i)
	a, b := anchors[i], anchors[i+1]
	return hexColor(rgb{
		r: a.r + (b.r-a.r)*f,
		g: a.g + (b.g-a.g)*f,
		b: a.b + (b.b-a.b)*f,
	})
}

func hexColor(c rgb) string {
	return fmt.Sprintf("#%02x%02x%02x", int(c.r+0.5), int(c.g+0.5), int(c.b+0.5))
}

// FormatScore renders a score for axis ticks and tooltips without float
// noise ("3.10", never "3.0999999999999996").
func FormatScore(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

// FormatMb renders a base-pair coordinate in megabases.
func FormatMb(bp int64) string {
	return decimal.NewFromInt(bp).Div(decimal.NewFromInt(1_000_000)).Round(2).String()
}
