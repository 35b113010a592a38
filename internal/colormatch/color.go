// Package colormatch provides pure pixel-color analysis: perceptual distance,
// rule-based match scoring, region classification and text trimming. Exact
// color equality is useless on anti-aliased, compressed captures, so all
// comparisons work on a dual luminance/hue tolerance.
package colormatch

import "math"

// Color is an opaque RGB pixel value.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hue returns the color's hue in degrees [0,360). Greyscale pixels, where
// max equals min, have no hue and report 0.
func Hue(c Color) float64 {
	lo := math.Min(float64(c.R), math.Min(float64(c.G), float64(c.B)))
	hi := math.Max(float64(c.R), math.Max(float64(c.G), float64(c.B)))
	if lo == hi {
		return 0
	}
	var hue float64
	switch hi {
	case float64(c.R):
		hue = (float64(c.G) - float64(c.B)) / (hi - lo)
	case float64(c.G):
		hue = 2 + (float64(c.B)-float64(c.R))/(hi-lo)
	default:
		hue = 4 + (float64(c.R)-float64(c.G))/(hi-lo)
	}
	hue *= 60
	if hue < 0 {
		hue += 360
	}
	return hue
}

// LumDiff returns the mean absolute channel difference between two colors.
func LumDiff(a, b Color) float64 {
	return (math.Abs(float64(a.R)-float64(b.R)) +
		math.Abs(float64(a.G)-float64(b.G)) +
		math.Abs(float64(a.B)-float64(b.B))) / 3
}

// HueDiff returns the hue distance between two colors folded into [0,180].
func HueDiff(a, b Color) float64 {
	diff := math.Abs(Hue(a) - Hue(b))
	if diff > 180 {
		diff -= 180
	}
	return math.Abs(diff)
}

// Distance returns both components of the perceptual color distance.
func Distance(a, b Color) (lumDiff, hueDiff float64) {
	return LumDiff(a, b), HueDiff(a, b)
}

// Compare scores the similarity of two pixels on a 1..255 scale, weighting
// hue closeness heavier than luminance. Used for portrait image matching.
func Compare(a, b Color) int {
	lumDiff := LumDiff(a, b)
	hueDiff := HueDiff(a, b)
	return int(math.Round(1 + (128-lumDiff)*63/128 + math.Max(0, 90-hueDiff)*191/90))
}

// Mix blends two colors, ratio being the share of a.
func Mix(a, b Color, ratio float64) Color {
	inv := 1 - ratio
	return Color{
		R: uint8(math.Round(float64(a.R)*ratio + float64(b.R)*inv)),
		G: uint8(math.Round(float64(a.G)*ratio + float64(b.G)*inv)),
		B: uint8(math.Round(float64(a.B)*ratio + float64(b.B)*inv)),
	}
}
