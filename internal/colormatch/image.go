package colormatch

import "image"

// DefaultUniformTolerance is the boundary-sample tolerance used when callers
// have no better value. Hand-tuned against real captures; treat changes as a
// behavioral regression risk.
const DefaultUniformTolerance = 2

// TrimPadding is the horizontal margin, in pixels, kept around the detected
// text span when trimming.
const TrimPadding = 8

// At reads the pixel at (x, y) of an NRGBA image, ignoring alpha.
func At(img *image.NRGBA, x, y int) Color {
	i := img.PixOffset(img.Rect.Min.X+x, img.Rect.Min.Y+y)
	return Color{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}
}

func set(img *image.NRGBA, x, y int, c Color) {
	i := img.PixOffset(img.Rect.Min.X+x, img.Rect.Min.Y+y)
	img.Pix[i] = c.R
	img.Pix[i+1] = c.G
	img.Pix[i+2] = c.B
	img.Pix[i+3] = 0xFF
}

// RegionUniform samples nine fixed points (corners, edge midpoints, center)
// and reports whether at least 9-tolerance of them score positively against
// the rule. Corner and edge samples sit one pixel inside the border: regions
// are often cut from resized rasters whose outermost row and column hold
// blended seam pixels that belong to neither side. Classifies a region as
// uniform background without reading every pixel.
func RegionUniform(img *image.NRGBA, r Rule, tolerance int) bool {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	if w == 0 || h == 0 {
		return false
	}
	left, right := 0, w-1
	if w > 2 {
		left, right = 1, w-2
	}
	top, bottom := 0, h-1
	if h > 2 {
		top, bottom = 1, h-2
	}
	points := [9][2]int{
		{left, top}, {w / 2, top}, {right, top},
		{left, h / 2}, {w / 2, h / 2}, {right, h / 2},
		{left, bottom}, {w / 2, bottom}, {right, bottom},
	}
	matches := 0
	for _, p := range points {
		if Score(At(img, p[0], p[1]), r) > 0 {
			matches++
		}
	}
	return matches >= 9-tolerance
}

// FindAny scans the image and reports whether any pixel matches the rule.
// Used for coarse state signals like timer-strip coloring.
func FindAny(img *image.NRGBA, r Rule) bool {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if Score(At(img, x, y), r) > 0 {
				return true
			}
		}
	}
	return false
}

// Similarity scores how alike two equally-sized images are by averaging the
// per-pixel Compare value over a grid at the given stride. The result is on
// a 0..~255 scale; identical images score near the maximum.
func Similarity(a, b *image.NRGBA, stride int) float64 {
	if stride < 1 {
		stride = 1
	}
	w := a.Rect.Dx()
	h := a.Rect.Dy()
	if bw, bh := b.Rect.Dx(), b.Rect.Dy(); bw < w || bh < h {
		w = min(w, bw)
		h = min(h, bh)
	}
	count := (w / stride) * (h / stride)
	if count == 0 {
		return 0
	}
	score := 0.0
	for x := 0; x < w; x += stride {
		for y := 0; y < h; y += stride {
			score += float64(Compare(At(a, x, y), At(b, x, y))) / float64(count)
		}
	}
	return score
}

// TrimAndBinarize isolates rule-matching text in place. Every pixel is
// recolored: matches get a pos/neg blend proportional to match strength,
// everything else becomes neg. A column counts as text when it holds at
// least one positive pixel and no negative pixel. The image is then cropped
// to the tightest horizontal text span padded by TrimPadding and clamped to
// bounds. Returns nil and false when no text column exists.
func TrimAndBinarize(img *image.NRGBA, r Rule, pos, neg Color) (*image.NRGBA, bool) {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	textMin := w
	textMax := -1
	for x := 0; x < w; x++ {
		positive := false
		negative := false
		for y := 0; y < h; y++ {
			m := Score(At(img, x, y), r)
			if m > 0 {
				set(img, x, y, Mix(pos, neg, float64(m)/255))
				positive = true
			} else {
				set(img, x, y, neg)
			}
			if m < 0 {
				negative = true
			}
		}
		if positive && !negative {
			if x < textMin {
				textMin = x
			}
			textMax = x
		}
	}
	if textMax < textMin {
		return nil, false
	}
	start := max(0, textMin-TrimPadding)
	end := min(w, textMax+TrimPadding)
	if end <= start {
		return nil, false
	}
	return Crop(img, image.Rect(start, 0, end, h)), true
}

// Crop returns a copy of the given sub-region of img. The rectangle is
// relative to the image's own coordinate space starting at (0,0).
func Crop(img *image.NRGBA, r image.Rectangle) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			set(out, x, y, At(img, r.Min.X+x, r.Min.Y+y))
		}
	}
	return out
}
