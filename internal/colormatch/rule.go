package colormatch

import "math"

// RuleColor is one declared reference color with its match tolerances.
type RuleColor struct {
	Color        Color   `json:"color"`
	ToleranceLum float64 `json:"toleranceLum"`
	ToleranceHue float64 `json:"toleranceHue"`
}

// Rule is a named color-match rule: a pixel matches when it is within
// tolerance of any positive color and within tolerance of no negative color.
type Rule struct {
	Positive []RuleColor `json:"positive"`
	Negative []RuleColor `json:"negative"`
}

// WithNegatives returns a copy of the rule with extra negative colors
// appended. Used for auxiliary suppression sets like the name-highlight
// overlay compensation.
func (r Rule) WithNegatives(extra []RuleColor) Rule {
	if len(extra) == 0 {
		return r
	}
	neg := make([]RuleColor, 0, len(r.Negative)+len(extra))
	neg = append(neg, r.Negative...)
	neg = append(neg, extra...)
	return Rule{Positive: r.Positive, Negative: neg}
}

// Wildcard score when a rule declares no positive colors.
const wildcardScore = 255

// Score rates a pixel against a rule. Returns -1 when the pixel matches any
// negative color (forced non-match), otherwise the best positive score in
// 1..255, 0 when no positive color is within tolerance, or 255 when the rule
// declares no positive colors at all.
func Score(c Color, r Rule) int {
	best := 0
	if len(r.Positive) == 0 {
		best = wildcardScore
	}
	for _, rc := range r.Positive {
		if s := scoreOne(c, rc); s > best {
			best = s
		}
	}
	for _, rc := range r.Negative {
		if scoreOne(c, rc) > 0 {
			return -1
		}
	}
	return best
}

// scoreOne scores a pixel against a single reference color: 0 outside either
// tolerance, otherwise higher the closer the pixel, up to 255.
func scoreOne(c Color, rc RuleColor) int {
	lumDiff := LumDiff(c, rc.Color)
	hueDiff := HueDiff(c, rc.Color)
	if lumDiff > rc.ToleranceLum || hueDiff > rc.ToleranceHue {
		return 0
	}
	lumPart := 0.0
	if rc.ToleranceLum > 0 {
		lumPart = (rc.ToleranceLum - lumDiff) * 127 / rc.ToleranceLum
	}
	huePart := 0.0
	if rc.ToleranceHue > 0 {
		huePart = (rc.ToleranceHue - hueDiff) * 127 / rc.ToleranceHue
	}
	return int(math.Round(1 + lumPart + huePart))
}
