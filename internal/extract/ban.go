package extract

import (
	"image"

	"github.com/draftlens/draftlens/internal/colormatch"
	"github.com/draftlens/draftlens/internal/layout"
)

// Classifier matches a ban crop against known hero portraits.
type Classifier interface {
	Classify(candidate image.Image) (heroID string, score float64, ok bool)
}

// BanResult is the outcome for one ban slot.
type BanResult struct {
	// Empty means the slot shows only background: no ban yet.
	Empty bool
	// HeroID is set when the classifier accepted a match.
	HeroID string
	Score  float64
	// Pending holds the raw crop when the slot shows a portrait no
	// reference matched; kept for manual correction.
	Pending *image.NRGBA
}

// BanSlot reads one ban slot. An all-background region means no ban; any
// other content is classified against the reference bank.
func (e *Extractor) BanSlot(team layout.TeamColor, index int, classify Classifier) BanResult {
	region := e.crop(e.off.Team(team).Bans[index], e.off.BanSize)

	if colormatch.RegionUniform(region, e.tpl.Colors.BanBackground, colormatch.DefaultUniformTolerance) {
		return BanResult{Empty: true}
	}

	heroID, score, ok := classify.Classify(region)
	if !ok {
		e.dump("banSlotPending", region, nil)
		return BanResult{Score: score, Pending: region}
	}
	return BanResult{HeroID: heroID, Score: score}
}
