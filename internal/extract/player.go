package extract

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/draftlens/draftlens/internal/colormatch"
	"github.com/draftlens/draftlens/internal/errors"
	"github.com/draftlens/draftlens/internal/layout"
)

// PlayerLabels carries the OCR-ready buffers for one player panel. Nil
// buffers mean the corresponding text was not isolatable this pass.
type PlayerLabels struct {
	// HeroImage is the cleaned hero-name strip, ready for OCR.
	HeroImage []byte
	// HeroLocked is true when the hero name sat on the locked-pick
	// background, meaning the pick is confirmed in the game UI.
	HeroLocked bool

	// NameImage is the cleaned player-name strip, ready for OCR.
	NameImage []byte
	// NameFinal marks a read taken while the team was inactive. The active
	// team's name plates carry a highlight overlay that degrades OCR, so
	// only inactive-time reads are trusted as final.
	NameFinal bool

	// Portrait is the raw player panel, retained for portrait learning once
	// the pick is confirmed.
	Portrait *image.NRGBA
}

// PlayerLabels extracts the hero-name and player-name text for one player
// slot. active says whether this player's team currently holds the timer;
// needHero/needName skip work for fields already settled.
func (e *Extractor) PlayerLabels(team layout.TeamColor, index int, active, needHero, needName bool) (PlayerLabels, error) {
	geo := e.off.Team(team)
	panel := e.crop(geo.Players[index], e.off.PlayerSize)

	// The name plate is drawn slanted. Crop it, upscale for OCR accuracy,
	// then rotate flat; the sub-region offsets are expressed in this
	// upscaled de-rotated space.
	strip := imaging.Crop(panel, image.Rect(geo.Name.X, geo.Name.Y,
		geo.Name.X+e.off.NameSize.X, geo.Name.Y+e.off.NameSize.Y))
	if strip.Rect.Dx() == 0 || strip.Rect.Dy() == 0 {
		return PlayerLabels{}, errors.Newf(errors.CodeRegionNotFound,
			"%s player %d name strip out of frame", team, index)
	}
	strip = imaging.Resize(strip, strip.Rect.Dx()*NameUpscale, strip.Rect.Dy()*NameUpscale, imaging.Linear)
	strip = imaging.Rotate(strip, geo.Name.Angle, color.NRGBA{A: 255})

	out := PlayerLabels{Portrait: panel}
	rules := e.tpl.Colors.Team(team)

	if needHero {
		heroRegion := imaging.Crop(strip, image.Rect(geo.HeroName.X, geo.HeroName.Y,
			geo.HeroName.X+e.off.HeroNameSize.X, geo.HeroName.Y+e.off.HeroNameSize.Y))
		img, locked, err := e.heroText(team, heroRegion, rules, active)
		if err != nil {
			return PlayerLabels{}, err
		}
		out.HeroImage = img
		out.HeroLocked = locked
	}

	if needName {
		nameRegion := imaging.Crop(strip, image.Rect(geo.PlayerName.X, geo.PlayerName.Y,
			geo.PlayerName.X+e.off.PlayerNameSize.X, geo.PlayerName.Y+e.off.PlayerNameSize.Y))
		img, err := e.playerNameText(team, nameRegion, rules, active)
		if err != nil {
			return PlayerLabels{}, err
		}
		out.NameImage = img
		out.NameFinal = img != nil && !active
	}
	return out, nil
}

// heroText isolates the hero-name text. A locked pick sits on a distinct
// background and gets the high-contrast locked rule; before the lock only
// the blue side's in-progress text is visible at all, the game hides red's.
func (e *Extractor) heroText(team layout.TeamColor, region *image.NRGBA, rules *layout.TeamRules, active bool) ([]byte, bool, error) {
	lockedRule := rules.LockedBackground
	if active {
		lockedRule = rules.LockedBackgroundActive
	}

	if colormatch.RegionUniform(region, lockedRule, colormatch.DefaultUniformTolerance) {
		var original *image.NRGBA
		if e.debug != nil {
			original = imaging.Clone(region)
		}
		trimmed, ok := colormatch.TrimAndBinarize(region, rules.HeroNameLocked, black, white)
		if !ok {
			return nil, false, nil
		}
		e.dump("heroNameLocked", original, trimmed)
		img, err := encodePNG(trimmed)
		return img, true, err
	}

	if team != layout.TeamBlue {
		return nil, false, nil
	}
	rule := e.tpl.Colors.HeroNamePrepick
	ruleName := "heroNamePrepick"
	if active {
		rule = e.tpl.Colors.HeroNamePicking
		ruleName = "heroNamePicking"
	}
	var original *image.NRGBA
	if e.debug != nil {
		original = imaging.Clone(region)
	}
	trimmed, ok := colormatch.TrimAndBinarize(region, rule, white, black)
	if !ok {
		return nil, false, nil
	}
	e.dump(ruleName, original, trimmed)
	img, err := encodePNG(imaging.Invert(trimmed))
	return img, false, err
}

// playerNameText isolates the player-name text, suppressing the highlight
// overlay colors via the auxiliary boost negative set.
func (e *Extractor) playerNameText(team layout.TeamColor, region *image.NRGBA, rules *layout.TeamRules, active bool) ([]byte, error) {
	rule := rules.PlayerName
	if active {
		rule = rules.PlayerNameActive
	}
	rule = rule.WithNegatives(e.tpl.Colors.Boost)

	var original *image.NRGBA
	if e.debug != nil {
		original = imaging.Clone(region)
	}
	trimmed, ok := colormatch.TrimAndBinarize(region, rule, white, black)
	if !ok {
		return nil, nil
	}
	e.dump("playerName", original, trimmed)
	return encodePNG(imaging.Invert(trimmed))
}
