// Package draft tracks the state of one draft session across detection
// passes: map, timer, per-team bans and players, and what is already settled
// and no longer worth re-detecting.
package draft

import (
	"image"

	"github.com/draftlens/draftlens/internal/layout"
)

// Ban is one of a team's three ban slots. The zero value means the slot is
// still empty in the game UI.
type Ban struct {
	// HeroID is set once the slot's portrait was classified or corrected.
	HeroID string `json:"heroId,omitempty"`
	// Unknown marks a slot showing a portrait no reference matched; the raw
	// crop is retained internally until a correction names it.
	Unknown bool `json:"unknown,omitempty"`
}

// Filled reports whether the slot shows a confidently classified hero.
func (b Ban) Filled() bool { return b.HeroID != "" }

// Player is one draft slot on a team.
type Player struct {
	Team layout.TeamColor `json:"team"`
	Slot int              `json:"slot"`

	Name      string `json:"name"`
	NameFinal bool   `json:"nameFinal"`

	// Hero is the canonical display name of the picked hero.
	Hero   string `json:"hero,omitempty"`
	Locked bool   `json:"locked"`
	// DetectionError flags a locked pick whose recognized text validates
	// against no known hero; it keeps being retried until corrected.
	DetectionError bool `json:"detectionError"`

	// lastHeroText is the raw recognized text behind a detection error,
	// used to learn a roster correction when the user fixes it.
	lastHeroText string
	// portrait is the most recent raw panel crop, for portrait learning.
	portrait *image.NRGBA
}

// needHero reports whether the hero field still needs detection work.
func (p *Player) needHero() bool {
	return !p.Locked || p.DetectionError
}

// Team is one draft side. Created on session start, mutated in place across
// passes, discarded on map change.
type Team struct {
	Color layout.TeamColor     `json:"color"`
	Bans  [layout.BanSlots]Ban `json:"bans"`
	// BansLocked counts leading ban slots that are known stable; slots
	// below it are never re-examined this session.
	BansLocked int `json:"bansLocked"`

	Players [layout.PlayerSlots]*Player `json:"players"`

	pendingBans [layout.BanSlots]*image.NRGBA
}

func newTeam(color layout.TeamColor) *Team {
	t := &Team{Color: color}
	for i := range t.Players {
		t.Players[i] = &Player{Team: color, Slot: i}
	}
	return t
}
