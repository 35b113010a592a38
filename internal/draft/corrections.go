package draft

import (
	"log/slog"

	"github.com/draftlens/draftlens/internal/errors"
	"github.com/draftlens/draftlens/internal/layout"
)

// CorrectPlayerHero overwrites a player's hero with a user-supplied value,
// bypassing recognition confidence. The raw text that failed validation, if
// any, becomes a roster correction so the same misread resolves itself next
// time, and the retained portrait seeds the ban image bank.
func (d *Detector) CorrectPlayerHero(team layout.TeamColor, slot int, heroName string) error {
	if slot < 0 || slot >= layout.PlayerSlots {
		return errors.Newf(errors.CodeConfigInvalid, "player slot %d out of range", slot)
	}
	id, ok := d.roster.HeroID(heroName)
	if !ok {
		return errors.Newf(errors.CodeConfigInvalid, "unknown hero %q", heroName)
	}
	canonical, _ := d.roster.HeroName(id)

	d.mu.Lock()
	p := d.team(team).Players[slot]
	failedText := p.lastHeroText
	portrait := p.portrait
	p.Hero = canonical
	p.Locked = true
	p.DetectionError = false
	p.lastHeroText = ""
	d.mu.Unlock()

	if failedText != "" {
		if err := d.roster.AddCorrection(failedText, canonical); err != nil {
			slog.Warn("saving roster correction failed", "raw", failedText, "error", err)
		}
	}
	if portrait != nil {
		if err := d.bank.LearnPortrait(id, portrait); err != nil {
			slog.Debug("portrait learning skipped", "hero", id, "error", err)
		}
	}
	d.emit(Event{Kind: EventPlayerUpdated, Team: team, Slot: slot})
	return nil
}

// CorrectBan names the hero in an unclassified ban slot. The retained crop
// becomes that hero's reference image, replacing any weaker learned one.
func (d *Detector) CorrectBan(team layout.TeamColor, slot int, heroName string) error {
	if slot < 0 || slot >= layout.BanSlots {
		return errors.Newf(errors.CodeConfigInvalid, "ban slot %d out of range", slot)
	}
	id, ok := d.roster.HeroID(heroName)
	if !ok {
		return errors.Newf(errors.CodeConfigInvalid, "unknown hero %q", heroName)
	}

	d.mu.Lock()
	t := d.team(team)
	crop := t.pendingBans[slot]
	t.Bans[slot] = Ban{HeroID: id}
	t.pendingBans[slot] = nil
	d.mu.Unlock()

	if crop != nil {
		if err := d.bank.Store(id, crop); err != nil {
			slog.Warn("storing corrected ban reference failed", "hero", id, "error", err)
		}
	}
	d.emit(Event{Kind: EventBanUpdated, Team: team, Slot: slot})
	return nil
}
