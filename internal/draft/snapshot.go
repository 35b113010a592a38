package draft

import (
	"bytes"
	"time"

	"github.com/disintegration/imaging"

	"github.com/draftlens/draftlens/internal/layout"
)

// TeamSnapshot is an immutable copy of one team's visible state.
type TeamSnapshot struct {
	Color      layout.TeamColor           `json:"color"`
	Bans       [layout.BanSlots]Ban       `json:"bans"`
	BansLocked int                        `json:"bansLocked"`
	Players    [layout.PlayerSlots]Player `json:"players"`
}

// Snapshot is the full externally visible draft state.
type Snapshot struct {
	Map   string       `json:"map"`
	State State        `json:"state"`
	Blue  TeamSnapshot `json:"blue"`
	Red   TeamSnapshot `json:"red"`
}

// Snapshot copies the current state for external consumers.
func (d *Detector) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Snapshot{
		Map:   d.mapName,
		State: d.state,
		Blue:  snapshotTeam(d.blue),
		Red:   snapshotTeam(d.red),
	}
}

func snapshotTeam(t *Team) TeamSnapshot {
	s := TeamSnapshot{Color: t.Color, Bans: t.Bans, BansLocked: t.BansLocked}
	for i, p := range t.Players {
		cp := *p
		cp.portrait = nil
		s.Players[i] = cp
	}
	return s
}

// MapName returns the currently tracked map, empty when no draft is tracked.
func (d *Detector) MapName() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mapName
}

// State returns the detector's current pass state.
func (d *Detector) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Tracking reports whether a draft is currently being followed; the
// scheduler tightens its cadence while this is true.
func (d *Detector) Tracking() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mapName != ""
}

// PendingBan returns the retained crop of an unclassified ban slot as PNG,
// for presenting a correction affordance.
func (d *Detector) PendingBan(team layout.TeamColor, slot int) ([]byte, bool) {
	if slot < 0 || slot >= layout.BanSlots {
		return nil, false
	}
	d.mu.RLock()
	crop := d.team(team).pendingBans[slot]
	d.mu.RUnlock()
	if crop == nil {
		return nil, false
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, crop, imaging.PNG); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

// Clear resets the detector to Idle, discarding all draft state. Used when
// an external signal marks the draft boundary.
func (d *Detector) Clear() {
	d.mu.Lock()
	d.mapName = ""
	d.mapSeenAt = time.Time{}
	d.state = StateIdle
	d.blue = newTeam(layout.TeamBlue)
	d.red = newTeam(layout.TeamRed)
	d.mu.Unlock()
	d.emit(Event{Kind: EventMapChanged, Map: ""})
}
