// Package layout holds the static draft-screen layout template: rectangles,
// points and rotation angles expressed in a reference resolution, plus the
// named color-match rules for every semantic region. Templates are loaded
// once and never mutated; the resolver scales them to the capture resolution.
package layout

import (
	"github.com/draftlens/draftlens/internal/colormatch"
)

// TeamColor identifies one of the two draft sides.
type TeamColor string

const (
	TeamBlue TeamColor = "blue"
	TeamRed  TeamColor = "red"
)

// Other returns the opposing side.
func (t TeamColor) Other() TeamColor {
	if t == TeamBlue {
		return TeamRed
	}
	return TeamBlue
}

// Slot counts are fixed by the draft format.
const (
	PlayerSlots = 5
	BanSlots    = 3
)

// Point is a position or size in template coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Anchor is a position with a rotation angle in degrees. Angles pass through
// resolution scaling unchanged.
type Anchor struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Angle float64 `json:"angle"`
}

// TeamLayout is the per-team geometry.
type TeamLayout struct {
	Players [PlayerSlots]Point `json:"players"`
	Bans    [BanSlots]Point    `json:"bans"`

	// Name locates the slanted name strip inside a player panel.
	Name Anchor `json:"name"`

	// HeroName and PlayerName locate sub-regions inside the upscaled,
	// de-rotated name strip.
	HeroName   Point `json:"heroNameRotated"`
	PlayerName Point `json:"playerNameRotated"`

	// BanCheck locates this team's ban indicator inside the timer strip.
	BanCheck Point `json:"banCheck"`
}

// TeamRules are the color rules that vary per side and active-state.
type TeamRules struct {
	LockedBackground       colormatch.Rule `json:"lockedBackground"`
	LockedBackgroundActive colormatch.Rule `json:"lockedBackgroundActive"`
	HeroNameLocked         colormatch.Rule `json:"heroNameLocked"`
	PlayerName             colormatch.Rule `json:"playerName"`
	PlayerNameActive       colormatch.Rule `json:"playerNameActive"`
}

// Colors holds every named color-match rule of the template. Rules are keyed
// by semantic role, not by raw color, so a template revision for a new game
// UI only touches data.
type Colors struct {
	MapName       colormatch.Rule `json:"mapName"`
	BanBackground colormatch.Rule `json:"banBackground"`

	TimerBlue colormatch.Rule `json:"timerBlue"`
	TimerRed  colormatch.Rule `json:"timerRed"`
	TimerBan  colormatch.Rule `json:"timerBan"`

	HeroNamePicking colormatch.Rule `json:"heroNamePicking"`
	HeroNamePrepick colormatch.Rule `json:"heroNamePrepick"`

	// Boost is an auxiliary negative set compensating for the highlight
	// overlay the game draws over the active team's name plates.
	Boost []colormatch.RuleColor `json:"boost"`

	Blue TeamRules `json:"blue"`
	Red  TeamRules `json:"red"`
}

// Team returns the rules for one side.
func (c *Colors) Team(color TeamColor) *TeamRules {
	if color == TeamBlue {
		return &c.Blue
	}
	return &c.Red
}

// Template is one versioned draft-screen layout.
type Template struct {
	// ScreenSize is the reference resolution all geometry is expressed in.
	ScreenSize Point `json:"screenSizeBase"`

	MapPos  Point `json:"mapPos"`
	MapSize Point `json:"mapSize"`

	TimerPos  Point `json:"timerPos"`
	TimerSize Point `json:"timerSize"`

	BanSize      Point `json:"banSize"`
	BanCheckSize Point `json:"banCheckSize"`

	PlayerSize Point `json:"playerSize"`
	NameSize   Point `json:"nameSize"`

	HeroNameSize   Point `json:"heroNameSizeRotated"`
	PlayerNameSize Point `json:"playerNameSizeRotated"`

	Blue TeamLayout `json:"blue"`
	Red  TeamLayout `json:"red"`

	// PickingText is the localized placeholder the UI shows for a pick in
	// progress; a recognized value equal to it is discarded.
	PickingText string `json:"pickingText"`

	Colors Colors `json:"colors"`
}

// Team returns the geometry for one side.
func (t *Template) Team(color TeamColor) *TeamLayout {
	if color == TeamBlue {
		return &t.Blue
	}
	return &t.Red
}
