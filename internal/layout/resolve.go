package layout

import "math"

// Offsets is a Template's geometry scaled to one capture resolution. Owned
// by the draft detector for the lifetime of a session and recomputed only
// when the capture resolution changes.
type Offsets struct {
	Target Point

	MapPos  Point
	MapSize Point

	TimerPos  Point
	TimerSize Point

	BanSize      Point
	BanCheckSize Point

	PlayerSize Point
	NameSize   Point

	HeroNameSize   Point
	PlayerNameSize Point

	Blue TeamOffsets
	Red  TeamOffsets
}

// TeamOffsets is the per-team geometry at capture resolution.
type TeamOffsets struct {
	Players    [PlayerSlots]Point
	Bans       [BanSlots]Point
	Name       Anchor
	HeroName   Point
	PlayerName Point
	BanCheck   Point
}

// Team returns the resolved geometry for one side.
func (o *Offsets) Team(color TeamColor) *TeamOffsets {
	if color == TeamBlue {
		return &o.Blue
	}
	return &o.Red
}

// Resolve scales every point of the template from its reference resolution
// to the target resolution, independently per axis with round-to-nearest.
// Rotation angles pass through unscaled. Pure: same inputs, same outputs.
func Resolve(t *Template, target Point) *Offsets {
	base := t.ScreenSize
	o := &Offsets{
		Target:         target,
		MapPos:         scalePoint(t.MapPos, base, target),
		MapSize:        scalePoint(t.MapSize, base, target),
		TimerPos:       scalePoint(t.TimerPos, base, target),
		TimerSize:      scalePoint(t.TimerSize, base, target),
		BanSize:        scalePoint(t.BanSize, base, target),
		BanCheckSize:   scalePoint(t.BanCheckSize, base, target),
		PlayerSize:     scalePoint(t.PlayerSize, base, target),
		NameSize:       scalePoint(t.NameSize, base, target),
		HeroNameSize:   scalePoint(t.HeroNameSize, base, target),
		PlayerNameSize: scalePoint(t.PlayerNameSize, base, target),
	}
	o.Blue = scaleTeam(&t.Blue, base, target)
	o.Red = scaleTeam(&t.Red, base, target)
	return o
}

func scaleTeam(tl *TeamLayout, base, target Point) TeamOffsets {
	to := TeamOffsets{
		Name:       scaleAnchor(tl.Name, base, target),
		HeroName:   scalePoint(tl.HeroName, base, target),
		PlayerName: scalePoint(tl.PlayerName, base, target),
		BanCheck:   scalePoint(tl.BanCheck, base, target),
	}
	for i, p := range tl.Players {
		to.Players[i] = scalePoint(p, base, target)
	}
	for i, p := range tl.Bans {
		to.Bans[i] = scalePoint(p, base, target)
	}
	return to
}

func scalePoint(p, base, target Point) Point {
	return Point{
		X: int(math.Round(float64(p.X) / float64(base.X) * float64(target.X))),
		Y: int(math.Round(float64(p.Y) / float64(base.Y) * float64(target.Y))),
	}
}

func scaleAnchor(a Anchor, base, target Point) Anchor {
	p := scalePoint(Point{X: a.X, Y: a.Y}, base, target)
	return Anchor{X: p.X, Y: p.Y, Angle: a.Angle}
}
