package layout

import "github.com/draftlens/draftlens/internal/colormatch"

func rule(pos ...colormatch.RuleColor) colormatch.Rule {
	return colormatch.Rule{Positive: pos}
}

func rc(r, g, b uint8, tolLum, tolHue float64) colormatch.RuleColor {
	return colormatch.RuleColor{
		Color:        colormatch.Color{R: r, G: g, B: b},
		ToleranceLum: tolLum,
		ToleranceHue: tolHue,
	}
}

// Default returns the built-in template for the current game UI revision at
// a 1920x1080 reference resolution. The color tolerances were tuned against
// real captures; changing them is a behavioral regression risk.
func Default() *Template {
	return &Template{
		ScreenSize: Point{X: 1920, Y: 1080},

		MapPos:  Point{X: 687, Y: 22},
		MapSize: Point{X: 546, Y: 60},

		TimerPos:  Point{X: 872, Y: 105},
		TimerSize: Point{X: 176, Y: 80},

		BanSize:      Point{X: 76, Y: 86},
		BanCheckSize: Point{X: 32, Y: 32},

		PlayerSize: Point{X: 380, Y: 180},
		NameSize:   Point{X: 330, Y: 57},

		HeroNameSize:   Point{X: 720, Y: 100},
		PlayerNameSize: Point{X: 560, Y: 100},

		Blue: TeamLayout{
			Players: [PlayerSlots]Point{
				{X: 29, Y: 221}, {X: 29, Y: 386}, {X: 29, Y: 551}, {X: 29, Y: 716}, {X: 29, Y: 881},
			},
			Bans:       [BanSlots]Point{{X: 371, Y: 70}, {X: 457, Y: 70}, {X: 543, Y: 70}},
			Name:       Anchor{X: 36, Y: 86, Angle: -26.2},
			HeroName:   Point{X: 60, Y: 150},
			PlayerName: Point{X: 80, Y: 40},
			BanCheck:   Point{X: 8, Y: 24},
		},
		Red: TeamLayout{
			Players: [PlayerSlots]Point{
				{X: 1511, Y: 221}, {X: 1511, Y: 386}, {X: 1511, Y: 551}, {X: 1511, Y: 716}, {X: 1511, Y: 881},
			},
			Bans:       [BanSlots]Point{{X: 1301, Y: 70}, {X: 1387, Y: 70}, {X: 1473, Y: 70}},
			Name:       Anchor{X: 14, Y: 86, Angle: 26.2},
			HeroName:   Point{X: 60, Y: 150},
			PlayerName: Point{X: 80, Y: 40},
			BanCheck:   Point{X: 136, Y: 24},
		},

		PickingText: "PICKING",

		Colors: Colors{
			MapName: rule(
				rc(190, 220, 246, 60, 40),
				rc(255, 255, 255, 80, 180),
			),
			BanBackground: rule(
				rc(14, 18, 28, 12, 40),
				rc(26, 31, 44, 12, 40),
			),
			TimerBlue: rule(rc(64, 160, 255, 25, 15)),
			TimerRed:  rule(rc(230, 60, 50, 25, 15)),
			TimerBan:  rule(rc(190, 60, 220, 30, 16)),

			HeroNamePicking: rule(rc(160, 200, 255, 45, 30)),
			HeroNamePrepick: rule(rc(120, 150, 200, 50, 40)),

			Boost: []colormatch.RuleColor{
				rc(255, 170, 60, 40, 25),
				rc(255, 210, 120, 40, 25),
			},

			Blue: TeamRules{
				LockedBackground:       rule(rc(30, 66, 116, 20, 30)),
				LockedBackgroundActive: rule(rc(42, 92, 160, 20, 30)),
				HeroNameLocked:         rule(rc(235, 239, 243, 50, 180)),
				PlayerName:             rule(rc(170, 188, 210, 55, 40)),
				PlayerNameActive:       rule(rc(210, 225, 240, 45, 40)),
			},
			Red: TeamRules{
				LockedBackground:       rule(rc(116, 34, 30, 20, 30)),
				LockedBackgroundActive: rule(rc(160, 48, 42, 20, 30)),
				HeroNameLocked:         rule(rc(243, 237, 235, 50, 180)),
				PlayerName:             rule(rc(210, 188, 184, 55, 40)),
				PlayerNameActive:       rule(rc(240, 220, 214, 45, 40)),
			},
		},
	}
}
