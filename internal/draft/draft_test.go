package draft

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/draftlens/draftlens/internal/bank"
	"github.com/draftlens/draftlens/internal/colormatch"
	"github.com/draftlens/draftlens/internal/gamedata"
	"github.com/draftlens/draftlens/internal/layout"
	"github.com/draftlens/draftlens/internal/ocr"
)

// Test palette; the template rules below match these colors exactly.
var (
	textWhite      = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	timerBlue      = color.NRGBA{B: 255, A: 255}
	timerBan       = color.NRGBA{R: 200, B: 200, A: 255}
	banBackground  = color.NRGBA{R: 20, G: 20, B: 30, A: 255}
	lockedBlueBG   = color.NRGBA{R: 30, G: 66, B: 116, A: 255}
	playerNameText = color.NRGBA{R: 170, G: 188, B: 210, A: 255}

	portraitA = color.NRGBA{R: 200, G: 50, B: 50, A: 255}
	portraitB = color.NRGBA{R: 50, G: 200, B: 50, A: 255}
	portraitC = color.NRGBA{R: 50, G: 50, B: 200, A: 255}
	portraitD = color.NRGBA{R: 200, G: 200, B: 50, A: 255}
	portraitX = color.NRGBA{R: 200, G: 50, B: 200, A: 255}
)

func rcOf(c color.NRGBA, tolLum, tolHue float64) colormatch.RuleColor {
	return colormatch.RuleColor{
		Color:        colormatch.Color{R: c.R, G: c.G, B: c.B},
		ToleranceLum: tolLum,
		ToleranceHue: tolHue,
	}
}

func ruleOf(rcs ...colormatch.RuleColor) colormatch.Rule {
	return colormatch.Rule{Positive: rcs}
}

// testTemplate describes a small synthetic draft screen at 200x250 with
// straight (angle 0) name strips. Player-name sub-regions are 16px high and
// hero-name sub-regions 20px high so the scripted engine can tell the
// resulting buffers apart.
func testTemplate() *layout.Template {
	rules := layout.TeamRules{
		LockedBackground:       ruleOf(rcOf(lockedBlueBG, 25, 40)),
		LockedBackgroundActive: ruleOf(rcOf(lockedBlueBG, 25, 40)),
		HeroNameLocked:         ruleOf(rcOf(textWhite, 60, 180)),
		PlayerName:             ruleOf(rcOf(playerNameText, 40, 60)),
		PlayerNameActive:       ruleOf(rcOf(playerNameText, 40, 60)),
	}
	return &layout.Template{
		ScreenSize:     layout.Point{X: 200, Y: 250},
		MapPos:         layout.Point{X: 10, Y: 10},
		MapSize:        layout.Point{X: 100, Y: 20},
		TimerPos:       layout.Point{X: 10, Y: 40},
		TimerSize:      layout.Point{X: 40, Y: 10},
		BanSize:        layout.Point{X: 10, Y: 10},
		BanCheckSize:   layout.Point{X: 4, Y: 4},
		PlayerSize:     layout.Point{X: 60, Y: 40},
		NameSize:       layout.Point{X: 40, Y: 10},
		HeroNameSize:   layout.Point{X: 160, Y: 20},
		PlayerNameSize: layout.Point{X: 160, Y: 16},
		Blue: layout.TeamLayout{
			Players: [layout.PlayerSlots]layout.Point{
				{X: 0, Y: 60}, {X: 65, Y: 60}, {X: 130, Y: 60}, {X: 0, Y: 105}, {X: 65, Y: 105},
			},
			Bans:       [layout.BanSlots]layout.Point{{X: 150, Y: 10}, {X: 162, Y: 10}, {X: 174, Y: 10}},
			Name:       layout.Anchor{X: 0, Y: 0, Angle: 0},
			HeroName:   layout.Point{X: 0, Y: 0},
			PlayerName: layout.Point{X: 0, Y: 20},
			BanCheck:   layout.Point{X: 0, Y: 0},
		},
		Red: layout.TeamLayout{
			Players: [layout.PlayerSlots]layout.Point{
				{X: 0, Y: 150}, {X: 65, Y: 150}, {X: 130, Y: 150}, {X: 0, Y: 190}, {X: 65, Y: 190},
			},
			Bans:       [layout.BanSlots]layout.Point{{X: 150, Y: 25}, {X: 162, Y: 25}, {X: 174, Y: 25}},
			Name:       layout.Anchor{X: 0, Y: 0, Angle: 0},
			HeroName:   layout.Point{X: 0, Y: 0},
			PlayerName: layout.Point{X: 0, Y: 20},
			BanCheck:   layout.Point{X: 20, Y: 0},
		},
		PickingText: "PICKING",
		Colors: layout.Colors{
			MapName:         ruleOf(rcOf(textWhite, 40, 180)),
			BanBackground:   ruleOf(rcOf(banBackground, 15, 180)),
			TimerBlue:       ruleOf(rcOf(timerBlue, 30, 20)),
			TimerRed:        ruleOf(rcOf(color.NRGBA{R: 255, A: 255}, 30, 20)),
			TimerBan:        ruleOf(rcOf(timerBan, 30, 20)),
			HeroNamePicking: ruleOf(rcOf(color.NRGBA{R: 160, G: 200, B: 255, A: 255}, 40, 30)),
			HeroNamePrepick: ruleOf(rcOf(color.NRGBA{R: 160, G: 200, B: 255, A: 255}, 40, 30)),
			Blue:            rules,
			Red:             rules,
		},
	}
}

func blankFrame() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 200, 250))
	fill(img, image.Rect(0, 0, 200, 250), color.NRGBA{A: 255})
	return img
}

func fill(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// paintMapBars draws the map label as separated white bars; the scripted
// engine recognizes the label by counting them.
func paintMapBars(f *image.NRGBA, runs int) {
	for k := 0; k < runs; k++ {
		x := 40 + 10*k
		fill(f, image.Rect(x, 12, x+4, 28), textWhite)
	}
}

// paintNameBars draws a player-name as runs separated 1px bars inside the
// name rows of the panel at (panelX, panelY).
func paintNameBars(f *image.NRGBA, panelX, panelY, runs int) {
	for k := 0; k < runs; k++ {
		x := panelX + 4 + 2*k
		fill(f, image.Rect(x, panelY+6, x+1, panelY+9), playerNameText)
	}
}

// paintLockedHero draws a locked-pick hero strip: locked background with
// runs separated white bars, clear of the uniformity sample columns.
func paintLockedHero(f *image.NRGBA, panelX, panelY, runs int) {
	fill(f, image.Rect(panelX, panelY, panelX+40, panelY+5), lockedBlueBG)
	for k := 0; k < runs; k++ {
		x := panelX + 4 + 4*k
		fill(f, image.Rect(x, panelY+1, x+2, panelY+4), textWhite)
	}
}

// scriptedEngine recognizes the synthetic buffers by shape: buffer height
// identifies the region kind, the count of separated dark column runs
// identifies the text.
type scriptedEngine struct{}

var heroByRuns = map[int]string{1: "Diablo", 2: "Jaina", 3: "Zzzgarbage"}

func (scriptedEngine) Recognize(_ context.Context, job ocr.Job) (ocr.Result, error) {
	img, err := png.Decode(bytes.NewReader(job.Image))
	if err != nil {
		return ocr.Result{}, err
	}
	runs := darkColumnRuns(img)
	switch img.Bounds().Dy() {
	case 40: // map label, 2x upscaled
		if runs == 2 {
			return ocr.Result{Text: "Braxis Holdout"}, nil
		}
		if runs == 3 {
			return ocr.Result{Text: "Cursed Hollow"}, nil
		}
		return ocr.Result{}, nil
	case 20: // hero name
		return ocr.Result{Text: heroByRuns[runs]}, nil
	case 16: // player name
		return ocr.Result{Text: fmt.Sprintf("P%d", runs)}, nil
	}
	return ocr.Result{}, nil
}

func (scriptedEngine) Close() error { return nil }

func darkColumnRuns(img image.Image) int {
	b := img.Bounds()
	runs := 0
	inRun := false
	for x := b.Min.X; x < b.Max.X; x++ {
		dark := false
		for y := b.Min.Y; y < b.Max.Y; y++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if (r+g+bl)/3>>8 < 100 {
				dark = true
				break
			}
		}
		if dark && !inRun {
			runs++
		}
		inRun = dark
	}
	return runs
}

type fixture struct {
	detector *Detector
	bank     *bank.Bank
	roster   *gamedata.Roster
	cluster  *ocr.Cluster
}

func newFixture(t *testing.T, engine ocr.Engine, opts func(*Options)) *fixture {
	t.Helper()
	cluster, err := ocr.New(2, 5*time.Second, func() (ocr.Engine, error) { return engine, nil })
	if err != nil {
		t.Fatalf("cluster: %v", err)
	}
	t.Cleanup(cluster.Close)

	b := bank.New(10, 10, nil)
	roster := gamedata.Default()
	o := Options{
		Template: testTemplate(),
		Roster:   roster,
		Bank:     b,
		Cluster:  cluster,
	}
	if opts != nil {
		opts(&o)
	}
	return &fixture{detector: New(o), bank: b, roster: roster, cluster: cluster}
}

func drainEvents(d *Detector) []Event {
	var out []Event
	for {
		select {
		case e := <-d.Events():
			out = append(out, e)
		default:
			return out
		}
	}
}

func countKind(events []Event, kind EventKind) int {
	n := 0
	for _, e := range events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// draftFrame paints the full end-to-end scene: map, blue-active timer, four
// seeded bans plus two empty slots, and all ten player names.
func draftFrame(f *fixture) *image.NRGBA {
	frame := blankFrame()
	paintMapBars(frame, 2)
	fill(frame, image.Rect(10, 40, 50, 50), timerBlue)

	f.bank.Learn("hero-a", solidBan(portraitA))
	f.bank.Learn("hero-b", solidBan(portraitB))
	f.bank.Learn("hero-c", solidBan(portraitC))
	f.bank.Learn("hero-d", solidBan(portraitD))

	fill(frame, image.Rect(150, 10, 160, 20), portraitA)
	fill(frame, image.Rect(162, 10, 172, 20), portraitB)
	fill(frame, image.Rect(174, 10, 184, 20), banBackground)
	fill(frame, image.Rect(150, 25, 160, 35), portraitC)
	fill(frame, image.Rect(162, 25, 172, 35), portraitD)
	fill(frame, image.Rect(174, 25, 184, 35), banBackground)

	tpl := testTemplate()
	for i, p := range tpl.Blue.Players {
		paintNameBars(frame, p.X, p.Y, 3+i)
	}
	for i, p := range tpl.Red.Players {
		paintNameBars(frame, p.X, p.Y, 8+i)
	}
	return frame
}

func solidBan(c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	fill(img, image.Rect(0, 0, 10, 10), c)
	return img
}

func TestEndToEndDetection(t *testing.T) {
	f := newFixture(t, scriptedEngine{}, nil)
	frame := draftFrame(f)

	res, err := f.detector.Detect(context.Background(), frame)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if res.Skipped {
		t.Fatal("first pass reported skipped")
	}
	if res.Map != "BRAXIS HOLDOUT" {
		t.Errorf("Map = %q, want BRAXIS HOLDOUT", res.Map)
	}

	snap := f.detector.Snapshot()
	if snap.Map != "BRAXIS HOLDOUT" {
		t.Errorf("snapshot map = %q", snap.Map)
	}
	if snap.State != StateTeamsSettled {
		t.Errorf("state = %q, want teams-settled", snap.State)
	}

	wantBlueBans := [layout.BanSlots]Ban{{HeroID: "hero-a"}, {HeroID: "hero-b"}, {}}
	if snap.Blue.Bans != wantBlueBans {
		t.Errorf("blue bans = %+v, want %+v", snap.Blue.Bans, wantBlueBans)
	}
	wantRedBans := [layout.BanSlots]Ban{{HeroID: "hero-c"}, {HeroID: "hero-d"}, {}}
	if snap.Red.Bans != wantRedBans {
		t.Errorf("red bans = %+v, want %+v", snap.Red.Bans, wantRedBans)
	}
	// Slot 2 is empty on both sides, so exactly the two classified slots lock.
	if snap.Blue.BansLocked != 2 || snap.Red.BansLocked != 2 {
		t.Errorf("bansLocked = %d/%d, want 2/2", snap.Blue.BansLocked, snap.Red.BansLocked)
	}

	for i, p := range snap.Blue.Players {
		want := fmt.Sprintf("P%d", 3+i)
		if p.Name != want {
			t.Errorf("blue player %d name = %q, want %q", i, p.Name, want)
		}
		// Blue holds the timer, so its name reads stay provisional.
		if p.NameFinal {
			t.Errorf("blue player %d name marked final while team active", i)
		}
	}
	for i, p := range snap.Red.Players {
		want := fmt.Sprintf("P%d", 8+i)
		if p.Name != want {
			t.Errorf("red player %d name = %q, want %q", i, p.Name, want)
		}
		if !p.NameFinal {
			t.Errorf("red player %d name not final while team inactive", i)
		}
	}

	events := drainEvents(f.detector)
	if got := countKind(events, EventMapChanged); got != 1 {
		t.Errorf("map-changed fired %d times, want 1", got)
	}
	if got := countKind(events, EventPassDone); got != 1 {
		t.Errorf("pass-done fired %d times, want 1", got)
	}
}

func TestLockingInvariant(t *testing.T) {
	f := newFixture(t, scriptedEngine{}, nil)

	frame := blankFrame()
	paintMapBars(frame, 2)
	fill(frame, image.Rect(10, 40, 50, 50), timerBlue)
	paintLockedHero(frame, 0, 60, 1) // "Diablo"

	if _, err := f.detector.Detect(context.Background(), frame); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	p := f.detector.Snapshot().Blue.Players[0]
	if p.Hero != "Diablo" || !p.Locked || p.DetectionError {
		t.Fatalf("player after lock = %+v, want locked Diablo", p)
	}

	// Same slot now renders text that would recognize as a different hero;
	// the settled pick must not move.
	second := blankFrame()
	paintMapBars(second, 2)
	fill(second, image.Rect(10, 40, 50, 50), timerBlue)
	paintLockedHero(second, 0, 60, 2) // would be "Jaina"

	if _, err := f.detector.Detect(context.Background(), second); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if got := f.detector.Snapshot().Blue.Players[0].Hero; got != "Diablo" {
		t.Errorf("locked hero changed to %q", got)
	}
}

func TestDetectionErrorRetriesAndCorrection(t *testing.T) {
	f := newFixture(t, scriptedEngine{}, nil)

	frame := blankFrame()
	paintMapBars(frame, 2)
	fill(frame, image.Rect(10, 40, 50, 50), timerBlue)
	paintLockedHero(frame, 0, 60, 3) // "Zzzgarbage": validates against no hero

	if _, err := f.detector.Detect(context.Background(), frame); err != nil {
		t.Fatalf("Detect: %v", err)
	}
	p := f.detector.Snapshot().Blue.Players[0]
	if !p.Locked || !p.DetectionError || p.Hero != "" {
		t.Fatalf("player = %+v, want locked detection error", p)
	}

	if err := f.detector.CorrectPlayerHero(layout.TeamBlue, 0, "Diablo"); err != nil {
		t.Fatalf("CorrectPlayerHero: %v", err)
	}
	p = f.detector.Snapshot().Blue.Players[0]
	if p.Hero != "Diablo" || p.DetectionError {
		t.Errorf("player after correction = %+v", p)
	}
	// The misread is now a roster correction, so the same text self-resolves.
	if !f.roster.HeroExists("Zzzgarbage") {
		t.Error("correction not learned into the roster")
	}
}

func TestBanCorrectionLearnsReference(t *testing.T) {
	f := newFixture(t, scriptedEngine{}, nil)

	frame := blankFrame()
	paintMapBars(frame, 2)
	fill(frame, image.Rect(10, 40, 50, 50), timerBlue)
	fill(frame, image.Rect(150, 10, 160, 20), portraitX) // no reference matches

	if _, err := f.detector.Detect(context.Background(), frame); err != nil {
		t.Fatalf("Detect: %v", err)
	}
	b := f.detector.Snapshot().Blue.Bans[0]
	if !b.Unknown || b.Filled() {
		t.Fatalf("ban = %+v, want unknown-pending", b)
	}
	if _, ok := f.detector.PendingBan(layout.TeamBlue, 0); !ok {
		t.Fatal("pending crop not retained")
	}

	if err := f.detector.CorrectBan(layout.TeamBlue, 0, "Diablo"); err != nil {
		t.Fatalf("CorrectBan: %v", err)
	}
	b = f.detector.Snapshot().Blue.Bans[0]
	if b.HeroID != "diablo" || b.Unknown {
		t.Errorf("ban after correction = %+v", b)
	}
	if !f.bank.Has("diablo") {
		t.Error("corrected crop not stored as reference")
	}
	if _, ok := f.detector.PendingBan(layout.TeamBlue, 0); ok {
		t.Error("pending crop kept after correction")
	}
}

func TestMapChangeClearsState(t *testing.T) {
	f := newFixture(t, scriptedEngine{}, func(o *Options) {
		o.MapCooldown = time.Nanosecond
	})

	if _, err := f.detector.Detect(context.Background(), draftFrame(f)); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	snap := f.detector.Snapshot()
	if snap.Blue.BansLocked == 0 {
		t.Fatal("fixture did not produce locked bans")
	}
	drainEvents(f.detector)

	second := blankFrame()
	paintMapBars(second, 3) // "Cursed Hollow"
	fill(second, image.Rect(10, 40, 50, 50), timerBlue)
	fill(second, image.Rect(150, 10, 184, 20), banBackground)
	fill(second, image.Rect(150, 25, 184, 35), banBackground)

	if _, err := f.detector.Detect(context.Background(), second); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	snap = f.detector.Snapshot()
	if snap.Map != "CURSED HOLLOW" {
		t.Errorf("map = %q, want CURSED HOLLOW", snap.Map)
	}
	if snap.Blue.BansLocked != 0 || snap.Blue.Bans != ([layout.BanSlots]Ban{}) {
		t.Errorf("blue team not reset: %+v", snap.Blue)
	}
	for i, p := range snap.Blue.Players {
		if p.Locked || p.Name != "" {
			t.Errorf("blue player %d not reset: %+v", i, p)
		}
	}

	events := drainEvents(f.detector)
	if got := countKind(events, EventMapChanged); got != 1 {
		t.Errorf("map-changed fired %d times on map change, want 1", got)
	}
}

// gatedEngine parks every recognition until the gate opens.
type gatedEngine struct {
	inner   ocr.Engine
	started chan struct{}
	gate    chan struct{}
}

func (g *gatedEngine) Recognize(ctx context.Context, job ocr.Job) (ocr.Result, error) {
	select {
	case g.started <- struct{}{}:
	default:
	}
	<-g.gate
	return g.inner.Recognize(ctx, job)
}

func (g *gatedEngine) Close() error { return nil }

func TestReentrancyGuard(t *testing.T) {
	engine := &gatedEngine{inner: scriptedEngine{}, started: make(chan struct{}, 1), gate: make(chan struct{})}
	f := newFixture(t, engine, nil)

	frame := blankFrame()
	paintMapBars(frame, 2)
	fill(frame, image.Rect(10, 40, 50, 50), timerBlue)

	done := make(chan error, 1)
	go func() {
		_, err := f.detector.Detect(context.Background(), frame)
		done <- err
	}()

	select {
	case <-engine.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first pass never reached recognition")
	}

	res, err := f.detector.Detect(context.Background(), frame)
	if err != nil {
		t.Fatalf("concurrent Detect: %v", err)
	}
	if !res.Skipped {
		t.Error("concurrent pass was not skipped")
	}
	if f.detector.MapName() != "" {
		t.Error("skipped pass touched state")
	}

	close(engine.gate)
	if err := <-done; err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	if f.detector.MapName() != "BRAXIS HOLDOUT" {
		t.Errorf("map after first pass = %q", f.detector.MapName())
	}
}

func TestClearResetsToIdle(t *testing.T) {
	f := newFixture(t, scriptedEngine{}, nil)
	if _, err := f.detector.Detect(context.Background(), draftFrame(f)); err != nil {
		t.Fatalf("Detect: %v", err)
	}

	f.detector.Clear()
	snap := f.detector.Snapshot()
	if snap.Map != "" || snap.State != StateIdle {
		t.Errorf("after Clear: map=%q state=%q", snap.Map, snap.State)
	}
	if f.detector.Tracking() {
		t.Error("Tracking still true after Clear")
	}
}

func TestPassAbortsWithoutTimer(t *testing.T) {
	f := newFixture(t, scriptedEngine{}, nil)

	frame := blankFrame()
	paintMapBars(frame, 2)
	// No timer colors anywhere.

	if _, err := f.detector.Detect(context.Background(), frame); err == nil {
		t.Fatal("expected pass abort without a detectable timer")
	}
	if f.detector.State() != StateError {
		t.Errorf("state = %q, want error", f.detector.State())
	}
}
