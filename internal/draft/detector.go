package draft

import (
	"context"
	"image"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/draftlens/draftlens/internal/bank"
	"github.com/draftlens/draftlens/internal/errors"
	"github.com/draftlens/draftlens/internal/extract"
	"github.com/draftlens/draftlens/internal/gamedata"
	"github.com/draftlens/draftlens/internal/layout"
	"github.com/draftlens/draftlens/internal/ocr"
	"github.com/draftlens/draftlens/internal/trace"
)

// State is the detector's position in one pass.
type State string

const (
	StateIdle             State = "idle"
	StateScreenshotLoaded State = "screenshot-loaded"
	StateMapDetected      State = "map-detected"
	StateTimerDetected    State = "timer-detected"
	StateTeamsDetecting   State = "teams-detecting"
	StateTeamsSettled     State = "teams-settled"
	StateError            State = "error"
)

// DefaultMapCooldown rate-limits map OCR: once detected, the map text is
// trusted for this long before being re-read, tolerating UI flicker cheaply.
const DefaultMapCooldown = 20 * time.Second

// Options wires a Detector. Everything is injected; the detector owns no
// configuration lookup of its own.
type Options struct {
	Template    *layout.Template
	Roster      *gamedata.Roster
	Bank        *bank.Bank
	Cluster     *ocr.Cluster
	Debug       extract.DebugSink
	Language    string // tessdata language, empty means the engine default
	MapCooldown time.Duration
	// BankDirs are loaded into the bank lazily on the first pass, baseline
	// first so user references override.
	BankDirs []string
}

// PassResult summarizes one detection pass.
type PassResult struct {
	// Skipped means another pass was already in flight; nothing was touched.
	Skipped bool
	Map     string
	Timer   extract.TimerState
	// FieldErrors counts localized per-field failures that were swallowed.
	FieldErrors int
}

// Detector is the draft state machine. One pass runs at a time; manual
// corrections may arrive concurrently and synchronize on the state lock.
type Detector struct {
	mu       sync.RWMutex
	inFlight atomic.Bool

	tpl    *layout.Template
	roster *gamedata.Roster
	bank   *bank.Bank
	ocr    *ocr.Cluster
	debug  extract.DebugSink
	lang   string

	mapCooldown time.Duration
	bankDirs    []string
	bankOnce    sync.Once
	bankErr     error

	events chan Event

	off       *layout.Offsets
	state     State
	mapName   string
	mapSeenAt time.Time
	blue      *Team
	red       *Team
}

// New builds a detector in the Idle state with empty teams.
func New(opts Options) *Detector {
	cooldown := opts.MapCooldown
	if cooldown <= 0 {
		cooldown = DefaultMapCooldown
	}
	return &Detector{
		tpl:         opts.Template,
		roster:      opts.Roster,
		bank:        opts.Bank,
		ocr:         opts.Cluster,
		debug:       opts.Debug,
		lang:        opts.Language,
		mapCooldown: cooldown,
		bankDirs:    opts.BankDirs,
		events:      make(chan Event, eventBuffer),
		state:       StateIdle,
		blue:        newTeam(layout.TeamBlue),
		red:         newTeam(layout.TeamRed),
	}
}

// Detect runs one full pass over a captured frame. A second call while one
// is in flight returns immediately with Skipped set, touching no state.
func (d *Detector) Detect(ctx context.Context, frame image.Image) (PassResult, error) {
	if !d.inFlight.CompareAndSwap(false, true) {
		return PassResult{Skipped: true}, nil
	}
	defer d.inFlight.Store(false)

	ctx, span := trace.StartSpan(ctx, "detect-pass")
	defer span.End()
	log := trace.Logger(ctx)

	res, err := d.pass(ctx, frame)
	if err != nil {
		d.setState(StateError)
		log.Debug("pass failed", "error", err)
		d.emit(Event{Kind: EventError, Message: err.Error()})
		d.emit(Event{Kind: EventPassDone, Success: false})
		return res, err
	}
	d.setState(StateTeamsSettled)
	log.Debug("pass complete", "map", res.Map, "phase", res.Timer.Phase.String(),
		"timer_team", res.Timer.Team, "field_errors", res.FieldErrors)
	d.emit(Event{Kind: EventPassDone, Success: true})
	return res, nil
}

func (d *Detector) pass(ctx context.Context, frame image.Image) (PassResult, error) {
	if frame == nil || frame.Bounds().Empty() {
		return PassResult{}, errors.New(errors.CodeImageDecodeFailure, "empty frame")
	}
	d.setState(StateScreenshotLoaded)

	d.bankOnce.Do(func() {
		if len(d.bankDirs) > 0 {
			d.bankErr = d.bank.Load(d.bankDirs...)
		}
	})
	if d.bankErr != nil {
		return PassResult{}, d.bankErr
	}

	size := layout.Point{X: frame.Bounds().Dx(), Y: frame.Bounds().Dy()}
	d.mu.Lock()
	if d.off == nil || d.off.Target != size {
		d.off = layout.Resolve(d.tpl, size)
	}
	off := d.off
	d.mu.Unlock()

	ex := extract.New(frame, off, d.tpl, d.debug)

	if err := d.detectMap(ctx, ex); err != nil {
		return PassResult{}, err
	}
	d.setState(StateMapDetected)

	timer, err := ex.TimerState()
	if err != nil {
		return PassResult{}, err
	}
	d.setState(StateTimerDetected)

	d.setState(StateTeamsDetecting)
	var fieldErrs atomic.Int32
	d.mu.RLock()
	teams := [2]*Team{d.blue, d.red}
	d.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, team := range teams {
		team := team
		g.Go(func() error {
			return d.detectTeam(gctx, ex, team, timer, &fieldErrs)
		})
	}
	if err := g.Wait(); err != nil {
		return PassResult{}, err
	}
	return PassResult{Map: d.MapName(), Timer: timer, FieldErrors: int(fieldErrs.Load())}, nil
}

// detectMap reads the map label, honoring the cooldown. A new map name is the
// draft-session boundary: team state resets and map-changed fires once.
func (d *Detector) detectMap(ctx context.Context, ex *extract.Extractor) error {
	d.mu.RLock()
	fresh := d.mapName != "" && time.Since(d.mapSeenAt) < d.mapCooldown
	d.mu.RUnlock()
	if fresh {
		return nil
	}

	buf, err := ex.MapLabel()
	if err != nil {
		return err
	}
	out := <-d.ocr.Submit(ctx, ocr.Job{Image: buf, Lang: d.lang})
	if out.Err != nil {
		return errors.Wrap(out.Err, errors.CodeMapNotDetected, "map label recognition")
	}
	name := gamedata.Normalize(out.Result.Text)
	if name == "" || !d.roster.MapExists(name) {
		return errors.Newf(errors.CodeMapNotDetected, "unrecognized map text %q", out.Result.Text)
	}

	d.mu.Lock()
	changed := name != d.mapName
	d.mapName = name
	d.mapSeenAt = time.Now()
	if changed {
		d.blue = newTeam(layout.TeamBlue)
		d.red = newTeam(layout.TeamRed)
	}
	d.mu.Unlock()

	if changed {
		d.emit(Event{Kind: EventMapChanged, Map: name})
	}
	return nil
}

// detectTeam runs one team's bans and players as concurrent sub-tasks;
// completion order is irrelevant since every field applies under the state
// lock. Player-level failures are counted and swallowed.
func (d *Detector) detectTeam(ctx context.Context, ex *extract.Extractor, team *Team, timer extract.TimerState, fieldErrs *atomic.Int32) error {
	banning := timer.Phase == extract.PhaseBan && timer.Team == team.Color
	active := timer.Team == team.Color

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.detectBans(ex, team, banning)
		return nil
	})
	for i := 0; i < layout.PlayerSlots; i++ {
		p := team.Players[i]
		g.Go(func() error {
			if err := d.detectPlayer(gctx, ex, team, p, active); err != nil {
				fieldErrs.Add(1)
				trace.Logger(gctx).Debug("player detection failed",
					"team", team.Color, "slot", p.Slot, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (d *Detector) detectBans(ex *extract.Extractor, team *Team, banning bool) {
	d.mu.RLock()
	locked := team.BansLocked
	d.mu.RUnlock()

	for i := locked; i < layout.BanSlots; i++ {
		res := ex.BanSlot(team.Color, i, d.bank)
		d.applyBan(team, i, res)
	}
	// While this team is mid-ban the newest slot may still change; defer
	// locking until the phase moves on.
	if !banning {
		d.mu.Lock()
		for team.BansLocked < layout.BanSlots && team.Bans[team.BansLocked].Filled() {
			team.BansLocked++
		}
		d.mu.Unlock()
	}
}

func (d *Detector) applyBan(team *Team, slot int, res extract.BanResult) {
	d.mu.Lock()
	cur := team.Bans[slot]
	changed := false
	switch {
	case res.Empty:
		// An empty read never erases an earlier classification.
	case res.HeroID != "":
		if cur.HeroID != res.HeroID {
			team.Bans[slot] = Ban{HeroID: res.HeroID}
			team.pendingBans[slot] = nil
			changed = true
		}
	default:
		if !cur.Filled() {
			team.pendingBans[slot] = res.Pending
			if !cur.Unknown {
				team.Bans[slot] = Ban{Unknown: true}
				changed = true
			}
		}
	}
	d.mu.Unlock()

	if changed {
		d.emit(Event{Kind: EventBanUpdated, Team: team.Color, Slot: slot})
	}
}

// detectPlayer extracts and recognizes one player's unsettled fields.
func (d *Detector) detectPlayer(ctx context.Context, ex *extract.Extractor, team *Team, p *Player, active bool) error {
	d.mu.RLock()
	needHero := p.needHero()
	needName := !p.NameFinal
	d.mu.RUnlock()
	if !needHero && !needName {
		return nil
	}

	labels, err := ex.PlayerLabels(team.Color, p.Slot, active, needHero, needName)
	if err != nil {
		return err
	}

	d.mu.Lock()
	p.portrait = labels.Portrait
	d.mu.Unlock()

	var heroFut, nameFut <-chan ocr.Outcome
	if labels.HeroImage != nil {
		heroFut = d.ocr.Submit(ctx, ocr.Job{Image: labels.HeroImage, Lang: d.lang})
	}
	if labels.NameImage != nil {
		nameFut = d.ocr.Submit(ctx, ocr.Job{Image: labels.NameImage, Lang: d.lang})
	}

	var firstErr error
	if heroFut != nil {
		if out := <-heroFut; out.Err != nil {
			firstErr = out.Err
		} else {
			d.applyHero(p, out.Result.Text, labels.HeroLocked)
		}
	}
	if nameFut != nil {
		if out := <-nameFut; out.Err != nil {
			if firstErr == nil {
				firstErr = out.Err
			}
		} else {
			d.applyName(p, out.Result.Text, labels.NameFinal)
		}
	}
	return firstErr
}

// applyHero validates recognized hero text and updates the player. Stale or
// placeholder reads are dropped; a settled pick is never overwritten.
func (d *Detector) applyHero(p *Player, raw string, locked bool) {
	text := gamedata.Normalize(raw)
	if text == "" || text == gamedata.Normalize(d.tpl.PickingText) {
		return
	}

	d.mu.Lock()
	if p.Locked && !p.DetectionError {
		d.mu.Unlock()
		return
	}

	changed := false
	id, known := d.roster.HeroID(text)
	if !known {
		if locked {
			// Confirmed in the UI but unreadable: flag for correction and
			// keep retrying.
			changed = !p.DetectionError || p.lastHeroText != text
			p.Locked = true
			p.DetectionError = true
			p.lastHeroText = text
		}
		d.mu.Unlock()
		if changed {
			d.emit(Event{Kind: EventPlayerUpdated, Team: p.Team, Slot: p.Slot})
		}
		return
	}

	name, _ := d.roster.HeroName(id)
	changed = p.Hero != name || p.Locked != locked || p.DetectionError
	p.Hero = name
	p.DetectionError = false
	p.lastHeroText = ""
	portrait := p.portrait
	if locked {
		p.Locked = true
	}
	d.mu.Unlock()

	if locked && portrait != nil {
		// Opportunistic self-training from the confirmed pick.
		if err := d.bank.LearnPortrait(id, portrait); err != nil {
			slog.Debug("portrait learning skipped", "hero", id, "error", err)
		}
	}
	if changed {
		d.emit(Event{Kind: EventPlayerUpdated, Team: p.Team, Slot: p.Slot})
	}
}

func (d *Detector) applyName(p *Player, raw string, final bool) {
	text := strings.Join(strings.Fields(raw), " ")
	if text == "" {
		return
	}

	d.mu.Lock()
	if p.NameFinal {
		d.mu.Unlock()
		return
	}
	changed := p.Name != text || p.NameFinal != final
	p.Name = text
	p.NameFinal = final
	d.mu.Unlock()

	if changed {
		d.emit(Event{Kind: EventPlayerUpdated, Team: p.Team, Slot: p.Slot})
	}
}

func (d *Detector) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

func (d *Detector) team(color layout.TeamColor) *Team {
	if color == layout.TeamBlue {
		return d.blue
	}
	return d.red
}
