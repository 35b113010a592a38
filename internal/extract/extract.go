// Package extract crops, de-rotates and cleans draft-screen regions out of a
// captured frame, producing OCR-ready image buffers and coarse state signals.
package extract

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"

	"github.com/draftlens/draftlens/internal/colormatch"
	"github.com/draftlens/draftlens/internal/errors"
	"github.com/draftlens/draftlens/internal/layout"
)

// Upscale factors applied before OCR. Small UI text recognizes far better
// after linear upscaling.
const (
	MapUpscale  = 2
	NameUpscale = 4
)

var (
	white = colormatch.Color{R: 255, G: 255, B: 255}
	black = colormatch.Color{}
)

// Extractor reads regions of one frame using resolved offsets. It owns the
// frame for a single pass and is not reused across passes.
type Extractor struct {
	frame *image.NRGBA
	off   *layout.Offsets
	tpl   *layout.Template
	debug DebugSink
}

// New wraps a captured frame. The frame is cloned into NRGBA once so all
// region math runs on a zero-origin raster.
func New(frame image.Image, off *layout.Offsets, tpl *layout.Template, debug DebugSink) *Extractor {
	return &Extractor{
		frame: imaging.Clone(frame),
		off:   off,
		tpl:   tpl,
		debug: debug,
	}
}

func (e *Extractor) crop(pos, size layout.Point) *image.NRGBA {
	return imaging.Crop(e.frame, image.Rect(pos.X, pos.Y, pos.X+size.X, pos.Y+size.Y))
}

func (e *Extractor) dump(name string, original, processed image.Image) {
	if e.debug != nil {
		e.debug.Dump(name, original, processed)
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, errors.CodeImageDecodeFailure, "encoding region for ocr")
	}
	return buf.Bytes(), nil
}

// MapLabel isolates the map-name text and returns it as an OCR-ready PNG:
// trimmed to the text span, upscaled, dark text on light background.
func (e *Extractor) MapLabel() ([]byte, error) {
	region := e.crop(e.off.MapPos, e.off.MapSize)
	var original *image.NRGBA
	if e.debug != nil {
		original = imaging.Clone(region)
	}

	trimmed, ok := colormatch.TrimAndBinarize(region, e.tpl.Colors.MapName, white, black)
	if !ok {
		return nil, errors.New(errors.CodeRegionNotFound, "map label text not found")
	}
	e.dump("mapName", original, trimmed)

	out := imaging.Resize(trimmed, trimmed.Rect.Dx()*MapUpscale, trimmed.Rect.Dy()*MapUpscale, imaging.Linear)
	return encodePNG(imaging.Invert(out))
}

// Phase is the draft phase the timer currently indicates.
type Phase int

const (
	PhasePick Phase = iota
	PhaseBan
)

func (p Phase) String() string {
	if p == PhaseBan {
		return "ban"
	}
	return "pick"
}

// TimerState reports which team the draft timer is running for.
type TimerState struct {
	Phase Phase
	Team  layout.TeamColor
}

// TimerState classifies the timer strip: blue active, red active, or ban
// phase. During a ban phase each team's indicator sub-region decides whose
// ban it is. No match at all means the draft screen is not showing.
func (e *Extractor) TimerState() (TimerState, error) {
	region := e.crop(e.off.TimerPos, e.off.TimerSize)

	// Halving the strip before the full-scan color checks quarters the work
	// without losing the saturated timer colors.
	small := imaging.Resize(region, region.Rect.Dx()/2, region.Rect.Dy()/2, imaging.Linear)

	colors := &e.tpl.Colors
	if colormatch.FindAny(small, colors.TimerBlue) {
		return TimerState{Phase: PhasePick, Team: layout.TeamBlue}, nil
	}
	if colormatch.FindAny(small, colors.TimerRed) {
		return TimerState{Phase: PhasePick, Team: layout.TeamRed}, nil
	}
	if colormatch.FindAny(small, colors.TimerBan) {
		for _, team := range []layout.TeamColor{layout.TeamBlue, layout.TeamRed} {
			check := e.crop(offsetBy(e.off.TimerPos, e.off.Team(team).BanCheck), e.off.BanCheckSize)
			if colormatch.FindAny(check, colors.TimerBan) {
				return TimerState{Phase: PhaseBan, Team: team}, nil
			}
		}
		return TimerState{}, errors.New(errors.CodeTimerNotDetected, "ban phase with no team indicator")
	}
	return TimerState{}, errors.New(errors.CodeTimerNotDetected, "no timer color present")
}

func offsetBy(base, rel layout.Point) layout.Point {
	return layout.Point{X: base.X + rel.X, Y: base.Y + rel.Y}
}
