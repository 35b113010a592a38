// Package capture grabs raw frames of the screen the game runs on.
package capture

import (
	"context"
	"image"

	"github.com/kbinani/screenshot"

	"github.com/draftlens/draftlens/internal/errors"
)

// Provider yields one frame per call. Implementations must be safe for use
// from a single goroutine; the scheduler never captures concurrently.
type Provider interface {
	Capture(ctx context.Context) (*image.RGBA, error)
}

// Display captures a single physical display by index.
type Display struct {
	Index int
}

// NewDisplay validates the display index against the displays currently
// attached and returns a provider bound to it.
func NewDisplay(index int) (*Display, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, errors.New(errors.CodeCaptureFailure, "no active displays")
	}
	if index < 0 || index >= n {
		return nil, errors.Newf(errors.CodeCaptureFailure, "display %d out of range, %d attached", index, n)
	}
	return &Display{Index: index}, nil
}

// Capture grabs the full bounds of the display. The context is checked up
// front; the underlying grab is fast enough that it is not interruptible.
func (d *Display) Capture(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCaptureFailure, "capture canceled")
	}
	bounds := screenshot.GetDisplayBounds(d.Index)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeCaptureFailure, "capturing display %d", d.Index)
	}
	return img, nil
}

// Static always returns the same frame. It exists for tests and for replaying
// saved captures through the full pipeline.
type Static struct {
	Frame *image.RGBA
}

func (s *Static) Capture(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCaptureFailure, "capture canceled")
	}
	if s.Frame == nil {
		return nil, errors.New(errors.CodeCaptureFailure, "no frame loaded")
	}
	return s.Frame, nil
}
