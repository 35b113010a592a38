// Package sched drives detection passes on a cadence: tight while a draft is
// being tracked, relaxed otherwise, skipping frames that have not visibly
// changed since the last clean pass.
package sched

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/corona10/goimagehash"

	"github.com/draftlens/draftlens/internal/capture"
	"github.com/draftlens/draftlens/internal/draft"
	"github.com/draftlens/draftlens/internal/resilience"
)

// Cadence defaults: a fast follow-up keeps the UI live mid-draft, the idle
// rate just watches for a draft screen to appear.
const (
	DefaultActiveDelay = 100 * time.Millisecond
	DefaultIdleDelay   = time.Second

	// SkipDistance is the maximum perceptual-hash distance at which two
	// frames count as unchanged.
	SkipDistance = 1
)

// Detector is the slice of the draft detector the scheduler drives.
type Detector interface {
	Detect(ctx context.Context, frame image.Image) (draft.PassResult, error)
	Tracking() bool
}

// Runner owns the capture-detect loop.
type Runner struct {
	provider capture.Provider
	detector Detector

	activeDelay time.Duration
	idleDelay   time.Duration
	retry       resilience.Policy

	lastHash  *goimagehash.ImageHash
	lastClean bool
}

// New builds a runner. Zero delays fall back to the defaults.
func New(provider capture.Provider, detector Detector, activeDelay, idleDelay time.Duration) *Runner {
	if activeDelay <= 0 {
		activeDelay = DefaultActiveDelay
	}
	if idleDelay <= 0 {
		idleDelay = DefaultIdleDelay
	}
	return &Runner{
		provider:    provider,
		detector:    detector,
		activeDelay: activeDelay,
		idleDelay:   idleDelay,
		retry:       resilience.DefaultPolicy(),
	}
}

// Run loops until the context ends. Pass-level failures are logged and the
// loop simply waits for conditions to change; it never self-terminates on
// detection errors.
func (r *Runner) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		r.step(ctx)
		timer.Reset(r.delay())
	}
}

// delay picks the cadence for the next step.
func (r *Runner) delay() time.Duration {
	if r.detector.Tracking() {
		return r.activeDelay
	}
	return r.idleDelay
}

func (r *Runner) step(ctx context.Context) {
	var frame *image.RGBA
	err := resilience.Retry(ctx, r.retry, func(ctx context.Context) error {
		f, err := r.provider.Capture(ctx)
		frame = f
		return err
	})
	if err != nil {
		slog.Debug("capture failed", "error", err)
		return
	}

	hash, hashErr := goimagehash.PerceptionHash(frame)
	if hashErr == nil && r.lastHash != nil && r.lastClean {
		if dist, err := hash.Distance(r.lastHash); err == nil && dist <= SkipDistance {
			return
		}
	}

	res, err := r.detector.Detect(ctx, frame)
	if res.Skipped {
		return
	}
	if hashErr == nil {
		r.lastHash = hash
	}
	r.lastClean = err == nil && res.FieldErrors == 0
	if err != nil {
		slog.Debug("detection pass failed", "error", err)
	}
}
