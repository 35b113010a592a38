// Package bank maintains reference hero-portrait crops and classifies ban
// slot images against them by perceptual similarity.
package bank

import (
	"image"
	"log/slog"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"github.com/draftlens/draftlens/internal/colormatch"
	"github.com/draftlens/draftlens/internal/errors"
)

const (
	// CompareWidth and CompareHeight are the fixed resolution every candidate
	// and reference is resized to before scoring. Small on purpose: the
	// similarity scan is O(w*h*refs) per ban slot.
	CompareWidth  = 19
	CompareHeight = 22

	// MinConfidence is the similarity score a best match must clear to be
	// accepted. Tuned against real captures; a unique-but-weak best match
	// below this must be rejected.
	MinConfidence = 200

	// PortraitCropX and PortraitCropY locate the ban-portrait sub-region
	// inside a full hero portrait, used when learning from confirmed picks.
	PortraitCropX = 28
	PortraitCropY = 25
)

// Persister writes a learned reference to durable storage. The bank calls it
// synchronously under its write lock; implementations should be quick.
type Persister interface {
	SaveReference(heroID string, img image.Image) error
}

// Bank holds the in-memory reference set. Classify is read-only and safe to
// call concurrently; learning takes the write lock.
type Bank struct {
	mu      sync.RWMutex
	refs    map[string]*image.NRGBA // heroID -> comparison-resolution crop
	banW    int
	banH    int
	persist Persister
}

// New creates an empty bank. banW/banH give the native ban-slot size used to
// carve the canonical portrait sub-crop when learning from full portraits.
func New(banW, banH int, persist Persister) *Bank {
	return &Bank{
		refs:    make(map[string]*image.NRGBA),
		banW:    banW,
		banH:    banH,
		persist: persist,
	}
}

// normalize brings any source image to the comparison resolution.
func normalize(img image.Image) *image.NRGBA {
	return imaging.Clone(resize.Resize(CompareWidth, CompareHeight, img, resize.Bilinear))
}

// Classify scores the candidate against every reference and returns the best
// hero identifier when its score clears the confidence floor.
func (b *Bank) Classify(candidate image.Image) (heroID string, score float64, ok bool) {
	sample := normalize(candidate)

	b.mu.RLock()
	defer b.mu.RUnlock()
	best := -1.0
	for id, ref := range b.refs {
		s := colormatch.Similarity(sample, ref, 1)
		if s > best {
			best = s
			heroID = id
		}
	}
	if best < MinConfidence {
		return "", best, false
	}
	return heroID, best, true
}

// Learn stores a ban-sized crop for heroID unless a reference already
// exists. Used for opportunistic self-training from accepted detections.
func (b *Bank) Learn(heroID string, banCrop image.Image) error {
	return b.store(heroID, banCrop, false)
}

// Store records a ban-sized crop for heroID, replacing any existing
// reference. Used for manual corrections, which outrank learned data.
func (b *Bank) Store(heroID string, banCrop image.Image) error {
	return b.store(heroID, banCrop, true)
}

// LearnPortrait carves the canonical ban-portrait sub-region out of a full
// hero portrait and learns it. No-op when a reference already exists.
func (b *Bank) LearnPortrait(heroID string, portrait image.Image) error {
	if b.Has(heroID) {
		return nil
	}
	r := image.Rect(PortraitCropX, PortraitCropY, PortraitCropX+b.banW, PortraitCropY+b.banH)
	if !r.In(image.Rect(0, 0, portrait.Bounds().Dx(), portrait.Bounds().Dy())) {
		return errors.Newf(errors.CodeBankLoadFailure, "portrait %dx%d too small for ban crop",
			portrait.Bounds().Dx(), portrait.Bounds().Dy())
	}
	return b.store(heroID, imaging.Crop(portrait, r), false)
}

func (b *Bank) store(heroID string, banCrop image.Image, overwrite bool) error {
	ref := normalize(banCrop)

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.refs[heroID]; exists && !overwrite {
		return nil
	}
	b.refs[heroID] = ref
	if b.persist != nil {
		if err := b.persist.SaveReference(heroID, banCrop); err != nil {
			// The in-memory reference still serves this session.
			slog.Warn("persisting ban reference failed", "hero", heroID, "error", err)
		}
	}
	return nil
}

// Has reports whether a reference exists for heroID.
func (b *Bank) Has(heroID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.refs[heroID]
	return ok
}

// Len returns the number of loaded references.
func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.refs)
}
