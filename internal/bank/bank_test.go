package bank

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
	// Green scores poorly against both red and blue: large luminance gap and
	// a hue gap past the similarity formula's 90 degree cutoff.
	green = color.NRGBA{G: 255, A: 255}
)

func seeded(t *testing.T) *Bank {
	t.Helper()
	b := New(76, 86, nil)
	if err := b.Learn("red-hero", solid(76, 86, red)); err != nil {
		t.Fatalf("Learn: %v", err)
	}
	if err := b.Learn("blue-hero", solid(76, 86, blue)); err != nil {
		t.Fatalf("Learn: %v", err)
	}
	return b
}

func TestClassifyExactMatch(t *testing.T) {
	b := seeded(t)
	id, score, ok := b.Classify(solid(76, 86, red))
	if !ok || id != "red-hero" {
		t.Fatalf("Classify = (%q, %v, %v), want red-hero", id, score, ok)
	}
	if score < MinConfidence {
		t.Errorf("exact match scored %v, below confidence floor", score)
	}
}

func TestClassifyRejectsWeakBest(t *testing.T) {
	b := seeded(t)
	// Green is the unique nearest neighbor of neither reference; even the
	// best score must stay under the floor and be rejected.
	id, score, ok := b.Classify(solid(76, 86, green))
	if ok {
		t.Fatalf("Classify accepted weak match %q with score %v", id, score)
	}
	if score >= MinConfidence {
		t.Fatalf("weak candidate scored %v, test image needs adjusting", score)
	}
}

func TestClassifyEmptyBank(t *testing.T) {
	b := New(76, 86, nil)
	if _, _, ok := b.Classify(solid(76, 86, red)); ok {
		t.Error("empty bank classified a candidate")
	}
}

func TestLearnDoesNotOverwriteStoreDoes(t *testing.T) {
	b := New(76, 86, nil)
	b.Learn("hero", solid(76, 86, red))
	b.Learn("hero", solid(76, 86, blue))

	if id, _, ok := b.Classify(solid(76, 86, red)); !ok || id != "hero" {
		t.Error("Learn overwrote an existing reference")
	}

	b.Store("hero", solid(76, 86, blue))
	if _, _, ok := b.Classify(solid(76, 86, red)); ok {
		t.Error("Store did not replace the reference")
	}
	if id, _, ok := b.Classify(solid(76, 86, blue)); !ok || id != "hero" {
		t.Error("Store result not classifiable")
	}
}

func TestLearnPortraitCropsCanonicalRegion(t *testing.T) {
	b := New(76, 86, nil)

	// Portrait is green except the canonical ban sub-region, which is red.
	portrait := solid(PortraitCropX+76+20, PortraitCropY+86+20, green)
	for y := PortraitCropY; y < PortraitCropY+86; y++ {
		for x := PortraitCropX; x < PortraitCropX+76; x++ {
			portrait.SetNRGBA(x, y, red)
		}
	}
	if err := b.LearnPortrait("hero", portrait); err != nil {
		t.Fatalf("LearnPortrait: %v", err)
	}
	if id, _, ok := b.Classify(solid(76, 86, red)); !ok || id != "hero" {
		t.Error("learned portrait crop does not match a red ban slot")
	}
}

func TestLearnPortraitRejectsTinyImage(t *testing.T) {
	b := New(76, 86, nil)
	if err := b.LearnPortrait("hero", solid(10, 10, red)); err == nil {
		t.Error("expected error for undersized portrait")
	}
}

func TestLoadBaselineThenUserOverride(t *testing.T) {
	baseline := t.TempDir()
	user := t.TempDir()

	if err := imaging.Save(solid(76, 86, red), filepath.Join(baseline, "hero.png")); err != nil {
		t.Fatalf("save baseline: %v", err)
	}
	if err := imaging.Save(solid(76, 86, blue), filepath.Join(user, "hero.png")); err != nil {
		t.Fatalf("save user ref: %v", err)
	}

	b := New(76, 86, nil)
	if err := b.Load(baseline, user, filepath.Join(user, "missing-dir")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b.Len() != 1 {
		t.Fatalf("Len = %d, want 1", b.Len())
	}
	// User directory loads after baseline and wins.
	if id, _, ok := b.Classify(solid(76, 86, blue)); !ok || id != "hero" {
		t.Error("user override was not applied")
	}
}

func TestFilePersisterRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "refs")
	b := New(76, 86, &FilePersister{Dir: dir})
	if err := b.Learn("hero", solid(76, 86, red)); err != nil {
		t.Fatalf("Learn: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "hero.png")); err != nil {
		t.Fatalf("persisted file missing: %v", err)
	}

	reloaded := New(76, 86, nil)
	if err := reloaded.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if id, _, ok := reloaded.Classify(solid(76, 86, red)); !ok || id != "hero" {
		t.Error("reloaded reference does not classify")
	}
}
