package extract

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/disintegration/imaging"
)

// DebugSink receives original/processed crop pairs for offline rule tuning.
// Implementations must never influence control flow; failures are logged and
// swallowed.
type DebugSink interface {
	Dump(rule string, original, processed image.Image)
}

// FileSink writes dump pairs as sequentially numbered PNGs into a directory.
type FileSink struct {
	Dir string
	seq atomic.Uint64
}

func (s *FileSink) Dump(rule string, original, processed image.Image) {
	n := s.seq.Add(1)
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		slog.Warn("debug dump directory", "error", err)
		return
	}
	s.write(fmt.Sprintf("%05d-%s-orig.png", n, rule), original)
	s.write(fmt.Sprintf("%05d-%s-clean.png", n, rule), processed)
}

func (s *FileSink) write(name string, img image.Image) {
	if img == nil {
		return
	}
	path := filepath.Join(s.Dir, name)
	if err := imaging.Save(img, path); err != nil {
		slog.Warn("debug dump write", "path", path, "error", err)
	}
}
