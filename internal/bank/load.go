package bank

import (
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/draftlens/draftlens/internal/errors"
)

// Load reads reference portraits from the given directories in order. Later
// directories override earlier ones by hero identifier, so the bundled
// baseline goes first and the user-accumulated set second. Files are PNGs
// named <heroID>.png; unreadable files are skipped with a warning. A missing
// directory is fine, an unreadable one is not.
func (b *Bank) Load(dirs ...string) error {
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.Wrapf(err, errors.CodeBankLoadFailure, "reading reference directory %q", dir)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
				continue
			}
			heroID := strings.TrimSuffix(e.Name(), ".png")
			path := filepath.Join(dir, e.Name())
			img, err := imaging.Open(path)
			if err != nil {
				slog.Warn("skipping unreadable ban reference", "path", path, "error", err)
				continue
			}
			b.mu.Lock()
			b.refs[heroID] = normalize(img)
			b.mu.Unlock()
		}
	}
	slog.Info("ban reference bank loaded", "references", b.Len())
	return nil
}

// FilePersister writes learned references as PNG files into a directory.
type FilePersister struct {
	Dir string
}

func (p *FilePersister) SaveReference(heroID string, img image.Image) error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return errors.Wrapf(err, errors.CodeBankLoadFailure, "creating reference directory %q", p.Dir)
	}
	path := filepath.Join(p.Dir, heroID+".png")
	if err := imaging.Save(img, path); err != nil {
		return errors.Wrapf(err, errors.CodeBankLoadFailure, "saving reference %q", path)
	}
	return nil
}
