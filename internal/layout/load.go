package layout

import (
	"encoding/json"
	"os"

	"github.com/draftlens/draftlens/internal/errors"
)

// Load reads a layout template from a JSON file. Fields absent from the file
// keep their zero value; the reference resolution must be present.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeConfigInvalid, "reading layout template %q", path)
	}
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrapf(err, errors.CodeConfigInvalid, "parsing layout template %q", path)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the template for values the resolver cannot work with.
func (t *Template) Validate() error {
	if t.ScreenSize.X <= 0 || t.ScreenSize.Y <= 0 {
		return errors.Newf(errors.CodeConfigInvalid, "layout base resolution %dx%d is invalid", t.ScreenSize.X, t.ScreenSize.Y)
	}
	for _, p := range [...]Point{t.MapSize, t.TimerSize, t.BanSize, t.PlayerSize, t.NameSize} {
		if p.X <= 0 || p.Y <= 0 {
			return errors.New(errors.CodeConfigInvalid, "layout region size missing or non-positive")
		}
	}
	return nil
}
