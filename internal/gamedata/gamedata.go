// Package gamedata holds the known hero and battleground roster used to
// validate and correct recognized text. The roster itself is static per game
// version; user corrections learned at runtime are layered on top and
// persisted as JSON.
package gamedata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/draftlens/draftlens/internal/errors"
)

// Hero is one playable character.
type Hero struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// rosterFile is the on-disk shape of a roster override or correction set.
type rosterFile struct {
	Heroes        []Hero            `json:"heroes,omitempty"`
	Maps          []string          `json:"maps,omitempty"`
	Substitutions map[string]string `json:"substitutions,omitempty"`
	Corrections   map[string]string `json:"corrections,omitempty"`
}

// Roster answers existence and correction queries about heroes and maps.
// Reads vastly outnumber writes; corrections arrive only on explicit user
// action.
type Roster struct {
	mu            sync.RWMutex
	heroesByName  map[string]Hero // key: normalized display name
	heroesByID    map[string]Hero
	maps          map[string]bool // key: normalized map name
	substitutions map[string]string
	corrections   map[string]string
	path          string // corrections file, empty = in-memory only
}

// NewRoster builds a roster from explicit data. Substitutions map known OCR
// misreads of hero names to the canonical display name.
func NewRoster(heroes []Hero, maps []string, substitutions map[string]string) *Roster {
	r := &Roster{
		heroesByName:  make(map[string]Hero, len(heroes)),
		heroesByID:    make(map[string]Hero, len(heroes)),
		maps:          make(map[string]bool, len(maps)),
		substitutions: make(map[string]string, len(substitutions)),
		corrections:   make(map[string]string),
	}
	for _, h := range heroes {
		r.heroesByName[Normalize(h.Name)] = h
		r.heroesByID[h.ID] = h
	}
	for _, m := range maps {
		r.maps[Normalize(m)] = true
	}
	for raw, canonical := range substitutions {
		r.substitutions[Normalize(raw)] = canonical
	}
	return r
}

// Normalize prepares raw OCR output for roster lookups: trim, collapse
// internal whitespace, uppercase.
func Normalize(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// HeroExists reports whether name resolves to a known hero after
// normalization and correction.
func (r *Roster) HeroExists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.heroesByName[Normalize(r.correctLocked(name))]
	return ok
}

// MapExists reports whether name is a known battleground.
func (r *Roster) MapExists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.maps[Normalize(name)]
}

// CorrectHeroName maps raw recognized text to the canonical hero display
// name, consulting learned corrections first and then the built-in
// substitution table. Unknown text comes back normalized but otherwise
// untouched.
func (r *Roster) CorrectHeroName(raw string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Normalize(r.correctLocked(raw))
}

func (r *Roster) correctLocked(raw string) string {
	key := Normalize(raw)
	if canonical, ok := r.corrections[key]; ok {
		return canonical
	}
	if canonical, ok := r.substitutions[key]; ok {
		return canonical
	}
	return key
}

// HeroID resolves a display name (raw or canonical) to the hero identifier
// used as the image-bank key.
func (r *Roster) HeroID(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.heroesByName[Normalize(r.correctLocked(name))]
	return h.ID, ok
}

// HeroName returns the canonical display name for a hero identifier.
func (r *Roster) HeroName(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.heroesByID[id]
	return h.Name, ok
}

// AddCorrection records that raw recognized text means the given canonical
// hero name, and persists the correction set when a file is attached.
func (r *Roster) AddCorrection(raw, canonical string) error {
	r.mu.Lock()
	r.corrections[Normalize(raw)] = canonical
	path := r.path
	var snapshot map[string]string
	if path != "" {
		snapshot = make(map[string]string, len(r.corrections))
		for k, v := range r.corrections {
			snapshot[k] = v
		}
	}
	r.mu.Unlock()

	if path == "" {
		return nil
	}
	return writeCorrections(path, snapshot)
}

// AttachCorrectionsFile loads previously saved corrections from path and
// arranges for future corrections to be written back there. A missing file
// is not an error; it appears on the first correction.
func (r *Roster) AttachCorrectionsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.mu.Lock()
			r.path = path
			r.mu.Unlock()
			return nil
		}
		return errors.Wrapf(err, errors.CodeConfigInvalid, "reading corrections %q", path)
	}
	var f rosterFile
	if err := json.Unmarshal(data, &f); err != nil {
		return errors.Wrapf(err, errors.CodeConfigInvalid, "parsing corrections %q", path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = path
	for raw, canonical := range f.Corrections {
		r.corrections[Normalize(raw)] = canonical
	}
	return nil
}

func writeCorrections(path string, corrections map[string]string) error {
	data, err := json.MarshalIndent(rosterFile{Corrections: corrections}, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeUnknown, "encoding corrections")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, errors.CodeUnknown, "creating directory for %q", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, errors.CodeUnknown, "writing corrections %q", path)
	}
	return nil
}
