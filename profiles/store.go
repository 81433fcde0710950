// Package profiles is the read-only table of instrument profiles, grouped in
// categories such as strings, woodwinds and brass.
package profiles

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/vsariola/partials"
	"gopkg.in/yaml.v2"
)

//go:embed presets/*
var instrumentPresetFS embed.FS

type (
	// Store holds instrument profiles by category. Within a category, the
	// instruments keep the order in which they were registered, which is the
	// order they appear in the preset file.
	Store struct {
		categories map[string][]partials.InstrumentProfile
	}

	// presetFile is the contents of one presets/<category>.yml file
	presetFile struct {
		Instruments []partials.InstrumentProfile
	}
)

var (
	defaultOnce  sync.Once
	defaultStore *Store
)

// Default returns the store of the built-in presets. It panics if the
// embedded presets are broken.
func Default() *Store {
	defaultOnce.Do(func() {
		s, err := Load(instrumentPresetFS)
		if err != nil {
			panic(fmt.Errorf("failed to load built-in presets: %w", err))
		}
		defaultStore = s
	})
	return defaultStore
}

// LoadUser returns the built-in presets, extended with the presets found in
// the "presets" directory of the user's configuration directory. A user
// preset replaces a built-in preset with the same category and name.
func LoadUser() (*Store, error) {
	ret := Default().clone()
	dir, err := partials.ConfigDir()
	if err != nil {
		return ret, nil
	}
	if _, err := os.Stat(filepath.Join(dir, "presets")); errors.Is(err, fs.ErrNotExist) {
		return ret, nil
	}
	user, err := Load(os.DirFS(dir))
	if err != nil {
		return ret, fmt.Errorf("could not load user presets: %w", err)
	}
	ret.overlay(user)
	return ret, nil
}

// Load reads all presets/<category>.yml files of fsys. Unknown fields and
// profiles that do not validate make Load fail.
func Load(fsys fs.FS) (*Store, error) {
	s := &Store{categories: map[string][]partials.InstrumentProfile{}}
	err := fs.WalkDir(fsys, "presets", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".yml" {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("could not read %v: %w", p, err)
		}
		var file presetFile
		if err := yaml.UnmarshalStrict(data, &file); err != nil {
			return fmt.Errorf("could not parse %v: %w", p, err)
		}
		category := strings.TrimSuffix(path.Base(p), path.Ext(p))
		for _, profile := range file.Instruments {
			profile.Category = category
			if err := profile.Validate(); err != nil {
				return fmt.Errorf("%v: %w", p, err)
			}
			if s.index(category, profile.Name) >= 0 {
				return fmt.Errorf("%v: instrument %q defined twice", p, profile.Name)
			}
			s.categories[category] = append(s.categories[category], profile)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Profile returns a copy of the profile registered under category and
// instrument id.
func (s *Store) Profile(category, instrument string) (partials.InstrumentProfile, error) {
	i := s.index(category, instrument)
	if i < 0 {
		return partials.InstrumentProfile{}, fmt.Errorf("%w: instrument %v/%v", partials.ErrNotFound, category, instrument)
	}
	return s.categories[category][i].Clone(), nil
}

// Find looks up an instrument id in all categories, in the order of
// Categories, and returns the first match.
func (s *Store) Find(instrument string) (partials.InstrumentProfile, error) {
	for _, c := range s.Categories() {
		if i := s.index(c, instrument); i >= 0 {
			return s.categories[c][i].Clone(), nil
		}
	}
	return partials.InstrumentProfile{}, fmt.Errorf("%w: instrument %v", partials.ErrNotFound, instrument)
}

// Categories returns the category ids, sorted.
func (s *Store) Categories() []string {
	ret := make([]string, 0, len(s.categories))
	for k := range s.categories {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Instruments returns the instrument ids of a category in registration
// order.
func (s *Store) Instruments(category string) ([]string, error) {
	list, ok := s.categories[category]
	if !ok {
		return nil, fmt.Errorf("%w: category %v", partials.ErrNotFound, category)
	}
	ret := make([]string, len(list))
	for i, p := range list {
		ret[i] = p.Name
	}
	return ret, nil
}

// First returns the first registered instrument of a category, which user
// interfaces use as the default selection.
func (s *Store) First(category string) (partials.InstrumentProfile, error) {
	list, ok := s.categories[category]
	if !ok || len(list) == 0 {
		return partials.InstrumentProfile{}, fmt.Errorf("%w: category %v", partials.ErrNotFound, category)
	}
	return list[0].Clone(), nil
}

func (s *Store) index(category, instrument string) int {
	return slices.IndexFunc(s.categories[category], func(p partials.InstrumentProfile) bool {
		return p.Name == instrument
	})
}

func (s *Store) clone() *Store {
	ret := &Store{categories: make(map[string][]partials.InstrumentProfile, len(s.categories))}
	for k, v := range s.categories {
		ret.categories[k] = slices.Clone(v)
	}
	return ret
}

func (s *Store) overlay(o *Store) {
	for _, c := range o.Categories() {
		for _, p := range o.categories[c] {
			if i := s.index(c, p.Name); i >= 0 {
				s.categories[c][i] = p
				continue
			}
			s.categories[c] = append(s.categories[c], p)
		}
	}
}
