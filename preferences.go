package partials

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type Preferences struct {
	SampleRate      int
	NoteDuration    float64
	NoteSpacing     float64
	Backend         string
	DefaultCategory string
	SampleCount     int

	// YmlError is the error encountered when reading or validating the
	// user's preferences.yml, if any. The built-in defaults are used in that
	// case.
	YmlError error `yaml:"-"`
}

//go:embed preferences.yml
var defaultPreferencesYaml []byte

func loadDefaultPreferences() Preferences {
	var preferences Preferences
	err := yaml.UnmarshalStrict(defaultPreferencesYaml, &preferences)
	if err != nil {
		panic(fmt.Errorf("failed to unmarshal preferences: %w", err))
	}
	return preferences
}

// ConfigDir returns the directory where user presets and preferences are
// looked up.
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "partials"), nil
}

// ReadCustomConfigYml modifies the target argument, i.e. needs a pointer
func ReadCustomConfigYml(filename string, target interface{}) (exists bool, err error) {
	dir, err := ConfigDir()
	if err != nil {
		return false, err
	}
	bytes, err2 := os.ReadFile(filepath.Join(dir, filename))
	if err2 != nil {
		return false, err2
	}
	err = yaml.Unmarshal(bytes, target)
	return true, err
}

// MakePreferences returns the built-in preferences, overridden by the user's
// preferences.yml if there is one.
func MakePreferences() Preferences {
	preferences := loadDefaultPreferences()
	custom := preferences
	exists, err := ReadCustomConfigYml("preferences.yml", &custom)
	if exists {
		if err == nil {
			err = custom.Validate()
		}
		if err == nil {
			return custom
		}
		preferences.YmlError = err
	}
	return preferences
}

// Validate checks that the numeric preferences are usable.
func (p *Preferences) Validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("samplerate should be > 0, was %v", p.SampleRate)
	}
	if err := CheckDuration(p.NoteDuration); err != nil {
		return fmt.Errorf("noteduration: %w", err)
	}
	if err := CheckDuration(p.NoteSpacing); err != nil || p.NoteSpacing == 0 {
		return fmt.Errorf("notespacing should be > 0, was %v", p.NoteSpacing)
	}
	if p.SampleCount <= 0 {
		return fmt.Errorf("samplecount should be > 0, was %v", p.SampleCount)
	}
	return nil
}

// DefaultPreferences returns the built-in preferences, ignoring the user's
// configuration.
func DefaultPreferences() Preferences { return loadDefaultPreferences() }
