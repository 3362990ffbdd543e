package file

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// PreferenceStore persists the sound-enabled flag under its own key (file).
// Missing or corrupt data reads as the default.
type PreferenceStore struct {
	path string
}

func NewPreferenceStore(path string) *PreferenceStore {
	return &PreferenceStore{path: path}
}

type soundPreference struct {
	SoundEnabled bool `json:"soundEnabled"`
}

// SoundEnabled reports the stored preference, or the fallback when unset.
func (s *PreferenceStore) SoundEnabled(fallback bool) bool {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fallback
	}
	var pref soundPreference
	if err := json.Unmarshal(data, &pref); err != nil {
		return fallback
	}
	return pref.SoundEnabled
}

// SetSoundEnabled stores the preference.
func (s *PreferenceStore) SetSoundEnabled(enabled bool) error {
	data, err := json.Marshal(soundPreference{SoundEnabled: enabled})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Reset removes the stored preference.
func (s *PreferenceStore) Reset() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
