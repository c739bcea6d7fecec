// Package fs keeps shell files in the data directory: persisted settings and
// the debug log.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/bft-labs/walletshell/internal/domain"
)

const settingsFileName = "settings.json"

// SettingsFile persists domain.Options as JSON in the data directory.
type SettingsFile struct {
	dir string
}

// NewSettingsFile creates a SettingsFile for the given directory.
func NewSettingsFile(dir string) *SettingsFile {
	return &SettingsFile{dir: dir}
}

// Load reads the saved options. A missing file yields zero options and no
// error.
func (s *SettingsFile) Load(ctx context.Context) (domain.Options, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Options{}, nil
		}
		return domain.Options{}, err
	}

	var opts domain.Options
	if err := json.Unmarshal(data, &opts); err != nil {
		return domain.Options{}, err
	}
	return opts, nil
}

// Save writes opts atomically.
func (s *SettingsFile) Save(ctx context.Context, opts domain.Options) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	path := s.Path()
	tmp := path + ".tmp"

	data, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Reset deletes the saved options so the next start uses defaults.
func (s *SettingsFile) Reset() error {
	err := os.Remove(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ResetIfRequested returns a cleanup that resets the settings when opts
// asks for it at the time the cleanup runs.
func (s *SettingsFile) ResetIfRequested(opts *domain.Options) func() error {
	return func() error {
		if opts == nil || !opts.ResetSettings {
			return nil
		}
		return s.Reset()
	}
}

// Path returns the full path to the settings file.
func (s *SettingsFile) Path() string {
	return filepath.Join(s.dir, settingsFileName)
}
