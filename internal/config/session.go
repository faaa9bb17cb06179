package config

import (
	"path/filepath"
	"sync"
)

// Session pins the settings file for one run of the tool. The path is
// resolved once when the session starts; Reload re-reads the same file.
type Session struct {
	workDir      string
	settingsPath string

	mu       sync.Mutex
	settings *Settings
}

// StartSession loads the settings for workDir.
func StartSession(workDir string) (*Session, error) {
	s, err := Load(workDir)
	if err != nil {
		return nil, err
	}
	return &Session{
		workDir:      s.WorkDir(),
		settingsPath: filepath.Join(s.WorkDir(), FileName),
		settings:     s,
	}, nil
}

// WorkDir is the absolute working directory.
func (s *Session) WorkDir() string { return s.workDir }

// SettingsPath is the settings file the session was started with.
func (s *Session) SettingsPath() string { return s.settingsPath }

// Settings returns the most recently loaded settings.
func (s *Session) Settings() *Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Reload re-reads the settings file. On error the previous settings stay
// in effect.
func (s *Session) Reload() (*Settings, error) {
	next, err := Load(s.workDir)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.settings = next
	s.mu.Unlock()
	return next, nil
}
