package usecase

import (
	"caffeine/internal/domain"
	"caffeine/internal/logging"
)

// SettingsStore wraps the repository and autostart ports with the
// best-effort semantics of the settings flow: load failures fall back to
// defaults and save failures are only logged.
type SettingsStore struct {
	repo      domain.SettingsRepository
	autostart domain.Autostarter
}

// NewSettingsStore creates a settings store. autostart may be nil.
func NewSettingsStore(repo domain.SettingsRepository, autostart domain.Autostarter) *SettingsStore {
	return &SettingsStore{repo: repo, autostart: autostart}
}

// Load returns the persisted settings, or the defaults if they are missing or unusable.
func (s *SettingsStore) Load() domain.Settings {
	settings, err := s.repo.Load()
	if err != nil {
		logging.Warnf("Settings unreadable, using defaults: %v", err)
		return domain.DefaultSettings()
	}
	if err := settings.Validate(); err != nil {
		logging.Warnf("Settings invalid, using defaults: %v", err)
		return domain.DefaultSettings()
	}
	return settings
}

// Save persists settings. Failure is logged and reported but never fatal.
func (s *SettingsStore) Save(settings domain.Settings) bool {
	if err := s.repo.Save(settings); err != nil {
		logging.Warnf("Settings not saved: %v", err)
		return false
	}
	return true
}

// AutostartEnabled reports whether the launch-at-login entry exists.
func (s *SettingsStore) AutostartEnabled() (bool, error) {
	if s.autostart == nil {
		return false, domain.ErrUnsupported
	}
	return s.autostart.IsEnabled()
}

// SyncAutostart registers or removes the launch-at-login entry so it
// matches want. It only touches the OS when the state differs.
func (s *SettingsStore) SyncAutostart(want bool) {
	if s.autostart == nil {
		return
	}
	have, err := s.autostart.IsEnabled()
	if err != nil {
		logging.Debugf("autostart query: %v", err)
		return
	}
	if have == want {
		return
	}
	if err := s.autostart.SetEnabled(want); err != nil {
		logging.Warnf("Autostart not updated: %v", err)
		return
	}
	logging.Infof("Autostart enabled=%t", want)
}
