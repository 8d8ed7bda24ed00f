package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"caffeine/internal/domain"
)

// FileRepository implements domain.SettingsRepository using a JSON file.
// This is a secondary adapter.
type FileRepository struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewFileRepository creates a new file-based settings repository on the OS filesystem.
func NewFileRepository(path string) (*FileRepository, error) {
	return NewFileRepositoryFs(afero.NewOsFs(), path)
}

// NewFileRepositoryFs creates a repository on the given filesystem.
func NewFileRepositoryFs(fs afero.Fs, path string) (*FileRepository, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	return &FileRepository{fs: fs, path: path}, nil
}

// Path returns the settings file location.
func (f *FileRepository) Path() string {
	return f.path
}

// persistedData represents the JSON structure on disk.
type persistedData struct {
	ScheduleEnabled     bool              `json:"scheduleEnabled"`
	StartTime           domain.TimeOfDay  `json:"startTime"`
	EndTime             domain.TimeOfDay  `json:"endTime"`
	ActiveDays          domain.WeekdaySet `json:"activeDays"`
	StartWithSystem     bool              `json:"startWithSystem"`
	PingIntervalSeconds int               `json:"pingIntervalSeconds"`
	KeepDisplayOn       bool              `json:"keepDisplayOn"`
}

func toPersisted(s domain.Settings) persistedData {
	return persistedData{
		ScheduleEnabled:     s.Schedule.Enabled,
		StartTime:           s.Schedule.Start,
		EndTime:             s.Schedule.End,
		ActiveDays:          s.Schedule.ActiveDays,
		StartWithSystem:     s.StartWithSystem,
		PingIntervalSeconds: s.Service.IntervalSeconds,
		KeepDisplayOn:       s.Service.KeepDisplayOn,
	}
}

func (p persistedData) toDomain() domain.Settings {
	return domain.Settings{
		Schedule: domain.ScheduleConfig{
			Enabled:    p.ScheduleEnabled,
			Start:      p.StartTime,
			End:        p.EndTime,
			ActiveDays: p.ActiveDays,
		},
		Service: domain.ServiceConfig{
			IntervalSeconds: p.PingIntervalSeconds,
			KeepDisplayOn:   p.KeepDisplayOn,
		},
		StartWithSystem: p.StartWithSystem,
	}
}

// Load reads the settings from disk. A missing file yields the defaults.
// Fields absent from the file keep their default values.
func (f *FileRepository) Load() (domain.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultSettings(), nil
		}
		return domain.Settings{}, fmt.Errorf("read settings: %w", err)
	}

	persisted := toPersisted(domain.DefaultSettings())
	if err := json.Unmarshal(data, &persisted); err != nil {
		return domain.Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}

	settings := persisted.toDomain()
	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// Save persists the settings to disk, replacing the whole file.
func (f *FileRepository) Save(settings domain.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(toPersisted(settings), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Atomic write
	tmp := f.path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := f.fs.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename tmp: %w", err)
	}

	return nil
}

// DefaultPath returns the default settings file path.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "caffeine", "settings.json")
	}
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, "caffeine-settings.json")
}
