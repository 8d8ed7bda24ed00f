//go:build windows

package system

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const runKeyPath = `SOFTWARE\Microsoft\Windows\CurrentVersion\Run`

// RegistryAutostart implements domain.Autostarter with a value under the
// current user's Run key.
type RegistryAutostart struct {
	name string
	exe  string
}

func NewRegistryAutostart(name, exe string) *RegistryAutostart {
	return &RegistryAutostart{name: name, exe: exe}
}

func (r *RegistryAutostart) IsEnabled() (bool, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open run key: %w", err)
	}
	defer k.Close()

	if _, _, err := k.GetStringValue(r.name); err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read run value: %w", err)
	}
	return true, nil
}

func (r *RegistryAutostart) SetEnabled(enabled bool) error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open run key: %w", err)
	}
	defer k.Close()

	if enabled {
		return k.SetStringValue(r.name, `"`+r.exe+`" run`)
	}
	if err := k.DeleteValue(r.name); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("delete run value: %w", err)
	}
	return nil
}
