// Package system holds the OS adapters for power assertions, input
// injection and launch-at-login registration.
// See power_*.go, input_*.go and autostart_*.go for the platform variants.
package system

import (
	"os"
	"path/filepath"

	"caffeine/internal/domain"
)

// AppName is used for process names, autostart entries and inhibitor owners.
const AppName = "Caffeine"

// Platform bundles the secondary ports for the current OS.
type Platform struct {
	Power     domain.PowerAsserter
	Input     domain.InputInjector
	Autostart domain.Autostarter
}

// New returns the adapters for the running OS.
func New() Platform {
	return newPlatform()
}

// Noop returns adapters that touch nothing. Autostart state is kept in memory.
func Noop() Platform {
	return Platform{
		Power:     NewNoopPower(),
		Input:     NewNoopInput(),
		Autostart: NewNoopAutostart(),
	}
}

// executable returns the absolute path of the running binary.
func executable() string {
	exe, err := os.Executable()
	if err != nil {
		return os.Args[0]
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		return resolved
	}
	return exe
}
