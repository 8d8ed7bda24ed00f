package system

import (
	"sync"

	"caffeine/internal/domain"
	"caffeine/internal/logging"
)

// NoopPower implements domain.PowerAsserter with no-op behavior.
// Useful for --dry-run or unsupported platforms.
type NoopPower struct{}

// NewNoopPower creates a new no-op power asserter.
func NewNoopPower() domain.PowerAsserter {
	return &NoopPower{}
}

// AssertBusy only logs.
func (n *NoopPower) AssertBusy(flags domain.BusyFlags) error {
	logging.Tracef("noop: assert busy %s", flags)
	return nil
}

// ClearBusy only logs.
func (n *NoopPower) ClearBusy() error {
	logging.Tracef("noop: clear busy")
	return nil
}

// NoopInput implements domain.InputInjector with no-op behavior.
type NoopInput struct{}

// NewNoopInput creates a new no-op input injector.
func NewNoopInput() domain.InputInjector {
	return &NoopInput{}
}

// InjectNoOpEvent does nothing and always succeeds.
func (n *NoopInput) InjectNoOpEvent() error {
	return nil
}

// NoopAutostart keeps the autostart flag in memory only.
type NoopAutostart struct {
	mu      sync.Mutex
	enabled bool
}

func NewNoopAutostart() domain.Autostarter {
	return &NoopAutostart{}
}

func (n *NoopAutostart) IsEnabled() (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enabled, nil
}

func (n *NoopAutostart) SetEnabled(enabled bool) error {
	n.mu.Lock()
	n.enabled = enabled
	n.mu.Unlock()
	return nil
}
