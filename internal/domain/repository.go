package domain

// SettingsRepository is a secondary port that defines how to persist settings.
// This interface is defined in the domain layer and implemented by adapters.
type SettingsRepository interface {
	Load() (Settings, error)
	Save(settings Settings) error
}

// BusyFlags select what a power assertion keeps awake.
type BusyFlags uint8

const (
	// BusyContinuous holds the assertion until ClearBusy. Without it the
	// assertion only resets the idle timers once.
	BusyContinuous BusyFlags = 1 << iota
	BusySystem
	BusyDisplay
)

func (f BusyFlags) Has(flag BusyFlags) bool {
	return f&flag != 0
}

func (f BusyFlags) String() string {
	s := ""
	add := func(name string) {
		if s != "" {
			s += "|"
		}
		s += name
	}
	if f.Has(BusyContinuous) {
		add("continuous")
	}
	if f.Has(BusySystem) {
		add("system")
	}
	if f.Has(BusyDisplay) {
		add("display")
	}
	if s == "" {
		return "none"
	}
	return s
}

// PowerAsserter is a secondary port over the OS "system busy" signal.
type PowerAsserter interface {
	AssertBusy(flags BusyFlags) error
	ClearBusy() error
}

// InputInjector is a secondary port that sends one user-imperceptible input event.
type InputInjector interface {
	InjectNoOpEvent() error
}

// Autostarter is a secondary port over the OS launch-at-login mechanism.
type Autostarter interface {
	IsEnabled() (bool, error)
	SetEnabled(enabled bool) error
}
