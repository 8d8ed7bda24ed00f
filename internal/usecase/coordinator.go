package usecase

import (
	"context"
	"sync"
	"time"

	"caffeine/internal/domain"
	"caffeine/internal/logging"
)

// DefaultRecheckInterval is how often Run re-evaluates the schedule window.
const DefaultRecheckInterval = time.Minute

// KeepAwakeUseCase is the primary port for the keep-awake controller.
// This represents the application's use cases.
type KeepAwakeUseCase interface {
	Run(ctx context.Context)
	Recheck()
	TogglePause() domain.Status
	Status() domain.Status
	Settings() domain.Settings
	UpdateSettings(settings domain.Settings) error
	OnStatus(fn func(domain.Status))
	OnAnnouncement(fn func(domain.Announcement))
}

// StateCoordinator reconciles the user's pause flag with the schedule
// window and starts or stops the activity service accordingly.
// All control calls are serialized by mu.
type StateCoordinator struct {
	window   *domain.ScheduleWindow
	activity Activity
	store    *SettingsStore
	clock    Clock

	// RecheckInterval is the period of Run's schedule checks.
	RecheckInterval time.Duration

	mu       sync.Mutex
	settings domain.Settings
	paused   bool
	outside  bool
	status   domain.Status

	obsMu        sync.RWMutex
	statusSubs   []func(domain.Status)
	announceSubs []func(domain.Announcement)
}

var _ KeepAwakeUseCase = (*StateCoordinator)(nil)

// NewStateCoordinator loads the settings and wires the ping notifications.
// The activity service is not started until Init or Run.
func NewStateCoordinator(store *SettingsStore, activity Activity, clock Clock) *StateCoordinator {
	if clock == nil {
		clock = RealClock()
	}
	settings := store.Load()
	activity.SetIntervalSeconds(settings.Service.IntervalSeconds)
	activity.SetKeepDisplayOn(settings.Service.KeepDisplayOn)

	c := &StateCoordinator{
		window:          domain.NewScheduleWindow(),
		activity:        activity,
		store:           store,
		clock:           clock,
		RecheckInterval: DefaultRecheckInterval,
		settings:        settings,
	}
	activity.OnPing(c.handlePing)
	return c
}

// Init evaluates the schedule once, applies the resulting state and
// announces it. It also registers autostart if the settings ask for it.
func (c *StateCoordinator) Init() {
	c.mu.Lock()
	if c.settings.StartWithSystem {
		c.store.SyncAutostart(true)
	}
	c.outside = c.window.OutsideSchedule(c.settings.Schedule, c.clock.Now())
	c.applyLocked()
	outside := c.outside
	c.mu.Unlock()

	if outside {
		c.announce(domain.Announcement{Title: "Outside Schedule", Text: "Waiting for scheduled hours."})
	} else {
		c.announce(domain.Announcement{Title: "Caffeine Active", Text: "Keeping this machine awake."})
	}
}

// Run calls Init, then rechecks the schedule every RecheckInterval until
// ctx is cancelled, and finally stops the activity service.
func (c *StateCoordinator) Run(ctx context.Context) {
	c.Init()
	defer c.activity.Stop()

	ticker := time.NewTicker(c.RecheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Infof("Coordinator shutting down")
			return
		case <-ticker.C:
			c.Recheck()
		}
	}
}

// Recheck re-evaluates the schedule window. Nothing happens unless the
// inside/outside verdict changed since the previous check.
func (c *StateCoordinator) Recheck() {
	c.mu.Lock()
	outside := c.window.OutsideSchedule(c.settings.Schedule, c.clock.Now())
	if outside == c.outside {
		c.mu.Unlock()
		return
	}
	c.outside = outside
	c.applyLocked()
	paused := c.paused
	c.mu.Unlock()

	logging.Infof("Schedule transition: outside=%t paused=%t", outside, paused)
	switch {
	case outside:
		c.announce(domain.Announcement{Title: "Outside Schedule", Text: "Caffeine paused - outside scheduled hours"})
	case !paused:
		c.announce(domain.Announcement{Title: "Schedule Active", Text: "Caffeine resumed - within scheduled hours"})
	}
}

// TogglePause flips the user pause flag and always re-applies state.
func (c *StateCoordinator) TogglePause() domain.Status {
	c.mu.Lock()
	c.paused = !c.paused
	logging.Infof("Pause toggled: paused=%t", c.paused)
	st := c.applyLocked()
	c.mu.Unlock()
	return st
}

// ApplyState starts or stops the activity service to match the current
// flags and publishes the resulting status.
func (c *StateCoordinator) ApplyState() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked()
}

func (c *StateCoordinator) applyLocked() domain.Status {
	shouldRun := !c.paused && !c.outside

	if shouldRun && !c.activity.IsRunning() {
		c.activity.Start()
	} else if !shouldRun && c.activity.IsRunning() {
		c.activity.Stop()
	}

	icon, text := domain.ResolveStatus(c.paused, c.outside)
	c.status = domain.Status{
		Icon:            icon,
		Text:            text,
		Paused:          c.paused,
		OutsideSchedule: c.outside,
		Running:         c.activity.IsRunning(),
		Pings:           c.activity.PingCount(),
	}
	c.publish(c.status)
	return c.status
}

// handlePing runs on the activity worker and must not take mu: Stop holds
// mu while it waits for the worker.
func (c *StateCoordinator) handlePing(count uint64) {
	icon, _ := domain.ResolveStatus(false, false)
	c.publish(domain.Status{
		Icon:    icon,
		Text:    domain.PingText(count),
		Running: true,
		Pings:   count,
	})
}

// Status returns the most recently applied status with a fresh ping count.
func (c *StateCoordinator) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.status
	st.Running = c.activity.IsRunning()
	st.Pings = c.activity.PingCount()
	if st.Running && st.Pings > 0 {
		st.Text = domain.PingText(st.Pings)
	}
	return st
}

// Paused reports the user pause flag.
func (c *StateCoordinator) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Settings returns a copy of the active settings.
func (c *StateCoordinator) Settings() domain.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// UpdateSettings validates and persists new settings, pushes the service
// options to the activity loop, syncs autostart and rechecks the schedule.
// Persistence is best-effort; only invalid settings return an error.
func (c *StateCoordinator) UpdateSettings(settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	prev := c.settings
	c.settings = settings
	c.activity.SetIntervalSeconds(settings.Service.IntervalSeconds)
	c.activity.SetKeepDisplayOn(settings.Service.KeepDisplayOn)
	if settings.StartWithSystem != prev.StartWithSystem {
		c.store.SyncAutostart(settings.StartWithSystem)
	}
	c.mu.Unlock()

	c.store.Save(settings)
	c.Recheck()
	return nil
}

// OnStatus registers a status listener. Listeners run synchronously and
// must not call back into the coordinator.
func (c *StateCoordinator) OnStatus(fn func(domain.Status)) {
	c.obsMu.Lock()
	c.statusSubs = append(c.statusSubs, fn)
	c.obsMu.Unlock()
}

// OnAnnouncement registers a listener for transition announcements.
func (c *StateCoordinator) OnAnnouncement(fn func(domain.Announcement)) {
	c.obsMu.Lock()
	c.announceSubs = append(c.announceSubs, fn)
	c.obsMu.Unlock()
}

func (c *StateCoordinator) publish(st domain.Status) {
	c.obsMu.RLock()
	subs := c.statusSubs
	c.obsMu.RUnlock()
	for _, fn := range subs {
		fn(st)
	}
}

func (c *StateCoordinator) announce(a domain.Announcement) {
	c.obsMu.RLock()
	subs := c.announceSubs
	c.obsMu.RUnlock()
	for _, fn := range subs {
		fn(a)
	}
}
