package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"caffeine/internal/domain"
	"caffeine/internal/logging"
)

// stopJoinTimeout bounds how long Stop waits for the worker to exit.
const stopJoinTimeout = time.Second

// Activity is the control surface of the keep-awake loop used by the coordinator.
type Activity interface {
	Start()
	Stop()
	IsRunning() bool
	PingCount() uint64
	SetIntervalSeconds(seconds int)
	SetKeepDisplayOn(on bool)
	OnPing(fn func(count uint64))
}

// ActivityService keeps the machine awake while running: it holds a
// continuous busy assertion and, every interval, reinforces it once and
// injects a no-op input event.
type ActivityService struct {
	power domain.PowerAsserter
	input domain.InputInjector
	clock Clock

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running atomic.Bool

	intervalSeconds atomic.Int64
	keepDisplayOn   atomic.Bool
	pings           atomic.Uint64

	subsMu sync.RWMutex
	subs   []func(count uint64)
}

// NewActivityService creates a stopped service.
func NewActivityService(power domain.PowerAsserter, input domain.InputInjector, clock Clock, cfg domain.ServiceConfig) *ActivityService {
	if clock == nil {
		clock = RealClock()
	}
	a := &ActivityService{
		power: power,
		input: input,
		clock: clock,
	}
	a.SetIntervalSeconds(cfg.IntervalSeconds)
	a.keepDisplayOn.Store(cfg.KeepDisplayOn)
	return a
}

// Start asserts the continuous busy state and launches the worker.
// Calling Start on a running service does nothing.
func (a *ActivityService) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return
	}

	a.assert(domain.BusyContinuous | a.busyFlags())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.cancel = cancel
	a.done = done
	a.pings.Store(0)
	a.running.Store(true)

	go a.loop(ctx, done)
	logging.Infof("Keep-awake started (interval=%ds display=%t)", a.IntervalSeconds(), a.KeepDisplayOn())
}

// Stop cancels the worker, waits up to a second for it to exit and clears
// the continuous busy state. Calling Stop on a stopped service does nothing.
func (a *ActivityService) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel == nil {
		return
	}

	a.running.Store(false)
	a.cancel()

	join := time.NewTimer(stopJoinTimeout)
	select {
	case <-a.done:
	case <-join.C:
		logging.Warnf("Keep-awake worker did not exit within %s", stopJoinTimeout)
	}
	join.Stop()

	if err := a.power.ClearBusy(); err != nil {
		logging.Debugf("clear busy: %v", err)
	}
	a.cancel = nil
	a.done = nil
	logging.Infof("Keep-awake stopped after %d pings", a.pings.Load())
}

// IsRunning reports whether the worker is active.
func (a *ActivityService) IsRunning() bool {
	return a.running.Load()
}

// PingCount returns the number of ticks since the last Start.
func (a *ActivityService) PingCount() uint64 {
	return a.pings.Load()
}

// IntervalSeconds returns the current tick interval.
func (a *ActivityService) IntervalSeconds() int {
	return int(a.intervalSeconds.Load())
}

// SetIntervalSeconds changes the tick interval. A wait already in progress
// keeps its old duration; the new value applies from the next wait.
func (a *ActivityService) SetIntervalSeconds(seconds int) {
	if seconds <= 0 {
		seconds = domain.DefaultIntervalSeconds
	}
	a.intervalSeconds.Store(int64(seconds))
}

func (a *ActivityService) KeepDisplayOn() bool {
	return a.keepDisplayOn.Load()
}

// SetKeepDisplayOn takes effect at the next tick's reinforcement.
func (a *ActivityService) SetKeepDisplayOn(on bool) {
	a.keepDisplayOn.Store(on)
}

// OnPing registers fn to be called from the worker after every tick.
func (a *ActivityService) OnPing(fn func(count uint64)) {
	a.subsMu.Lock()
	a.subs = append(a.subs, fn)
	a.subsMu.Unlock()
}

func (a *ActivityService) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		if ctx.Err() != nil {
			return
		}
		wait := time.Duration(a.intervalSeconds.Load()) * time.Second
		select {
		case <-ctx.Done():
			return
		case <-a.clock.After(wait):
		}
		// A tick racing with cancellation is dropped.
		if ctx.Err() != nil {
			return
		}
		a.tick()
	}
}

func (a *ActivityService) tick() {
	count := a.pings.Add(1)

	a.assert(a.busyFlags())
	if err := a.input.InjectNoOpEvent(); err != nil {
		logging.Debugf("inject no-op input: %v", err)
	}
	logging.Tracef("ping #%d", count)

	a.subsMu.RLock()
	subs := a.subs
	a.subsMu.RUnlock()
	for _, fn := range subs {
		fn(count)
	}
}

func (a *ActivityService) busyFlags() domain.BusyFlags {
	flags := domain.BusySystem
	if a.keepDisplayOn.Load() {
		flags |= domain.BusyDisplay
	}
	return flags
}

func (a *ActivityService) assert(flags domain.BusyFlags) {
	if err := a.power.AssertBusy(flags); err != nil {
		logging.Debugf("assert busy (%s): %v", flags, err)
	}
}
