package usecase

import (
	"errors"
	"sync"
	"testing"
	"time"

	"caffeine/internal/domain"
)

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []fakeWaiter
}

type fakeWaiter struct {
	until time.Time
	ch    chan time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.waiters = append(c.waiters, fakeWaiter{until: c.now.Add(d), ch: ch})
	return ch
}

// Advance moves time forward and fires every waiter that became due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	pending := c.waiters[:0]
	for _, w := range c.waiters {
		if !w.until.After(c.now) {
			w.ch <- c.now
			continue
		}
		pending = append(pending, w)
	}
	c.waiters = pending
}

func (c *fakeClock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

// BlockUntilWaiters waits until n goroutines are parked in After.
func (c *fakeClock) BlockUntilWaiters(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for c.Waiters() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d clock waiters (have %d)", n, c.Waiters())
		}
		time.Sleep(time.Millisecond)
	}
}

type recordingPower struct {
	mu      sync.Mutex
	asserts []domain.BusyFlags
	clears  int
	err     error
}

func (p *recordingPower) AssertBusy(flags domain.BusyFlags) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asserts = append(p.asserts, flags)
	return p.err
}

func (p *recordingPower) ClearBusy() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clears++
	return p.err
}

func (p *recordingPower) Asserts() []domain.BusyFlags {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.BusyFlags(nil), p.asserts...)
}

func (p *recordingPower) Clears() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clears
}

type recordingInput struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (i *recordingInput) InjectNoOpEvent() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls++
	return i.err
}

func (i *recordingInput) Calls() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.calls
}

type memoryRepo struct {
	mu       sync.Mutex
	settings domain.Settings
	loadErr  error
	saveErr  error
	saved    []domain.Settings
}

func (r *memoryRepo) Load() (domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings, r.loadErr
}

func (r *memoryRepo) Save(s domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, s)
	if r.saveErr != nil {
		return r.saveErr
	}
	r.settings = s
	return nil
}

type fakeAutostart struct {
	mu       sync.Mutex
	enabled  bool
	setCalls []bool
	err      error
}

func (a *fakeAutostart) IsEnabled() (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled, a.err
}

func (a *fakeAutostart) SetEnabled(enabled bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.setCalls = append(a.setCalls, enabled)
	if a.err != nil {
		return a.err
	}
	a.enabled = enabled
	return nil
}

var errBoom = errors.New("boom")

func waitPing(t *testing.T, ch <-chan uint64, want uint64) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Fatalf("ping = %d, want %d", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for ping %d", want)
	}
}
