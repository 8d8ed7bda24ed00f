package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"caffeine/internal/domain"
)

type coordinatorFixture struct {
	coord     *StateCoordinator
	activity  *ActivityService
	now       *fakeClock
	ticks     *fakeClock
	power     *recordingPower
	repo      *memoryRepo
	autostart *fakeAutostart

	mu       sync.Mutex
	statuses []domain.Status
	notices  []domain.Announcement
}

// monday10 is Monday 2024-01-01 10:00 local time.
var monday10 = time.Date(2024, time.January, 1, 10, 0, 0, 0, time.Local)

func newCoordinatorFixture(t *testing.T, settings domain.Settings) *coordinatorFixture {
	t.Helper()
	f := &coordinatorFixture{
		now:       newFakeClock(monday10),
		ticks:     newFakeClock(monday10),
		power:     &recordingPower{},
		repo:      &memoryRepo{settings: settings},
		autostart: &fakeAutostart{enabled: true},
	}
	f.activity = NewActivityService(f.power, &recordingInput{}, f.ticks, settings.Service)
	f.coord = NewStateCoordinator(NewSettingsStore(f.repo, f.autostart), f.activity, f.now)
	f.coord.OnStatus(func(s domain.Status) {
		f.mu.Lock()
		f.statuses = append(f.statuses, s)
		f.mu.Unlock()
	})
	f.coord.OnAnnouncement(func(a domain.Announcement) {
		f.mu.Lock()
		f.notices = append(f.notices, a)
		f.mu.Unlock()
	})
	t.Cleanup(f.activity.Stop)
	return f
}

func (f *coordinatorFixture) statusCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.statuses)
}

func (f *coordinatorFixture) lastNotice() domain.Announcement {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.notices) == 0 {
		return domain.Announcement{}
	}
	return f.notices[len(f.notices)-1]
}

func (f *coordinatorFixture) noticeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notices)
}

func scheduled() domain.Settings {
	s := domain.DefaultSettings()
	s.Schedule.Enabled = true
	return s
}

func TestApplyStateRunsWhenScheduleDisabled(t *testing.T) {
	f := newCoordinatorFixture(t, domain.DefaultSettings())
	f.now.Set(time.Date(2024, time.January, 6, 3, 0, 0, 0, time.Local))

	st := f.coord.ApplyState()
	if !f.activity.IsRunning() {
		t.Fatal("activity should run when unpaused with schedule disabled")
	}
	if st.Icon != domain.IconActive || st.Text != "Active" || !st.Running {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestTogglePauseFlipsRunningState(t *testing.T) {
	f := newCoordinatorFixture(t, domain.DefaultSettings())
	f.coord.Init()
	if !f.activity.IsRunning() {
		t.Fatal("expected running after Init")
	}

	st := f.coord.TogglePause()
	if f.activity.IsRunning() || st.Running {
		t.Fatal("pause should stop the activity immediately")
	}
	if st.Icon != domain.IconPaused || st.Text != "Paused" {
		t.Fatalf("unexpected paused status %+v", st)
	}

	st = f.coord.TogglePause()
	if !f.activity.IsRunning() || st.Icon != domain.IconActive {
		t.Fatalf("resume should restart the activity: %+v", st)
	}
}

func TestRecheckFollowsScheduleWindow(t *testing.T) {
	f := newCoordinatorFixture(t, scheduled())
	f.coord.Init()
	if !f.activity.IsRunning() {
		t.Fatal("monday 10:00 is inside the default window")
	}
	if n := f.lastNotice(); n.Title != "Caffeine Active" {
		t.Fatalf("startup announcement = %+v", n)
	}

	f.now.Set(monday10.Add(9 * time.Hour))
	f.coord.Recheck()
	if f.activity.IsRunning() {
		t.Fatal("leaving the window should stop the activity")
	}
	st := f.coord.Status()
	if st.Icon != domain.IconScheduledWait || st.Text != "Outside schedule" {
		t.Fatalf("unexpected status %+v", st)
	}
	if n := f.lastNotice(); n.Title != "Outside Schedule" {
		t.Fatalf("announcement = %+v", n)
	}

	before, notices := f.statusCount(), f.noticeCount()
	f.now.Set(monday10.Add(10 * time.Hour))
	f.coord.Recheck()
	if f.statusCount() != before || f.noticeCount() != notices {
		t.Fatal("unchanged verdict must not publish anything")
	}

	f.now.Set(monday10.Add(24 * time.Hour))
	f.coord.Recheck()
	if !f.activity.IsRunning() {
		t.Fatal("re-entering the window should restart the activity")
	}
	if n := f.lastNotice(); n.Title != "Schedule Active" {
		t.Fatalf("announcement = %+v", n)
	}
}

func TestPausedOutsideScheduleStaysStopped(t *testing.T) {
	f := newCoordinatorFixture(t, scheduled())
	f.coord.Init()
	f.coord.TogglePause()

	f.now.Set(monday10.Add(9 * time.Hour))
	f.coord.Recheck()
	st := f.coord.Status()
	if st.Icon != domain.IconPaused || st.Text != "Paused (outside schedule)" {
		t.Fatalf("paused must win over outside schedule: %+v", st)
	}

	notices := f.noticeCount()
	f.now.Set(monday10.Add(24 * time.Hour))
	f.coord.Recheck()
	if f.activity.IsRunning() {
		t.Fatal("paused coordinator must not start the activity")
	}
	if f.noticeCount() != notices {
		t.Fatalf("no resume announcement while paused, got %+v", f.lastNotice())
	}
	if st := f.coord.Status(); st.Text != "Paused" {
		t.Fatalf("status = %+v", st)
	}
}

func TestInitOutsideScheduleWaits(t *testing.T) {
	f := newCoordinatorFixture(t, scheduled())
	f.now.Set(time.Date(2024, time.January, 6, 12, 0, 0, 0, time.Local))
	f.coord.Init()

	if f.activity.IsRunning() {
		t.Fatal("saturday is outside a weekday schedule")
	}
	if n := f.lastNotice(); n.Title != "Outside Schedule" {
		t.Fatalf("announcement = %+v", n)
	}
}

func TestInitRegistersAutostart(t *testing.T) {
	f := newCoordinatorFixture(t, domain.DefaultSettings())
	f.autostart.enabled = false
	f.coord.Init()
	if len(f.autostart.setCalls) != 1 || !f.autostart.setCalls[0] {
		t.Fatalf("autostart calls = %v, want [true]", f.autostart.setCalls)
	}
}

func TestInitLeavesAutostartAloneWhenNotRequested(t *testing.T) {
	s := domain.DefaultSettings()
	s.StartWithSystem = false
	f := newCoordinatorFixture(t, s)
	f.coord.Init()
	if len(f.autostart.setCalls) != 0 {
		t.Fatalf("autostart calls = %v, want none", f.autostart.setCalls)
	}
}

func TestUpdateSettings(t *testing.T) {
	f := newCoordinatorFixture(t, domain.DefaultSettings())
	f.coord.Init()

	bad := domain.DefaultSettings()
	bad.Service.IntervalSeconds = 7
	if err := f.coord.UpdateSettings(bad); err == nil {
		t.Fatal("expected validation error")
	}
	if len(f.repo.saved) != 0 {
		t.Fatal("invalid settings must not be saved")
	}

	next := domain.DefaultSettings()
	next.Service.IntervalSeconds = 120
	next.Service.KeepDisplayOn = false
	next.StartWithSystem = false
	next.Schedule.Enabled = true
	next.Schedule.ActiveDays = domain.NewWeekdaySet(time.Sunday)
	if err := f.coord.UpdateSettings(next); err != nil {
		t.Fatal(err)
	}

	if f.activity.IntervalSeconds() != 120 || f.activity.KeepDisplayOn() {
		t.Fatalf("service options not pushed: %d %t", f.activity.IntervalSeconds(), f.activity.KeepDisplayOn())
	}
	if len(f.repo.saved) != 1 || f.repo.saved[0] != next {
		t.Fatalf("saved = %+v", f.repo.saved)
	}
	if len(f.autostart.setCalls) != 1 || f.autostart.setCalls[0] {
		t.Fatalf("autostart calls = %v, want [false]", f.autostart.setCalls)
	}
	if f.activity.IsRunning() {
		t.Fatal("monday is outside a sunday-only schedule")
	}
	if f.coord.Settings() != next {
		t.Fatal("Settings() should return the new settings")
	}
}

func TestUpdateSettingsSaveFailureIsNotFatal(t *testing.T) {
	f := newCoordinatorFixture(t, domain.DefaultSettings())
	f.repo.saveErr = errBoom

	next := domain.DefaultSettings()
	next.Service.IntervalSeconds = 60
	if err := f.coord.UpdateSettings(next); err != nil {
		t.Fatalf("save failure should be swallowed: %v", err)
	}
	if f.coord.Settings().Service.IntervalSeconds != 60 {
		t.Fatal("settings should apply even when not persisted")
	}
}

func TestPingPublishesStatus(t *testing.T) {
	f := newCoordinatorFixture(t, domain.DefaultSettings())
	f.coord.Init()

	f.ticks.BlockUntilWaiters(t, 1)
	f.ticks.Advance(30 * time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for {
		f.mu.Lock()
		last := f.statuses[len(f.statuses)-1]
		f.mu.Unlock()
		if last.Text == "Active (ping #1)" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("no ping status, last = %+v", last)
		}
		time.Sleep(time.Millisecond)
	}
	if st := f.coord.Status(); st.Pings != 1 || st.Text != "Active (ping #1)" {
		t.Fatalf("Status() = %+v", st)
	}
}

func TestRunStopsActivityOnCancel(t *testing.T) {
	f := newCoordinatorFixture(t, domain.DefaultSettings())
	f.coord.RecheckInterval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.coord.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !f.activity.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("Run did not start the activity")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if f.activity.IsRunning() {
		t.Fatal("Run should stop the activity on exit")
	}
	if f.power.Clears() != 1 {
		t.Fatalf("ClearBusy calls = %d, want 1", f.power.Clears())
	}
}
