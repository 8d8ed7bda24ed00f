package domain

import "time"

// ScheduleWindow provides pure domain logic for the schedule.
// This service has no side effects and no dependencies on external concerns.
type ScheduleWindow struct{}

// NewScheduleWindow creates a new schedule window evaluator.
func NewScheduleWindow() *ScheduleWindow {
	return &ScheduleWindow{}
}

// Evaluate reports whether now falls inside the configured window.
// A disabled schedule is always active. Both ends of the window are inclusive
// at minute granularity, and a window whose start is after its end wraps past midnight.
func (w *ScheduleWindow) Evaluate(cfg ScheduleConfig, now time.Time) bool {
	if !cfg.Enabled {
		return true
	}
	if !cfg.ActiveDays.Has(now.Weekday()) {
		return false
	}

	t := TimeOfDayOf(now)
	if cfg.Start <= cfg.End {
		return t >= cfg.Start && t <= cfg.End
	}
	// Overnight window, e.g. 22:00-06:00
	return t >= cfg.Start || t <= cfg.End
}

// OutsideSchedule is true when the schedule is enabled and now is not in it.
func (w *ScheduleWindow) OutsideSchedule(cfg ScheduleConfig, now time.Time) bool {
	return cfg.Enabled && !w.Evaluate(cfg, now)
}
