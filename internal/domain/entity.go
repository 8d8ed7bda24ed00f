package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall clock time with minute granularity, stored as minutes since midnight.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from hour and minute.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, hour, minute)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// MustTimeOfDay is NewTimeOfDay for constants.
func MustTimeOfDay(hour, minute int) TimeOfDay {
	t, err := NewTimeOfDay(hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

// TimeOfDayOf returns the time of day of t, truncated to the minute.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS". Seconds are dropped.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
		nums[i] = n
	}
	if len(nums) == 3 && (nums[2] < 0 || nums[2] > 59) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return NewTimeOfDay(nums[0], nums[1])
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// WeekdaySet is a set of weekdays, one bit per time.Weekday.
type WeekdaySet uint8

// Weekdays is Monday through Friday.
const Weekdays WeekdaySet = 1<<time.Monday | 1<<time.Tuesday | 1<<time.Wednesday | 1<<time.Thursday | 1<<time.Friday

// AllDays contains every weekday.
const AllDays WeekdaySet = Weekdays | 1<<time.Saturday | 1<<time.Sunday

// NewWeekdaySet builds a set from the given days.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<d) != 0
}

func (s WeekdaySet) With(d time.Weekday) WeekdaySet {
	return s | 1<<d
}

func (s WeekdaySet) Without(d time.Weekday) WeekdaySet {
	return s &^ (1 << d)
}

// Days lists the members in Sunday-first order.
func (s WeekdaySet) Days() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s WeekdaySet) String() string {
	names := make([]string, 0, 7)
	for _, d := range s.Days() {
		names = append(names, d.String()[:3])
	}
	return strings.Join(names, ",")
}

func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, 7)
	for _, d := range s.Days() {
		names = append(names, d.String())
	}
	return json.Marshal(names)
}

func (s *WeekdaySet) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	var out WeekdaySet
	for _, n := range names {
		d, err := ParseWeekday(n)
		if err != nil {
			return err
		}
		out = out.With(d)
	}
	*s = out
	return nil
}

// ParseWeekday accepts full English day names or their 3-letter prefix, any case.
func ParseWeekday(s string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if v == name || (len(v) == 3 && strings.HasPrefix(name, v)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}

// ParseWeekdaySet parses a comma separated list of days. "weekdays" and "all" are accepted as shorthands.
func ParseWeekdaySet(s string) (WeekdaySet, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekdays":
		return Weekdays, nil
	case "all", "everyday":
		return AllDays, nil
	case "", "none":
		return 0, nil
	}
	var out WeekdaySet
	for _, part := range strings.Split(s, ",") {
		d, err := ParseWeekday(part)
		if err != nil {
			return 0, err
		}
		out = out.With(d)
	}
	return out, nil
}

// ScheduleConfig is the window during which keep-awake is allowed to run.
// Start may be after End; such windows wrap past midnight.
type ScheduleConfig struct {
	Enabled    bool
	Start      TimeOfDay
	End        TimeOfDay
	ActiveDays WeekdaySet
}

// ServiceConfig tunes the activity loop.
type ServiceConfig struct {
	IntervalSeconds int
	KeepDisplayOn   bool
}

// Interval returns IntervalSeconds as a duration.
func (c ServiceConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Settings is everything the user can change and persist.
type Settings struct {
	Schedule        ScheduleConfig
	Service         ServiceConfig
	StartWithSystem bool
}

// AllowedIntervals are the ping intervals offered to the user, in seconds.
var AllowedIntervals = []int{30, 60, 120}

const DefaultIntervalSeconds = 30

// Validate checks if the settings values are usable.
func (s Settings) Validate() error {
	if !slices.Contains(AllowedIntervals, s.Service.IntervalSeconds) {
		return fmt.Errorf("%w: %d", ErrInvalidInterval, s.Service.IntervalSeconds)
	}
	if s.Schedule.Start < 0 || s.Schedule.Start >= 24*60 {
		return fmt.Errorf("%w: start %d", ErrInvalidTimeOfDay, s.Schedule.Start)
	}
	if s.Schedule.End < 0 || s.Schedule.End >= 24*60 {
		return fmt.Errorf("%w: end %d", ErrInvalidTimeOfDay, s.Schedule.End)
	}
	return nil
}

// DefaultSettings returns the values used when nothing valid is persisted.
func DefaultSettings() Settings {
	return Settings{
		Schedule: ScheduleConfig{
			Enabled:    false,
			Start:      MustTimeOfDay(9, 0),
			End:        MustTimeOfDay(18, 0),
			ActiveDays: Weekdays,
		},
		Service: ServiceConfig{
			IntervalSeconds: DefaultIntervalSeconds,
			KeepDisplayOn:   true,
		},
		StartWithSystem: true,
	}
}
