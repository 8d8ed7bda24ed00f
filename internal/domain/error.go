package domain

import "errors"

var (
	// ErrInvalidInterval indicates that the ping interval is not one of AllowedIntervals.
	ErrInvalidInterval = errors.New("interval must be 30, 60 or 120 seconds")

	// ErrInvalidTimeOfDay indicates a malformed or out of range time of day.
	ErrInvalidTimeOfDay = errors.New("invalid time of day")

	// ErrInvalidWeekday indicates an unknown day name.
	ErrInvalidWeekday = errors.New("invalid weekday")

	// ErrUnsupported is returned by platform adapters with no implementation for the current OS.
	ErrUnsupported = errors.New("not supported on this platform")
)
