package domain

import "fmt"

// Icon selects the indicator variant shown to the user.
type Icon int

const (
	IconActive Icon = iota
	IconPaused
	IconScheduledWait
)

func (i Icon) String() string {
	switch i {
	case IconActive:
		return "active"
	case IconPaused:
		return "paused"
	case IconScheduledWait:
		return "scheduled"
	default:
		return "unknown"
	}
}

func (i Icon) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// Status is the presentation data published after every state change.
type Status struct {
	Icon            Icon
	Text            string
	Paused          bool
	OutsideSchedule bool
	Running         bool
	Pings           uint64
}

// Announcement is a one-shot notice about a transition, e.g. entering the schedule window.
type Announcement struct {
	Title string
	Text  string
}

// ResolveStatus picks the icon and text for the given flags.
// Priority is paused > outside schedule > active.
func ResolveStatus(paused, outsideSchedule bool) (Icon, string) {
	switch {
	case paused && outsideSchedule:
		return IconPaused, "Paused (outside schedule)"
	case paused:
		return IconPaused, "Paused"
	case outsideSchedule:
		return IconScheduledWait, "Outside schedule"
	default:
		return IconActive, "Active"
	}
}

// PingText is the status text shown after a ping.
func PingText(count uint64) string {
	return fmt.Sprintf("Active (ping #%d)", count)
}
