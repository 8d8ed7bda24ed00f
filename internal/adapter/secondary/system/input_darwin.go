//go:build darwin

package system

// UserActivityInput declares user activity through caffeinate -u, which
// resets the idle timers without generating a real event.
type UserActivityInput struct{}

func NewUserActivityInput() *UserActivityInput {
	return &UserActivityInput{}
}

func (UserActivityInput) InjectNoOpEvent() error {
	return fire("caffeinate", "-u", "-t", "1")
}
