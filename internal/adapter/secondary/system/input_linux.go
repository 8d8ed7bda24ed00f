//go:build linux

package system

import (
	"os"

	"caffeine/internal/domain"
)

// XdotoolInput implements domain.InputInjector with a zero-distance pointer move.
type XdotoolInput struct{}

func NewXdotoolInput() *XdotoolInput {
	return &XdotoolInput{}
}

func (XdotoolInput) InjectNoOpEvent() error {
	if os.Getenv("DISPLAY") == "" {
		return domain.ErrUnsupported
	}
	return fire("xdotool", "mousemove_relative", "--", "0", "0")
}
