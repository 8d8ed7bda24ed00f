//go:build windows

package system

import "golang.org/x/sys/windows"

var (
	moduser32      = windows.NewLazySystemDLL("user32.dll")
	procKeybdEvent = moduser32.NewProc("keybd_event")
)

const (
	// F15 exists on no common keyboard, so nothing reacts to it.
	vkF15          = 0x7E
	keyeventfKeyUp = 0x0002
)

// KeyboardInput implements domain.InputInjector by tapping F15.
type KeyboardInput struct{}

func NewKeyboardInput() *KeyboardInput {
	return &KeyboardInput{}
}

// InjectNoOpEvent sends an F15 key down/up pair.
func (KeyboardInput) InjectNoOpEvent() error {
	if err := procKeybdEvent.Find(); err != nil {
		return err
	}
	// keybd_event returns nothing; the error from Call is the stale last error.
	procKeybdEvent.Call(vkF15, 0, 0, 0)
	procKeybdEvent.Call(vkF15, 0, keyeventfKeyUp, 0)
	return nil
}
