//go:build linux

package system

import (
	"os"
	"os/exec"
	"syscall"

	"caffeine/internal/domain"
)

func newPlatform() Platform {
	home, _ := os.UserHomeDir()
	return Platform{
		Power:     NewSystemdInhibitor(),
		Input:     NewXdotoolInput(),
		Autostart: NewXDGAutostart(home, executable()),
	}
}

// The kernel sends SIGTERM to the helper if we die first.
func setParentDeathSignal(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.SIGTERM}
}

// SystemdInhibitor implements domain.PowerAsserter with a systemd-inhibit
// child process. One-shot display assertions reset the X screensaver.
type SystemdInhibitor struct {
	proc inhibitProcess
}

func NewSystemdInhibitor() *SystemdInhibitor {
	return &SystemdInhibitor{}
}

func (s *SystemdInhibitor) AssertBusy(flags domain.BusyFlags) error {
	if flags.Has(domain.BusyContinuous) {
		return s.proc.hold(systemdInhibitArgs(flags))
	}
	if flags.Has(domain.BusyDisplay) && os.Getenv("DISPLAY") != "" {
		return fire("xset", "s", "reset")
	}
	return nil
}

func (s *SystemdInhibitor) ClearBusy() error {
	s.proc.release()
	return nil
}

func systemdInhibitArgs(flags domain.BusyFlags) []string {
	what := "sleep"
	if flags.Has(domain.BusyDisplay) {
		what = "idle:sleep"
	}
	return []string{
		"systemd-inhibit",
		"--what=" + what,
		"--who=" + AppName,
		"--why=Keeping the system awake",
		"--mode=block",
		"sleep", "infinity",
	}
}
