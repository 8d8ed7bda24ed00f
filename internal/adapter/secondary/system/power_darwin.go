//go:build darwin

package system

import (
	"os"
	"os/exec"
	"strconv"

	"caffeine/internal/domain"
)

func newPlatform() Platform {
	home, _ := os.UserHomeDir()
	return Platform{
		Power:     NewCaffeinate(),
		Input:     NewUserActivityInput(),
		Autostart: NewLaunchAgentAutostart(home, executable()),
	}
}

// caffeinate -w exits with us; nothing else to arrange.
func setParentDeathSignal(*exec.Cmd) {}

// Caffeinate implements domain.PowerAsserter with the caffeinate utility.
type Caffeinate struct {
	proc inhibitProcess
}

func NewCaffeinate() *Caffeinate {
	return &Caffeinate{}
}

func (c *Caffeinate) AssertBusy(flags domain.BusyFlags) error {
	if flags.Has(domain.BusyContinuous) {
		// -w <pid>: exit automatically when this process dies
		args := append([]string{"caffeinate"}, caffeinateFlags(flags)...)
		return c.proc.hold(append(args, "-w", strconv.Itoa(os.Getpid())))
	}
	return fire("caffeinate", append(caffeinateFlags(flags), "-t", "1")...)
}

func (c *Caffeinate) ClearBusy() error {
	c.proc.release()
	return nil
}

// -i: prevent idle sleep, -s: prevent system sleep (AC power), -d: prevent display sleep
func caffeinateFlags(flags domain.BusyFlags) []string {
	var out []string
	if flags.Has(domain.BusySystem) {
		out = append(out, "-i", "-s")
	}
	if flags.Has(domain.BusyDisplay) {
		out = append(out, "-d")
	}
	return out
}
