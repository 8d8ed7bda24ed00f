//go:build linux || darwin

package system

import (
	"fmt"
	"os/exec"
	"slices"
	"sync"

	"caffeine/internal/logging"
)

// inhibitProcess holds a continuous assertion by keeping a helper process
// alive (systemd-inhibit, caffeinate). Killing it releases the assertion.
type inhibitProcess struct {
	mu   sync.Mutex
	cmd  *exec.Cmd
	args []string
}

// hold starts the helper with args, replacing a running one with different args.
func (p *inhibitProcess) hold(args []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil && slices.Equal(p.args, args) {
		return nil // already running
	}
	p.killLocked()

	path, err := exec.LookPath(args[0])
	if err != nil {
		return fmt.Errorf("%s not found: %w", args[0], err)
	}
	cmd := exec.Command(path, args[1:]...)
	setParentDeathSignal(cmd)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", args[0], err)
	}
	// Reap the child in background so it doesn't become a zombie.
	go cmd.Wait()

	p.cmd = cmd
	p.args = args
	logging.Debugf("inhibitor started: %v (pid %d)", args, cmd.Process.Pid)
	return nil
}

// release kills the helper. Safe to call multiple times.
func (p *inhibitProcess) release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killLocked()
}

func (p *inhibitProcess) killLocked() {
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	p.cmd = nil
	p.args = nil
}

// fire runs a short-lived helper without waiting for it.
func fire(name string, args ...string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s not found: %w", name, err)
	}
	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	go cmd.Wait()
	return nil
}
