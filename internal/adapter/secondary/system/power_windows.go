//go:build windows

package system

import (
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sys/windows"

	"caffeine/internal/domain"
)

var (
	modkernel32                 = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadExecutionState = modkernel32.NewProc("SetThreadExecutionState")
)

const (
	esContinuous      = 0x80000000
	esSystemRequired  = 0x00000001
	esDisplayRequired = 0x00000002
)

func newPlatform() Platform {
	return Platform{
		Power:     NewExecutionState(),
		Input:     NewKeyboardInput(),
		Autostart: NewRegistryAutostart(AppName, executable()),
	}
}

// ExecutionState implements domain.PowerAsserter with SetThreadExecutionState.
// The execution state belongs to the calling thread, so every call is made
// from one goroutine locked to its OS thread.
type ExecutionState struct {
	once sync.Once
	reqs chan esRequest
}

type esRequest struct {
	state uint32
	resp  chan error
}

// NewExecutionState creates the asserter. The worker thread starts on first use.
func NewExecutionState() *ExecutionState {
	return &ExecutionState{reqs: make(chan esRequest)}
}

func (e *ExecutionState) AssertBusy(flags domain.BusyFlags) error {
	var state uint32
	if flags.Has(domain.BusyContinuous) {
		state |= esContinuous
	}
	if flags.Has(domain.BusySystem) {
		state |= esSystemRequired
	}
	if flags.Has(domain.BusyDisplay) {
		state |= esDisplayRequired
	}
	return e.set(state)
}

// ClearBusy resets the thread to the normal continuous state.
func (e *ExecutionState) ClearBusy() error {
	return e.set(esContinuous)
}

func (e *ExecutionState) set(state uint32) error {
	e.once.Do(func() {
		go e.serve()
	})
	resp := make(chan error, 1)
	e.reqs <- esRequest{state: state, resp: resp}
	return <-resp
}

func (e *ExecutionState) serve() {
	runtime.LockOSThread()
	for req := range e.reqs {
		req.resp <- setThreadExecutionState(req.state)
	}
}

func setThreadExecutionState(state uint32) error {
	if err := procSetThreadExecutionState.Find(); err != nil {
		return err
	}
	prev, _, callErr := procSetThreadExecutionState.Call(uintptr(state))
	if prev == 0 {
		return fmt.Errorf("SetThreadExecutionState(%#x): %w", state, callErr)
	}
	return nil
}
