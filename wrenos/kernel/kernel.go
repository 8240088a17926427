// Package kernel implements the WrenOS trap boundary: syscall dispatch,
// user-memory validation, and the exit/wait/exec protocol between a
// process and its parent. This is the one layer that treats arbitrary
// user-supplied addresses as data; every byte it reads from a process's
// stack or buffers goes through the guard in guard.go, and any invalid
// access ends the offending process instead of the kernel.
package kernel

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"wren/hal"
	"wren/wrenos/sys"
	"wren/wrenos/trap"
)

// Loader turns a command line into a runnable process. The userland layer
// provides the implementation; the kernel only consumes it from exec.
type Loader interface {
	// CreateProcess starts a new process from cmdline with the given
	// parent and returns its PID. It does not block on the new process.
	CreateProcess(cmdline string, parent sys.PID) (sys.PID, error)
}

// Kernel owns the process table and services the syscall vector.
type Kernel struct {
	log  hclog.Logger
	cons hal.Console
	pwr  hal.Power

	loader Loader

	mu      sync.Mutex
	procs   map[sys.PID]*Proc
	nextPID sys.PID

	haltOnce sync.Once
	halted   chan struct{}
}

// New creates a kernel on top of the platform devices.
func New(log hclog.Logger, h hal.HAL) *Kernel {
	return &Kernel{
		log:     log.Named("kernel"),
		cons:    h.Console(),
		pwr:     h.Power(),
		procs:   make(map[sys.PID]*Proc),
		nextPID: 1,
		halted:  make(chan struct{}),
	}
}

// SetLoader installs the process loader exec calls into.
func (k *Kernel) SetLoader(l Loader) { k.loader = l }

// Register installs the syscall handler on its fixed trap vector.
func (k *Kernel) Register(bus *trap.Bus) {
	bus.Register(trap.VectorSyscall, "syscall", k.handleSyscall)
}

// Halted is closed once the machine has been powered off.
func (k *Kernel) Halted() <-chan struct{} { return k.halted }

// consolef emits a process-visible diagnostic as a single console block.
// The exit and unimplemented-syscall messages are a textual contract;
// external harnesses match them verbatim.
func (k *Kernel) consolef(format string, args ...any) {
	k.cons.WriteBlock([]byte(fmt.Sprintf(format, args...)))
}
