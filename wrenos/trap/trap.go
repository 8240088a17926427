// Package trap delivers software interrupts from user programs to the
// kernel. A program raises a vector with a Frame describing its saved
// context; the handler registered on that vector runs synchronously on the
// calling goroutine and reports how the trap ended.
package trap

import (
	"fmt"
	"sync"

	"wren/wrenos/mem"
	"wren/wrenos/sys"
)

// Vector identifies a software-interrupt slot.
type Vector uint8

// VectorSyscall is the vector reserved for system calls.
const VectorSyscall Vector = 0x30

// Frame is the saved user context at trap time. It is owned by the caller
// and never outlives the dispatch; the handler writes the value delivered
// back to user space into Ret.
type Frame struct {
	PID sys.PID  // calling process, filled in by trap delivery
	SP  mem.Addr // saved user stack pointer, untrusted
	Ret uint32   // result register
}

// Outcome is how a trap invocation ended.
type Outcome uint8

const (
	// Handled: the result was stored and control returns to user space.
	Handled Outcome = iota
	// Terminated: the calling process no longer exists; its goroutine
	// must not run user code again.
	Terminated
	// Halted: the machine was powered off.
	Halted
)

func (o Outcome) String() string {
	switch o {
	case Handled:
		return "handled"
	case Terminated:
		return "terminated"
	case Halted:
		return "halted"
	default:
		return "unknown"
	}
}

// Handler services one trap.
type Handler func(*Frame) Outcome

type entry struct {
	name string
	h    Handler
}

// Bus routes raised vectors to their registered handlers.
type Bus struct {
	mu      sync.Mutex
	entries map[Vector]entry
}

// NewBus creates an empty vector table.
func NewBus() *Bus {
	return &Bus{entries: make(map[Vector]entry)}
}

// Register installs h on vector v. Registering a vector twice is a kernel
// bug and panics.
func (b *Bus) Register(v Vector, name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if prev, ok := b.entries[v]; ok {
		panic(fmt.Sprintf("trap: vector %#x already registered to %q", v, prev.name))
	}
	b.entries[v] = entry{name: name, h: h}
}

// Raise delivers f to the handler for v on the calling goroutine. Raising
// an unregistered vector is a kernel bug and panics.
func (b *Bus) Raise(v Vector, f *Frame) Outcome {
	b.mu.Lock()
	e, ok := b.entries[v]
	b.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("trap: no handler for vector %#x", v))
	}
	return e.h(f)
}
