package kernel

import (
	"wren/wrenos/mem"
	"wren/wrenos/sys"
)

// PCB is the process control block: identity plus termination state,
// shared between the owning process and a parent waiting on it.
type PCB struct {
	pid    sys.PID
	name   string
	parent sys.PID

	// exited and exitCode are written exactly once by the owning process,
	// strictly before done is closed. The close is the only
	// synchronization: a waiter released by it always observes a
	// consistent (exited, exitCode) pair, so no lock guards them.
	exited   bool
	exitCode int32
	done     chan struct{}

	waited bool // parent consumed the exit status; guarded by Kernel.mu
}

func (p *PCB) PID() sys.PID    { return p.pid }
func (p *PCB) Name() string    { return p.name }
func (p *PCB) Parent() sys.PID { return p.parent }

// Done is closed exactly once, after the exit status has been recorded.
func (p *PCB) Done() <-chan struct{} { return p.done }

// Exited reports the exit status without blocking.
func (p *PCB) Exited() (int32, bool) {
	select {
	case <-p.done:
		return p.exitCode, true
	default:
		return 0, false
	}
}

// Proc is the kernel-side record of a process: its PCB plus the address
// space its user pointers are resolved against.
type Proc struct {
	pcb *PCB
	as  *mem.AddressSpace
}

func (p *Proc) PID() sys.PID                    { return p.pcb.pid }
func (p *Proc) PCB() *PCB                       { return p.pcb }
func (p *Proc) AddressSpace() *mem.AddressSpace { return p.as }

// AddProcess registers a process created by the loader and assigns its PID.
func (k *Kernel) AddProcess(name string, parent sys.PID, as *mem.AddressSpace) *Proc {
	k.mu.Lock()
	defer k.mu.Unlock()
	pid := k.nextPID
	k.nextPID++
	p := &Proc{
		pcb: &PCB{pid: pid, name: name, parent: parent, done: make(chan struct{})},
		as:  as,
	}
	k.procs[pid] = p
	return p
}

// Proc looks up a process that has not yet been waited on. It returns nil
// for unknown PIDs.
func (k *Kernel) Proc(pid sys.PID) *Proc {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.procs[pid]
}
