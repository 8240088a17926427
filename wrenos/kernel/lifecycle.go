package kernel

import (
	"fmt"

	"wren/wrenos/mem"
	"wren/wrenos/sys"
)

// halt powers the machine off. No cleanup of other processes is attempted;
// graceful multi-process shutdown is a non-goal of this kernel.
func (k *Kernel) halt() {
	k.log.Info("power off")
	k.haltOnce.Do(func() { close(k.halted) })
	k.pwr.PowerOff()
}

// exitProcess records p's exit status, signals any waiting parent, and
// releases the process image. The caller must not run user code for p
// afterwards. A missing PCB or a second exit is a kernel invariant
// violation, not user misbehavior, and panics.
func (k *Kernel) exitProcess(p *Proc, status int32) {
	pcb := p.pcb
	if pcb == nil {
		panic("kernel: exiting process has no PCB")
	}
	if _, done := pcb.Exited(); done {
		panic(fmt.Sprintf("kernel: pid %d exited twice", pcb.pid))
	}

	k.consolef("%s: exit(%d)\n", pcb.name, status)

	// Both fields must be in place before the signal, so a waiter released
	// by the close observes a consistent (exited, exitCode) pair.
	pcb.exitCode = status
	pcb.exited = true
	close(pcb.done)

	p.as.Release()
	k.log.Debug("process exited", "pid", pcb.pid, "name", pcb.name, "status", status)
}

// exec starts a new process from the NUL-terminated command line at addr.
// The whole string is validated through the guard, so a command line that
// begins valid but runs off mapped memory faults here (ok=false) rather
// than inside the loader. Loader failures are not faults: they come back
// to the caller as a negative PID.
func (k *Kernel) exec(p *Proc, addr mem.Addr) (sys.PID, bool) {
	cmdline, ok := readUserString(p.as, addr, maxCmdline)
	if !ok {
		return sys.NoProcess, false
	}
	if k.loader == nil {
		panic("kernel: no process loader installed")
	}
	pid, err := k.loader.CreateProcess(cmdline, p.PID())
	if err != nil {
		k.log.Warn("exec failed", "pid", p.PID(), "cmdline", cmdline, "error", err)
		return sys.NoProcess, true
	}
	return pid, true
}

// wait blocks the caller until the identified child has exited, then
// returns its exit code. A pid that does not name a live, unwaited child
// of the caller fails with the -1 sentinel instead of blocking.
func (k *Kernel) wait(p *Proc, pid sys.PID) int32 {
	k.mu.Lock()
	child := k.procs[pid]
	if child == nil || child.pcb.parent != p.PID() || child.pcb.waited {
		k.mu.Unlock()
		return exitFault
	}
	child.pcb.waited = true
	k.mu.Unlock()

	<-child.pcb.done

	k.mu.Lock()
	delete(k.procs, pid)
	k.mu.Unlock()
	return child.pcb.exitCode
}
