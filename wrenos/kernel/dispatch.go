package kernel

import (
	"fmt"

	"wren/wrenos/mem"
	"wren/wrenos/sys"
	"wren/wrenos/trap"
)

// exitFault is the status a process is killed with for an invalid memory
// access or an unsupported syscall.
const exitFault = -1

// handleSyscall services one trap. Each invocation ends one of three ways:
// handled (result stored, control returns to user space), terminated (the
// calling process is gone), or halted (the machine is off).
func (k *Kernel) handleSyscall(f *trap.Frame) trap.Outcome {
	p := k.Proc(f.PID)
	if p == nil {
		panic(fmt.Sprintf("kernel: trap from unknown pid %d", f.PID))
	}

	// Nothing about the frame can be trusted until its stack pointer and
	// the syscall word it points at have been validated.
	if !CheckRange(f.SP) {
		return k.fatal(p, "stack pointer out of range")
	}
	if !CheckBuffer(p.as, f.SP, sys.WordBytes) {
		return k.fatal(p, "syscall number unreadable")
	}
	word, _ := ReadUserWord(p.as, f.SP)
	num := sys.Number(int32(word))

	// Argument words sit at fixed offsets above the stack pointer.
	var args [3]uint32
	for i := 0; i < num.ArgWords(); i++ {
		v, ok := ReadUserWord(p.as, f.SP+mem.Addr((i+1)*sys.WordBytes))
		if !ok {
			return k.fatal(p, "syscall argument unreadable")
		}
		args[i] = v
	}

	k.log.Debug("syscall", "pid", p.PID(), "num", num, "class", num.Class())

	if num.Class() != sys.ClassImplemented {
		// Recognized-but-unsupported and unknown numbers take the same
		// path: diagnose, then kill the caller. The fatal exit signals the
		// PCB, so a parent blocked in wait is still woken.
		k.consolef("system call %d is unimplemented!\n", int32(word))
		return k.fatal(p, "unimplemented syscall")
	}

	switch num {
	case sys.Halt:
		k.halt()
		return trap.Halted
	case sys.Exit:
		k.exitProcess(p, int32(args[0]))
		return trap.Terminated
	case sys.Exec:
		pid, ok := k.exec(p, mem.Addr(args[0]))
		if !ok {
			return k.fatal(p, "exec command line unreadable")
		}
		f.Ret = uint32(pid)
	case sys.Wait:
		f.Ret = uint32(k.wait(p, sys.PID(int32(args[0]))))
	case sys.Write:
		n, ok := k.write(p, int32(args[0]), mem.Addr(args[1]), args[2])
		if !ok {
			return k.fatal(p, "write buffer unreadable")
		}
		f.Ret = uint32(n)
	}
	return trap.Handled
}

// fatal kills p for a fault it caused. Every fatal path funnels through
// exitProcess, so the PCB is always signaled and no parent waits forever.
func (k *Kernel) fatal(p *Proc, reason string) trap.Outcome {
	k.log.Debug("fatal fault", "pid", p.PID(), "name", p.pcb.name, "reason", reason)
	k.exitProcess(p, exitFault)
	return trap.Terminated
}
