// Package userland runs Wren user programs: it loads them from command
// lines, gives each one a simulated address space and stack, and provides
// the syscall shims that enter the kernel through the trap bus.
package userland

import (
	"fmt"
	"runtime"

	"wren/wrenos/mem"
	"wren/wrenos/sys"
	"wren/wrenos/trap"
)

// Program is the body of a user program. The returned value becomes the
// process exit status when the program falls off the end without exiting.
type Program func(env *Env) int32

// Env is a running program's view of its process: its arguments, its
// address space, and the syscall interface. It is confined to the process
// goroutine.
type Env struct {
	bus  *trap.Bus
	pid  sys.PID
	as   *mem.AddressSpace
	args []string

	stackTop mem.Addr
	dataNext mem.Addr
	dataEnd  mem.Addr
}

// PID returns the process identifier.
func (e *Env) PID() sys.PID { return e.pid }

// Args returns the argv the process was created with; Args()[0] is the
// program name.
func (e *Env) Args() []string { return e.args }

// pushBytes copies b into the program's data area and returns its user
// address.
func (e *Env) pushBytes(b []byte) (mem.Addr, bool) {
	if mem.Addr(len(b)) > e.dataEnd-e.dataNext {
		return 0, false
	}
	a := e.dataNext
	if err := e.as.Write(a, b); err != nil {
		return 0, false
	}
	e.dataNext += mem.Addr(len(b))
	return a, true
}

// RawSyscall pushes the syscall number and argument words onto the user
// stack and raises the syscall vector. It returns the kernel's result
// register. If the kernel terminated the process or halted the machine,
// the calling goroutine stops here and RawSyscall does not return.
func (e *Env) RawSyscall(num int32, args ...uint32) uint32 {
	words := make([]byte, (1+len(args))*sys.WordBytes)
	sys.PutWord(words, uint32(num))
	for i, a := range args {
		sys.PutWord(words[(i+1)*sys.WordBytes:], a)
	}

	sp := e.stackTop - mem.Addr(len(words))
	if err := e.as.Write(sp, words); err != nil {
		// The stack is the program's own mapped memory; not being able to
		// write it means the process image is broken, not the caller.
		panic(fmt.Sprintf("userland: pid %d cannot write its stack: %v", e.pid, err))
	}

	f := &trap.Frame{PID: e.pid, SP: sp}
	if e.bus.Raise(trap.VectorSyscall, f) != trap.Handled {
		runtime.Goexit()
	}
	return f.Ret
}

// Exit terminates the calling process with status. It does not return.
func (e *Env) Exit(status int32) {
	e.RawSyscall(int32(sys.Exit), uint32(status))
	panic("userland: exit returned")
}

// Halt powers off the machine. It does not return.
func (e *Env) Halt() {
	e.RawSyscall(int32(sys.Halt))
	panic("userland: halt returned")
}

// Write writes b to descriptor fd and returns the number of bytes written,
// or -1 on failure.
func (e *Env) Write(fd int32, b []byte) int32 {
	addr, ok := e.pushBytes(b)
	if !ok {
		return -1
	}
	return int32(e.RawSyscall(int32(sys.Write), uint32(fd), uint32(addr), uint32(len(b))))
}

// Exec starts a new process from cmdline and returns its PID, or a
// negative value if it could not be created.
func (e *Env) Exec(cmdline string) sys.PID {
	addr, ok := e.pushBytes(append([]byte(cmdline), 0))
	if !ok {
		return sys.NoProcess
	}
	return sys.PID(int32(e.RawSyscall(int32(sys.Exec), uint32(addr))))
}

// Wait blocks until the child identified by pid exits and returns its exit
// code, or -1 if pid is not a live, unwaited child of the caller.
func (e *Env) Wait(pid sys.PID) int32 {
	return int32(e.RawSyscall(int32(sys.Wait), uint32(pid)))
}
