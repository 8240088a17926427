package userland

import (
	"errors"
	"fmt"

	"github.com/google/shlex"
	"github.com/hashicorp/go-hclog"

	"wren/wrenos/kernel"
	"wren/wrenos/mem"
	"wren/wrenos/sys"
	"wren/wrenos/trap"
)

// Process image layout. The stack sits directly below the kernel/user
// split; the data area, used for argument buffers, sits below the stack.
const (
	stackPages = 2
	dataPages  = 4

	stackTop  = mem.UserTop
	stackBase = stackTop - stackPages*mem.PageSize
	dataBase  = stackBase - dataPages*mem.PageSize
)

// Loader implements kernel.Loader: it turns command lines into running
// processes backed by registered programs.
type Loader struct {
	log   hclog.Logger
	k     *kernel.Kernel
	bus   *trap.Bus
	phys  *mem.Phys
	reg   *Registry
	spawn func(func())
}

// NewLoader creates a loader. spawn starts process goroutines; nil means a
// plain go statement.
func NewLoader(log hclog.Logger, k *kernel.Kernel, bus *trap.Bus, phys *mem.Phys, reg *Registry, spawn func(func())) *Loader {
	if spawn == nil {
		spawn = func(f func()) { go f() }
	}
	return &Loader{log: log.Named("loader"), k: k, bus: bus, phys: phys, reg: reg, spawn: spawn}
}

// CreateProcess parses cmdline, builds the process image, and starts the
// program goroutine. It returns as soon as the process exists; it never
// waits for it to run.
func (l *Loader) CreateProcess(cmdline string, parent sys.PID) (sys.PID, error) {
	argv, err := shlex.Split(cmdline)
	if err != nil {
		return sys.NoProcess, fmt.Errorf("parse command line %q: %w", cmdline, err)
	}
	if len(argv) == 0 {
		return sys.NoProcess, errors.New("empty command line")
	}
	prog := l.reg.lookup(argv[0])
	if prog == nil {
		return sys.NoProcess, fmt.Errorf("unknown program %q", argv[0])
	}

	as := mem.NewAddressSpace(l.phys)
	if err := as.Map(stackBase, stackPages); err != nil {
		return sys.NoProcess, fmt.Errorf("map stack: %w", err)
	}
	if err := as.Map(dataBase, dataPages); err != nil {
		as.Release()
		return sys.NoProcess, fmt.Errorf("map data: %w", err)
	}

	p := l.k.AddProcess(argv[0], parent, as)
	l.log.Debug("process created", "pid", p.PID(), "cmdline", cmdline, "parent", parent)

	env := &Env{
		bus:      l.bus,
		pid:      p.PID(),
		as:       as,
		args:     argv,
		stackTop: stackTop,
		dataNext: dataBase,
		dataEnd:  stackBase,
	}
	l.spawn(func() {
		status := prog(env)
		env.Exit(status) // does not return
	})
	return p.PID(), nil
}
