// Package machine boots a Wren machine: simulated physical memory, the
// trap bus, the kernel, and the userland loader, wired together and run
// until power-off.
package machine

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"wren/hal"
	"wren/wrenos/kernel"
	"wren/wrenos/mem"
	"wren/wrenos/trap"
	"wren/wrenos/userland"
)

// Machine is one bootable instance.
type Machine struct {
	cfg Config
	log hclog.Logger
	k   *kernel.Kernel
	ld  *userland.Loader
	g   errgroup.Group
}

// New wires a machine from its parts. Programs come from reg.
func New(cfg Config, h hal.HAL, reg *userland.Registry, log hclog.Logger) *Machine {
	m := &Machine{cfg: cfg, log: log.Named("machine")}

	bus := trap.NewBus()
	phys := mem.NewPhys(cfg.MemoryPages)
	m.k = kernel.New(log, h)
	m.k.Register(bus)

	// Process goroutines run under the machine's errgroup so Run can tell
	// when every process is gone.
	m.ld = userland.NewLoader(log, m.k, bus, phys, reg, func(f func()) {
		m.g.Go(func() error {
			f()
			return nil
		})
	})
	m.k.SetLoader(m.ld)
	return m
}

// Kernel exposes the kernel, mainly for tests and tooling.
func (m *Machine) Kernel() *kernel.Kernel { return m.k }

// Run boots the init process and blocks until the machine powers off,
// every process has exited, or ctx is canceled.
func (m *Machine) Run(ctx context.Context) error {
	pid, err := m.ld.CreateProcess(m.cfg.Init, 0)
	if err != nil {
		return fmt.Errorf("boot %q: %w", m.cfg.Init, err)
	}
	m.log.Info("booted", "init", m.cfg.Init, "pid", pid)

	done := make(chan struct{})
	go func() {
		_ = m.g.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.k.Halted():
		return nil
	case <-done:
		return nil
	}
}
