package kernel

import (
	"testing"

	"github.com/hashicorp/go-hclog"

	"wren/hal/haltest"
	"wren/wrenos/mem"
	"wren/wrenos/sys"
	"wren/wrenos/trap"
)

// codeBase is where test processes get a mapped page to stage syscall
// words and buffers.
const codeBase mem.Addr = 0x8000

type testMachine struct {
	k    *Kernel
	bus  *trap.Bus
	phys *mem.Phys
	hal  *haltest.HAL
}

func newTestMachine(t *testing.T) *testMachine {
	t.Helper()
	h := haltest.New()
	k := New(hclog.NewNullLogger(), h)
	bus := trap.NewBus()
	k.Register(bus)
	return &testMachine{k: k, bus: bus, phys: mem.NewPhys(64), hal: h}
}

// newProc creates a process with one page mapped at codeBase.
func (tm *testMachine) newProc(t *testing.T, name string, parent sys.PID) *Proc {
	t.Helper()
	as := mem.NewAddressSpace(tm.phys)
	if err := as.Map(codeBase, 1); err != nil {
		t.Fatalf("Map: %v", err)
	}
	return tm.k.AddProcess(name, parent, as)
}

func putWords(t *testing.T, as *mem.AddressSpace, addr mem.Addr, words ...uint32) {
	t.Helper()
	b := make([]byte, len(words)*sys.WordBytes)
	for i, w := range words {
		sys.PutWord(b[i*sys.WordBytes:], w)
	}
	if err := as.Write(addr, b); err != nil {
		t.Fatalf("Write words at %#x: %v", addr, err)
	}
}

// raise delivers a syscall trap for p with its stack pointer at sp.
func (tm *testMachine) raise(p *Proc, sp mem.Addr) (*trap.Frame, trap.Outcome) {
	f := &trap.Frame{PID: p.PID(), SP: sp}
	return f, tm.bus.Raise(trap.VectorSyscall, f)
}

type fakeLoader struct {
	pid sys.PID
	err error

	gotCmdline string
	gotParent  sys.PID
}

func (l *fakeLoader) CreateProcess(cmdline string, parent sys.PID) (sys.PID, error) {
	l.gotCmdline = cmdline
	l.gotParent = parent
	return l.pid, l.err
}
