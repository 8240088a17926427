package userland

import (
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"wren/hal/haltest"
	"wren/wrenos/kernel"
	"wren/wrenos/mem"
	"wren/wrenos/sys"
	"wren/wrenos/trap"
)

const testTimeout = 2 * time.Second

type testSystem struct {
	k   *kernel.Kernel
	ld  *Loader
	reg *Registry
	hal *haltest.HAL
}

func newTestSystem(t *testing.T) *testSystem {
	t.Helper()
	h := haltest.New()
	log := hclog.NewNullLogger()
	k := kernel.New(log, h)
	bus := trap.NewBus()
	k.Register(bus)
	reg := NewRegistry()
	ld := NewLoader(log, k, bus, mem.NewPhys(128), reg, nil)
	k.SetLoader(ld)
	return &testSystem{k: k, ld: ld, reg: reg, hal: h}
}

// waitExit blocks until pid has exited and returns its exit code.
func (ts *testSystem) waitExit(t *testing.T, pid sys.PID) int32 {
	t.Helper()
	p := ts.k.Proc(pid)
	if p == nil {
		t.Fatalf("no process %d", pid)
	}
	select {
	case <-p.PCB().Done():
	case <-time.After(testTimeout):
		t.Fatalf("pid %d did not exit", pid)
	}
	code, _ := p.PCB().Exited()
	return code
}

func TestProgramRunsAndExits(t *testing.T) {
	ts := newTestSystem(t)
	ts.reg.Register("hello", func(env *Env) int32 {
		env.Write(1, []byte("hi\n"))
		return 3
	})

	pid, err := ts.ld.CreateProcess("hello", 0)
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if got := ts.waitExit(t, pid); got != 3 {
		t.Fatalf("exit code = %d, want 3", got)
	}
	out := ts.hal.Cons.String()
	if !strings.Contains(out, "hi\n") || !strings.Contains(out, "hello: exit(3)\n") {
		t.Fatalf("console = %q", out)
	}
}

func TestCommandLineParsing(t *testing.T) {
	ts := newTestSystem(t)
	ts.reg.Register("args", func(env *Env) int32 {
		env.Write(1, []byte(strings.Join(env.Args(), "|")))
		return 0
	})

	pid, err := ts.ld.CreateProcess(`args "a b" c`, 0)
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	ts.waitExit(t, pid)
	if !strings.Contains(ts.hal.Cons.String(), "args|a b|c") {
		t.Fatalf("console = %q, want quoted argv preserved", ts.hal.Cons.String())
	}
}

func TestCreateProcessErrors(t *testing.T) {
	ts := newTestSystem(t)

	if pid, err := ts.ld.CreateProcess("nosuch", 0); err == nil || pid != sys.NoProcess {
		t.Errorf("unknown program: (%d, %v), want (NoProcess, error)", pid, err)
	}
	if pid, err := ts.ld.CreateProcess("", 0); err == nil || pid != sys.NoProcess {
		t.Errorf("empty command line: (%d, %v), want (NoProcess, error)", pid, err)
	}
}

func TestExecAndWait(t *testing.T) {
	ts := newTestSystem(t)
	ts.reg.Register("child", func(env *Env) int32 { return 5 })
	ts.reg.Register("parent", func(env *Env) int32 {
		pid := env.Exec("child")
		if pid < 0 {
			return 100
		}
		return env.Wait(pid)
	})

	pid, err := ts.ld.CreateProcess("parent", 0)
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if got := ts.waitExit(t, pid); got != 5 {
		t.Fatalf("parent exit code = %d, want child's 5", got)
	}
}

func TestExecUnknownProgram(t *testing.T) {
	ts := newTestSystem(t)
	ts.reg.Register("parent", func(env *Env) int32 {
		if env.Exec("nosuch") != sys.NoProcess {
			return 1
		}
		return 0
	})

	pid, err := ts.ld.CreateProcess("parent", 0)
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if got := ts.waitExit(t, pid); got != 0 {
		t.Fatalf("parent exit code = %d, want 0", got)
	}
}

func TestExitStopsTheProgram(t *testing.T) {
	ts := newTestSystem(t)
	ran := make(chan struct{}, 1)
	ts.reg.Register("quitter", func(env *Env) int32 {
		env.Exit(7)
		ran <- struct{}{} // must be unreachable
		return 0
	})

	pid, err := ts.ld.CreateProcess("quitter", 0)
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if got := ts.waitExit(t, pid); got != 7 {
		t.Fatalf("exit code = %d, want 7", got)
	}
	select {
	case <-ran:
		t.Fatal("program kept running after exit")
	default:
	}
}

func TestRawSyscallUnknownNumberKillsProcess(t *testing.T) {
	ts := newTestSystem(t)
	ts.reg.Register("bad", func(env *Env) int32 {
		env.RawSyscall(99)
		return 0 // not reached
	})

	pid, err := ts.ld.CreateProcess("bad", 0)
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if got := ts.waitExit(t, pid); got != -1 {
		t.Fatalf("exit code = %d, want -1", got)
	}
	out := ts.hal.Cons.String()
	if !strings.Contains(out, "system call 99 is unimplemented!\n") {
		t.Fatalf("console = %q, want unimplemented diagnostic", out)
	}
}

func TestWriteReturnValues(t *testing.T) {
	ts := newTestSystem(t)
	ts.reg.Register("w", func(env *Env) int32 {
		return env.Write(1, []byte("hello"))
	})
	ts.reg.Register("w2", func(env *Env) int32 {
		return env.Write(2, []byte("zz"))
	})

	pid, err := ts.ld.CreateProcess("w", 0)
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if got := ts.waitExit(t, pid); got != 5 {
		t.Fatalf("write to console returned %d, want 5", got)
	}

	pid, err = ts.ld.CreateProcess("w2", 0)
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if got := ts.waitExit(t, pid); got != -1 {
		t.Fatalf("write to fd 2 returned %d, want -1", got)
	}
	if strings.Contains(ts.hal.Cons.String(), "zz") {
		t.Fatalf("console = %q, fd 2 write leaked through", ts.hal.Cons.String())
	}
}
