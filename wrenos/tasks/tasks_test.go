package tasks_test

import (
	"context"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"

	"wren/hal/haltest"
	"wren/wrenos/machine"
	"wren/wrenos/tasks"
	"wren/wrenos/userland"
)

func run(t *testing.T, init string) *haltest.HAL {
	t.Helper()
	cfg := machine.DefaultConfig()
	cfg.Init = init
	reg := userland.NewRegistry()
	tasks.RegisterAll(reg)
	h := haltest.New()
	m := machine.New(cfg, h, reg, hclog.NewNullLogger())
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run(%q): %v", init, err)
	}
	return h
}

func TestEcho(t *testing.T) {
	h := run(t, `echo one "two three"`)
	out := h.Cons.String()
	if !strings.Contains(out, "one two three\n") {
		t.Fatalf("console = %q", out)
	}
	if !strings.Contains(out, "echo: exit(0)\n") {
		t.Fatalf("console = %q, want clean exit", out)
	}
}

func TestLaunchRunsChildrenInOrder(t *testing.T) {
	h := run(t, `launch "echo a" "echo b"`)
	out := h.Cons.String()
	ia, ib := strings.Index(out, "a\n"), strings.Index(out, "b\n")
	if ia < 0 || ib < 0 || ia > ib {
		t.Fatalf("console = %q, want a before b", out)
	}
	if !strings.Contains(out, "launch: exit(0)\n") {
		t.Fatalf("console = %q, want launch to exit 0", out)
	}
}

func TestLaunchCountsFailures(t *testing.T) {
	h := run(t, `launch "echo ok" nosuch`)
	if !strings.Contains(h.Cons.String(), "launch: exit(1)\n") {
		t.Fatalf("console = %q, want one failure counted", h.Cons.String())
	}
}

func TestHaltPowersOff(t *testing.T) {
	h := run(t, "halt")
	if !h.Pwr.Off() {
		t.Fatal("power still on")
	}
}
