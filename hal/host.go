package hal

import (
	"io"
	"os"
	"sync"
)

type hostHAL struct {
	cons *hostConsole
	pwr  hostPower
}

// New returns the host HAL: console on stdout, power off ends the process.
func New() HAL {
	return &hostHAL{cons: &hostConsole{w: os.Stdout}}
}

func (h *hostHAL) Console() Console { return h.cons }
func (h *hostHAL) Power() Power     { return h.pwr }

type hostConsole struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *hostConsole) WriteBlock(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = c.w.Write(b)
}

type hostPower struct{}

func (hostPower) PowerOff() {
	os.Exit(0)
}
