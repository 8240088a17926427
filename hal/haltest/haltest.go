// Package haltest provides in-memory HAL devices for tests.
package haltest

import (
	"strings"
	"sync"

	"wren/hal"
)

// Console records every block written to it.
type Console struct {
	mu     sync.Mutex
	blocks []string
}

func (c *Console) WriteBlock(b []byte) {
	c.mu.Lock()
	c.blocks = append(c.blocks, string(b))
	c.mu.Unlock()
}

// Blocks returns a copy of the blocks written so far.
func (c *Console) Blocks() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.blocks...)
}

// String returns everything written, concatenated.
func (c *Console) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.blocks, "")
}

// Power records whether the machine was powered off. Unlike real power
// control it returns, so tests can observe the shutdown.
type Power struct {
	mu  sync.Mutex
	off bool
}

func (p *Power) PowerOff() {
	p.mu.Lock()
	p.off = true
	p.mu.Unlock()
}

// Off reports whether PowerOff was called.
func (p *Power) Off() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.off
}

// HAL bundles the recorders.
type HAL struct {
	Cons *Console
	Pwr  *Power
}

// New creates a recording HAL.
func New() *HAL {
	return &HAL{Cons: &Console{}, Pwr: &Power{}}
}

func (h *HAL) Console() hal.Console { return h.Cons }
func (h *HAL) Power() hal.Power     { return h.Pwr }
