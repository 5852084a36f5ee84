//go:build !tinygo

package hal

import (
	"math/bits"
	"sync"
	"sync/atomic"
)

// hostCPU models one logical processor. Exactly one goroutine (the task that
// holds the switch baton) executes on it at a time; only that goroutine reads
// or writes enabled and handlers. Devices on other goroutines only latch
// vectors into irr.
type hostCPU struct {
	enabled  bool
	handlers [256]InterruptHandler
	attrs    [256]DescriptorAttr
	selector [256]uint16
	cr3      uint64

	mu   sync.Mutex
	irr  [4]uint64
	wake chan struct{}

	eoi atomic.Uint64
}

func newHostCPU() *hostCPU {
	return &hostCPU{
		cr3:  0x1000,
		wake: make(chan struct{}, 1),
	}
}

func (c *hostCPU) DisableInterrupts() bool {
	prev := c.enabled
	c.enabled = false
	return prev
}

func (c *hostCPU) RestoreInterrupts(enabled bool) {
	if enabled {
		c.EnableInterrupts()
		return
	}
	c.enabled = false
}

func (c *hostCPU) EnableInterrupts() {
	c.enabled = true
	c.deliver()
}

func (c *hostCPU) InterruptsEnabled() bool { return c.enabled }

func (c *hostCPU) PageTableRoot() uint64 { return c.cr3 }

func (c *hostCPU) Halt() {
	c.enabled = true
	for {
		if c.hasPending() {
			c.deliver()
			return
		}
		<-c.wake
	}
}

// raise latches vector as pending. Safe from any goroutine.
func (c *hostCPU) raise(vector uint8) {
	c.mu.Lock()
	c.irr[vector/64] |= 1 << (vector % 64)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *hostCPU) hasPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.irr[0]|c.irr[1]|c.irr[2]|c.irr[3] != 0
}

// next takes the highest pending vector.
func (c *hostCPU) next() (uint8, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.irr) - 1; i >= 0; i-- {
		if c.irr[i] == 0 {
			continue
		}
		bit := 63 - bits.LeadingZeros64(c.irr[i])
		c.irr[i] &^= 1 << bit
		return uint8(i*64 + bit), true
	}
	return 0, false
}

func (c *hostCPU) deliver() {
	for c.enabled {
		vector, ok := c.next()
		if !ok {
			return
		}
		h := c.handlers[vector]
		if h == nil {
			continue
		}
		// Interrupt gate: IF is clear for the duration of the handler and
		// iretq sets it again. A handler that switches tasks comes back here
		// with whatever IF the switch restored, which iretq overrides.
		c.enabled = false
		h()
		c.enabled = true
	}
}

// hostInterrupts is the vector table plus the local APIC EOI register.
type hostInterrupts struct {
	cpu *hostCPU
}

func (ic hostInterrupts) SetHandler(vector uint8, attr DescriptorAttr, selector uint16, h InterruptHandler) {
	ic.cpu.attrs[vector] = attr
	ic.cpu.selector[vector] = selector
	ic.cpu.handlers[vector] = h
}

func (ic hostInterrupts) NotifyEndOfInterrupt() {
	ic.cpu.eoi.Add(1)
}
