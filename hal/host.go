//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Host is the hosted machine: one CPU, a local APIC timer, a framebuffer and
// a keyboard whose events arrive through the xHCI interrupt vector.
type Host struct {
	logger *hostLogger
	cpu    *hostCPU
	sw     *hostSwitcher
	lapic  *hostLAPIC
	fb     *hostFramebuffer
	kbd    *hostKeyboard
}

// NewHost returns a host machine whose devices stop when ctx is done. Log
// lines go to w.
func NewHost(ctx context.Context, w io.Writer) *Host {
	cpu := newHostCPU()
	return &Host{
		logger: &hostLogger{w: w},
		cpu:    cpu,
		sw:     newHostSwitcher(cpu),
		lapic:  newHostLAPIC(ctx, cpu),
		fb:     newHostFramebuffer(480, 320),
		kbd:    newHostKeyboard(cpu),
	}
}

func (h *Host) Logger() Logger                  { return h.logger }
func (h *Host) Display() Display                { return hostDisplay{fb: h.fb} }
func (h *Host) Input() Input                    { return hostInput{kbd: h.kbd} }
func (h *Host) CPU() CPU                        { return h.cpu }
func (h *Host) Interrupts() InterruptController { return hostInterrupts{cpu: h.cpu} }
func (h *Host) LAPICTimer() LAPICTimer          { return h.lapic }
func (h *Host) Clock() Clock                    { return hostClock{} }
func (h *Host) Switcher() ContextSwitcher       { return h.sw }

// RaiseInterrupt latches vector as pending, as a device asserting its line
// would. It is delivered the next time the running task has IF set.
func (h *Host) RaiseInterrupt(vector uint8) { h.cpu.raise(vector) }

// EndOfInterruptCount reports how many interrupts have been acknowledged.
func (h *Host) EndOfInterruptCount() uint64 { return h.cpu.eoi.Load() }

// PressKey queues a key event and raises the keyboard controller's vector.
func (h *Host) PressKey(ev KeyEvent) bool { return h.kbd.push(ev) }

// Gate returns the attribute byte and code selector installed for vector.
func (h *Host) Gate(vector uint8) (DescriptorAttr, uint16) {
	return h.cpu.attrs[vector], h.cpu.selector[vector]
}

// PresentCount reports how many frames have been published to the screen.
func (h *Host) PresentCount() uint64 {
	h.fb.mu.Lock()
	defer h.fb.mu.Unlock()
	return h.fb.presents
}

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
