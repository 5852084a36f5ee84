package kernel

import (
	"sync/atomic"

	"tock/hal"
)

// Interrupt vectors owned by the kernel.
const (
	VectorXHCI       uint8 = 0x40
	VectorLAPICTimer uint8 = 0x41
)

// KernelCS is the code segment selector installed in every vector entry.
const KernelCS uint16 = kernelCS

// Dispatcher turns device interrupts into messages and scheduler ticks.
//
// Each handler acknowledges the interrupt before the scheduler may switch
// away, so a task resumed by the switch never runs with the controller still
// waiting for end-of-interrupt.
type Dispatcher struct {
	ic     hal.InterruptController
	tasks  *TaskManager
	timers *TimerManager
	sink   Sink

	dropped atomic.Uint64
}

func NewDispatcher(ic hal.InterruptController, tasks *TaskManager, timers *TimerManager, sink Sink) *Dispatcher {
	return &Dispatcher{ic: ic, tasks: tasks, timers: timers, sink: sink}
}

// Install registers the kernel's handlers as DPL 0 interrupt gates.
func (d *Dispatcher) Install() {
	attr := hal.MakeDescriptorAttr(hal.DescriptorInterruptGate, 0)
	d.ic.SetHandler(VectorXHCI, attr, KernelCS, d.onXHCI)
	d.ic.SetHandler(VectorLAPICTimer, attr, KernelCS, d.onLAPICTimer)
}

// Dropped counts messages a handler could not deliver, timer expiries
// included.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load() + d.timers.Dropped()
}

func (d *Dispatcher) onXHCI() {
	d.tasks.EnterInterrupt()
	if err := d.sink.Post(Message{Type: MsgInterruptXHCI}); err != nil {
		d.dropped.Add(1)
	}
	d.ic.NotifyEndOfInterrupt()
	d.tasks.ExitInterrupt(false)
}

func (d *Dispatcher) onLAPICTimer() {
	d.tasks.EnterInterrupt()
	preempt := d.timers.Tick()
	d.ic.NotifyEndOfInterrupt()
	d.tasks.ExitInterrupt(preempt)
}
