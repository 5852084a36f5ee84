package hal

import (
	"context"
	"testing"
	"time"
)

func TestHostCPUDeliversOnlyWhenEnabled(t *testing.T) {
	cpu := newHostCPU()
	ic := hostInterrupts{cpu: cpu}

	var hits int
	ic.SetHandler(0x41, MakeDescriptorAttr(DescriptorInterruptGate, 0), 8, func() {
		hits++
		ic.NotifyEndOfInterrupt()
	})

	cpu.raise(0x41)
	if hits != 0 {
		t.Fatalf("hits = %d before enabling, want 0", hits)
	}

	prev := cpu.DisableInterrupts()
	cpu.RestoreInterrupts(prev)
	if hits != 0 {
		t.Fatalf("hits = %d after restoring a masked state, want 0", hits)
	}

	cpu.EnableInterrupts()
	if hits != 1 {
		t.Fatalf("hits = %d, want 1", hits)
	}
	if got := cpu.eoi.Load(); got != 1 {
		t.Fatalf("eoi = %d, want 1", got)
	}
}

func TestHostCPUNestedMaskInsideHandler(t *testing.T) {
	cpu := newHostCPU()
	ic := hostInterrupts{cpu: cpu}

	var enabledInside []bool
	ic.SetHandler(0x40, 0, 8, func() {
		prev := cpu.DisableInterrupts()
		cpu.RestoreInterrupts(prev)
		enabledInside = append(enabledInside, cpu.InterruptsEnabled())
		// A second vector raised here must wait for iretq.
		cpu.raise(0x41)
		enabledInside = append(enabledInside, cpu.InterruptsEnabled())
	})
	var order []uint8
	ic.SetHandler(0x41, 0, 8, func() { order = append(order, 0x41) })

	cpu.raise(0x40)
	cpu.EnableInterrupts()

	for i, on := range enabledInside {
		if on {
			t.Fatalf("IF set inside handler at step %d", i)
		}
	}
	if len(order) != 1 {
		t.Fatalf("nested vector delivered %d times, want 1", len(order))
	}
}

func TestHostCPUHighestVectorFirst(t *testing.T) {
	cpu := newHostCPU()
	ic := hostInterrupts{cpu: cpu}

	var order []uint8
	for _, v := range []uint8{0x20, 0x41, 0x80} {
		v := v
		ic.SetHandler(v, 0, 8, func() { order = append(order, v) })
	}
	cpu.raise(0x20)
	cpu.raise(0x80)
	cpu.raise(0x41)
	cpu.raise(0x41)
	cpu.EnableInterrupts()

	want := []uint8{0x80, 0x41, 0x20}
	if len(order) != len(want) {
		t.Fatalf("order = %x, want %x", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %x, want %x", order, want)
		}
	}
}

func TestHostCPUHaltWakesOnInterrupt(t *testing.T) {
	cpu := newHostCPU()
	ic := hostInterrupts{cpu: cpu}

	var hits int
	ic.SetHandler(0x41, 0, 8, func() { hits++ })

	go func() {
		time.Sleep(5 * time.Millisecond)
		cpu.raise(0x41)
	}()
	cpu.Halt()

	if hits != 1 {
		t.Fatalf("hits = %d, want 1", hits)
	}
	if !cpu.InterruptsEnabled() {
		t.Fatal("IF clear after Halt, want set")
	}
}

func TestHostLAPICPeriodicRaisesVector(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHost(ctx, discard{})
	lapic := h.LAPICTimer()

	hits := 0
	h.Interrupts().SetHandler(0x41, 0, 8, func() { hits++ })

	lapic.SetDivide(0b1011)
	lapic.SetLVT(TimerPeriodic, 0x41, false)
	lapic.SetInitialCount(hostLAPICFreq / 1000)

	deadline := time.Now().Add(2 * time.Second)
	for hits == 0 && time.Now().Before(deadline) {
		h.CPU().Halt()
	}
	lapic.SetInitialCount(0)

	if hits == 0 {
		t.Fatal("periodic timer never fired")
	}
}

func TestHostLAPICOneShotCountsDown(t *testing.T) {
	h := NewHost(context.Background(), discard{})
	lapic := h.LAPICTimer()

	lapic.SetLVT(TimerOneShot, 0x41, true)
	lapic.SetInitialCount(0xffffffff)
	h.Clock().WaitMilliseconds(2)
	if got := lapic.CurrentCount(); got >= 0xffffffff {
		t.Fatalf("CurrentCount() = %#x, want below initial", got)
	}
	lapic.SetInitialCount(0)
	if got := lapic.CurrentCount(); got != 0 {
		t.Fatalf("CurrentCount() after stop = %d, want 0", got)
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestHostInterruptsRecordGate(t *testing.T) {
	cpu := newHostCPU()
	ic := hostInterrupts{cpu: cpu}

	attr := MakeDescriptorAttr(DescriptorInterruptGate, 0)
	ic.SetHandler(0x40, attr, 8, func() {})

	if cpu.attrs[0x40] != attr || cpu.selector[0x40] != 8 {
		t.Fatalf("gate 0x40 = %#x, %#x, want %#x, 0x8", cpu.attrs[0x40], cpu.selector[0x40], attr)
	}
}
