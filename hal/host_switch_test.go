package hal

import (
	"strings"
	"testing"
)

func TestHostSwitcherAlternates(t *testing.T) {
	cpu := newHostCPU()
	sw := newHostSwitcher(cpu)

	var boot, a TaskContext
	var trace []string
	a.RFlags = FlagReserved | FlagIF
	sw.Prepare(&a, func() {
		for {
			trace = append(trace, "a")
			sw.Switch(&boot, &a)
		}
	})

	for i := 0; i < 3; i++ {
		trace = append(trace, "boot")
		sw.Switch(&a, &boot)
	}

	if got, want := strings.Join(trace, " "), "boot a boot a boot a"; got != want {
		t.Fatalf("trace = %q, want %q", got, want)
	}
}

func TestHostSwitcherCarriesInterruptFlag(t *testing.T) {
	cpu := newHostCPU()
	sw := newHostSwitcher(cpu)

	var boot, a TaskContext
	var seen []bool
	a.RFlags = FlagReserved | FlagIF
	sw.Prepare(&a, func() {
		for {
			seen = append(seen, cpu.InterruptsEnabled())
			cpu.DisableInterrupts()
			sw.Switch(&boot, &a)
		}
	})

	sw.Switch(&a, &boot)
	if cpu.InterruptsEnabled() {
		t.Fatal("boot context resumed with IF set, want clear")
	}
	if boot.RFlags&FlagIF != 0 {
		t.Fatal("boot RFlags saved with IF set, want clear")
	}

	sw.Switch(&a, &boot)
	if len(seen) != 2 || !seen[0] {
		t.Fatalf("seen = %v, want first entry true", seen)
	}
	// The second resume restores the IF that a saved when it switched out.
	if seen[1] {
		t.Fatal("a resumed with IF set after switching out masked")
	}
}

func TestHostSwitcherSelfSwitch(t *testing.T) {
	cpu := newHostCPU()
	sw := newHostSwitcher(cpu)

	var boot TaskContext
	sw.Switch(&boot, &boot)
}

func TestHostSwitcherDeliversPendingOnResume(t *testing.T) {
	cpu := newHostCPU()
	sw := newHostSwitcher(cpu)
	ic := hostInterrupts{cpu: cpu}

	hits := 0
	ic.SetHandler(0x41, MakeDescriptorAttr(DescriptorInterruptGate, 0), 8, func() { hits++ })

	var boot, a TaskContext
	var seen []int
	a.RFlags = FlagReserved | FlagIF
	sw.Prepare(&a, func() {
		for {
			seen = append(seen, hits)
			sw.Switch(&boot, &a)
		}
	})

	// Raised while boot runs masked; a takes it on first dispatch.
	cpu.raise(0x41)
	sw.Switch(&a, &boot)
	// a switched out with IF set; a vector raised meanwhile is taken on resume.
	cpu.raise(0x41)
	sw.Switch(&a, &boot)

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("hits seen by a = %v, want [1 2]", seen)
	}
	if cpu.InterruptsEnabled() {
		t.Fatal("boot resumed with IF set, want clear")
	}
}
