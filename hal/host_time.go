//go:build !tinygo

package hal

import (
	"context"
	"sync"
	"time"
)

// hostLAPICFreq is the simulated timer input clock after the divider.
const hostLAPICFreq = 100_000_000

// hostLAPIC emulates the local APIC timer registers. In periodic mode with the
// LVT entry unmasked it raises its vector on the CPU every initial-count
// period.
type hostLAPIC struct {
	ctx context.Context
	cpu *hostCPU

	mu      sync.Mutex
	divide  uint32
	mode    TimerMode
	vector  uint8
	masked  bool
	initial uint32
	start   time.Time
	stop    chan struct{}
}

func newHostLAPIC(ctx context.Context, cpu *hostCPU) *hostLAPIC {
	return &hostLAPIC{ctx: ctx, cpu: cpu, masked: true}
}

func (t *hostLAPIC) SetDivide(cfg uint32) {
	t.mu.Lock()
	t.divide = cfg
	t.mu.Unlock()
}

func (t *hostLAPIC) SetLVT(mode TimerMode, vector uint8, masked bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = mode
	t.vector = vector
	t.masked = masked
	t.restartLocked()
}

func (t *hostLAPIC) SetInitialCount(n uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.initial = n
	t.start = time.Now()
	t.restartLocked()
}

func (t *hostLAPIC) CurrentCount() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.initial == 0 {
		return 0
	}
	elapsed := uint64(time.Since(t.start) / (time.Second / hostLAPICFreq))
	if t.mode == TimerPeriodic {
		return t.initial - uint32(elapsed%uint64(t.initial))
	}
	if elapsed >= uint64(t.initial) {
		return 0
	}
	return t.initial - uint32(elapsed)
}

func (t *hostLAPIC) restartLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	if t.mode != TimerPeriodic || t.masked || t.initial == 0 {
		return
	}

	period := time.Duration(uint64(t.initial) * uint64(time.Second) / hostLAPICFreq)
	if period <= 0 {
		period = time.Microsecond
	}
	stop := make(chan struct{})
	t.stop = stop
	vector := t.vector
	go func() {
		tk := time.NewTicker(period)
		defer tk.Stop()
		for {
			select {
			case <-t.ctx.Done():
				return
			case <-stop:
				return
			case <-tk.C:
				t.cpu.raise(vector)
			}
		}
	}()
}

type hostClock struct{}

func (hostClock) WaitMilliseconds(ms int) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
