package kernel

import (
	"container/heap"
	"math"
)

const (
	// TimerValueSentinel marks the timer that keeps the heap non-empty.
	TimerValueSentinel int64 = -1
	// TaskTimerValue marks the scheduler's preemption tick. It is never
	// delivered as a message.
	TaskTimerValue int64 = math.MinInt64
)

// Timer fires once the tick counter reaches Timeout. Negative values are
// reserved for the kernel.
type Timer struct {
	Timeout uint64
	Value   int64
}

// Sink receives messages produced in interrupt context.
type Sink interface {
	Post(Message) error
}

// TaskSink delivers to one task's mailbox.
type TaskSink struct {
	Tasks *TaskManager
	ID    uint64
}

func (s TaskSink) Post(msg Message) error {
	return s.Tasks.SendMessage(s.ID, msg)
}

// timerHeap orders timers ascending by timeout. Equal timeouts have no
// defined order.
type timerHeap []Timer

func (h timerHeap) Len() int           { return len(h) }
func (h timerHeap) Less(i, j int) bool { return h[i].Timeout < h[j].Timeout }
func (h timerHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)        { *h = append(*h, x.(Timer)) }

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}

// TimerManager owns the tick counter and the pending timers.
//
// Tick runs in interrupt context; every other caller must mask interrupts
// around its calls.
type TimerManager struct {
	tick          uint64
	timers        timerHeap
	sink          Sink
	preemptPeriod uint64
	dropped       uint64
}

// NewTimerManager returns a timer manager delivering expired timers to sink.
func NewTimerManager(sink Sink) *TimerManager {
	tm := &TimerManager{sink: sink}
	heap.Push(&tm.timers, Timer{Timeout: math.MaxUint64, Value: TimerValueSentinel})
	return tm
}

// CurrentTick returns the number of timer interrupts seen so far.
func (tm *TimerManager) CurrentTick() uint64 { return tm.tick }

// Dropped reports timeouts the sink refused.
func (tm *TimerManager) Dropped() uint64 { return tm.dropped }

// Pending reports the number of armed timers, not counting the sentinel.
func (tm *TimerManager) Pending() int { return len(tm.timers) - 1 }

// AddTimer arms t.
func (tm *TimerManager) AddTimer(t Timer) {
	heap.Push(&tm.timers, t)
}

// StartPreemption arms the scheduler tick to fire every period ticks.
func (tm *TimerManager) StartPreemption(period uint64) {
	if period == 0 {
		period = 1
	}
	tm.preemptPeriod = period
	tm.AddTimer(Timer{Timeout: tm.tick + period, Value: TaskTimerValue})
}

// Tick advances the counter by one and delivers every timer whose timeout has
// been reached, earliest first. It reports whether the preemption tick fired,
// in which case the caller must run the scheduler after acknowledging the
// interrupt.
func (tm *TimerManager) Tick() bool {
	tm.tick++

	preempt := false
	for {
		t := tm.timers[0]
		if t.Timeout > tm.tick {
			break
		}
		heap.Pop(&tm.timers)

		if t.Value == TaskTimerValue {
			preempt = true
			period := tm.preemptPeriod
			if period == 0 {
				period = 1
			}
			heap.Push(&tm.timers, Timer{Timeout: tm.tick + period, Value: TaskTimerValue})
			continue
		}

		if err := tm.sink.Post(TimerTimeoutMessage(t)); err != nil {
			tm.dropped++
		}
	}
	return preempt
}
