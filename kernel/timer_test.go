package kernel

import (
	"testing"
)

func TestTimerFiresOnTimeoutTick(t *testing.T) {
	mb := NewMailbox(0)
	tm := NewTimerManager(mb)
	tm.AddTimer(Timer{Timeout: 10, Value: 5})

	for i := 0; i < 9; i++ {
		tm.Tick()
	}
	if mb.Len() != 0 {
		t.Fatalf("Len() = %d after 9 ticks, want 0", mb.Len())
	}

	tm.Tick()
	msg, err := mb.Pop()
	if err != nil {
		t.Fatalf("Pop() err = %v after 10 ticks", err)
	}
	if msg.Type != MsgTimerTimeout || msg.Timer != (TimerArg{Timeout: 10, Value: 5}) {
		t.Fatalf("message = %+v, want timeout {10 5}", msg)
	}
	if mb.Len() != 0 || tm.Pending() != 0 {
		t.Fatalf("Len() = %d, Pending() = %d, want 0, 0", mb.Len(), tm.Pending())
	}
}

func TestTimersDeliveredInTimeoutOrder(t *testing.T) {
	mb := NewMailbox(0)
	tm := NewTimerManager(mb)
	for _, timeout := range []uint64{7, 3, 5, 1, 3} {
		tm.AddTimer(Timer{Timeout: timeout, Value: int64(timeout)})
	}

	for i := 0; i < 8; i++ {
		tm.Tick()
	}

	var last uint64
	n := 0
	for mb.Len() > 0 {
		msg, _ := mb.Pop()
		if msg.Timer.Timeout < last {
			t.Fatalf("timeout %d delivered after %d", msg.Timer.Timeout, last)
		}
		if msg.Timer.Timeout > 8 {
			t.Fatalf("timeout %d delivered at tick 8", msg.Timer.Timeout)
		}
		last = msg.Timer.Timeout
		n++
	}
	if n != 5 {
		t.Fatalf("delivered %d timers, want 5", n)
	}
}

func TestTimerAlreadyExpiredFiresNextTick(t *testing.T) {
	mb := NewMailbox(0)
	tm := NewTimerManager(mb)
	tm.Tick()
	tm.Tick()

	tm.AddTimer(Timer{Timeout: 1, Value: 9})
	tm.Tick()

	if mb.Len() != 1 {
		t.Fatalf("Len() = %d, want past-due timer delivered on next tick", mb.Len())
	}
}

func TestPreemptionTickIsNotDelivered(t *testing.T) {
	mb := NewMailbox(0)
	tm := NewTimerManager(mb)
	tm.StartPreemption(2)

	var fired []bool
	for i := 0; i < 6; i++ {
		fired = append(fired, tm.Tick())
	}

	want := []bool{false, true, false, true, false, true}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("Tick() #%d = %v, want %v", i+1, fired[i], want[i])
		}
	}
	if mb.Len() != 0 {
		t.Fatalf("Len() = %d, want preemption ticks kept out of mailboxes", mb.Len())
	}
	if tm.Pending() != 1 {
		t.Fatalf("Pending() = %d, want the re-armed preemption tick only", tm.Pending())
	}
}

func TestTimerDroppedWhenSinkFull(t *testing.T) {
	mb := NewMailbox(1)
	tm := NewTimerManager(mb)
	tm.AddTimer(Timer{Timeout: 1, Value: 1})
	tm.AddTimer(Timer{Timeout: 1, Value: 2})

	tm.Tick()

	if mb.Len() != 1 || tm.Dropped() != 1 {
		t.Fatalf("Len() = %d, Dropped() = %d, want 1, 1", mb.Len(), tm.Dropped())
	}
}
