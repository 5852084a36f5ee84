package kernel

import (
	"context"
	"io"
	"testing"

	"tock/hal"
	"tock/internal/klog"
)

func newTestKernel(t *testing.T, routing Routing) (*hal.Host, *Kernel) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := hal.NewHost(ctx, io.Discard)
	k := New(h, Config{CalibrationMillis: 10, Routing: routing}, klog.New(h.Logger(), klog.LevelWarn))
	return h, k
}

func TestKernelDeliversTimerToMainTask(t *testing.T) {
	_, k := newTestKernel(t, RouteTask)
	k.Start()

	if k.LAPICFrequency() == 0 {
		t.Fatalf("LAPICFrequency() = 0, want calibrated frequency")
	}
	k.AddTimer(Timer{Timeout: k.CurrentTick() + 3, Value: 7})

	msg := k.WaitMessage(k.MainTask())
	if msg.Type != MsgTimerTimeout || msg.Timer.Value != 7 {
		t.Fatalf("WaitMessage() = %+v, want timer value 7", msg)
	}
	if k.CurrentTick() < msg.Timer.Timeout {
		t.Fatalf("CurrentTick() = %d, before timeout %d", k.CurrentTick(), msg.Timer.Timeout)
	}
}

func TestKernelQueueRoutingPolls(t *testing.T) {
	h, k := newTestKernel(t, RouteQueue)
	k.Start()

	h.RaiseInterrupt(VectorXHCI)
	msg := k.WaitMessage(k.MainTask())
	if msg.Type != MsgInterruptXHCI {
		t.Fatalf("WaitMessage() type = %v, want %v", msg.Type, MsgInterruptXHCI)
	}
	if _, ok := k.ReceiveMessage(k.MainTask()); ok {
		t.Fatalf("ReceiveMessage() ok = true, want queue drained")
	}
}

func TestKernelMainIsTaskOne(t *testing.T) {
	_, k := newTestKernel(t, RouteTask)

	if id := k.MainTask().ID(); id != 1 {
		t.Fatalf("MainTask().ID() = %d, want 1", id)
	}
	if k.Config().TimerHz != DefaultTimerHz || k.Config().PreemptTicks != DefaultPreemptTicks {
		t.Fatalf("Config() = %+v, want defaults filled in", k.Config())
	}
}

func TestKernelWaitMessageSleepsOtherTasks(t *testing.T) {
	_, k := newTestKernel(t, RouteQueue)
	main := k.MainTask()
	var got []int64

	worker := k.Tasks.NewTask().InitContext(func(id uint64, _ int64) {
		self, _ := k.Tasks.Task(id)
		for {
			got = append(got, k.WaitMessage(self).Timer.Value)
			main.Wakeup()
		}
	}, 0).WakeupLevel(2)

	if worker.Running() {
		t.Fatalf("worker Running() = true with an empty mailbox, want asleep")
	}

	// The global queue belongs to the main task only.
	if err := k.queue.Push(Message{Type: MsgInterruptXHCI}); err != nil {
		t.Fatalf("Push() err = %v", err)
	}
	if err := k.Tasks.SendMessage(worker.ID(), Message{Type: MsgTimerTimeout, Timer: TimerArg{Value: 5}}); err != nil {
		t.Fatalf("SendMessage() err = %v", err)
	}

	if len(got) != 1 || got[0] != 5 {
		t.Fatalf("worker received %v, want [5]", got)
	}
	if msg, ok := k.ReceiveMessage(main); !ok || msg.Type != MsgInterruptXHCI {
		t.Fatalf("ReceiveMessage(main) = %+v, %v, want queued xHCI interrupt", msg, ok)
	}
}
