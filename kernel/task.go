package kernel

import (
	"encoding/binary"
	"reflect"
	"unsafe"

	"tock/hal"
)

// TaskFunc is a task entry point. It receives the task id and the argument
// given to InitContext and is expected never to return.
type TaskFunc func(id uint64, arg int64)

const (
	DefaultStackBytes = 32 * 1024
	MinStackBytes     = 64
	DefaultLevel      = 1
	MaxLevel          = 3

	// LevelUnchanged keeps a task's level across Wakeup.
	LevelUnchanged = -1
)

// Segment selectors of the kernel's flat code and stack segments.
const (
	kernelCS = 1 << 3
	kernelSS = 2 << 3
)

// mxcsrDefault masks every SSE exception.
const mxcsrDefault = 0x1f80

// Task is a schedulable unit: one saved context, one stack, a priority level
// and a private mailbox. Its level and running flag are written only by the
// TaskManager that created it.
type Task struct {
	m       *TaskManager
	id      uint64
	ctx     hal.TaskContext
	stack   []uint64
	level   int
	running bool
	msgs    *Mailbox
}

func (t *Task) ID() uint64 { return t.id }

// Level is the task's priority; higher levels always run first.
func (t *Task) Level() int { return t.level }

// Running reports whether the task is current or queued to run.
func (t *Task) Running() bool { return t.running }

// Context exposes the saved machine state for the platform switch primitive.
func (t *Task) Context() *hal.TaskContext { return &t.ctx }

// InitContext prepares the task so that its first dispatch calls fn(id, arg)
// on the task's own stack with interrupts enabled and the kernel page table
// installed. It must be called before the task is first woken.
func (t *Task) InitContext(fn TaskFunc, arg int64) *Task {
	stackEnd := uintptr(unsafe.Pointer(&t.stack[0])) + uintptr(len(t.stack))*8

	ctx := &t.ctx
	*ctx = hal.TaskContext{}
	ctx.CR3 = t.m.cpu.PageTableRoot()
	ctx.RFlags = hal.FlagReserved | hal.FlagIF
	ctx.CS = kernelCS
	ctx.SS = kernelSS
	ctx.RSP = uint64(stackEnd&^0xf) - 8
	ctx.RIP = uint64(reflect.ValueOf(fn).Pointer())
	ctx.RDI = t.id
	ctx.RSI = uint64(arg)
	binary.LittleEndian.PutUint32(ctx.FXSaveArea[24:], mxcsrDefault)

	t.m.sw.Prepare(ctx, func() { t.m.run(t, fn, arg) })
	return t
}

// Wakeup makes the task runnable at its current level.
func (t *Task) Wakeup() *Task {
	t.m.Wakeup(t, LevelUnchanged)
	return t
}

// WakeupLevel makes the task runnable at level, clamped to [0, MaxLevel].
func (t *Task) WakeupLevel(level int) *Task {
	if level < 0 {
		level = 0
	}
	if level > t.m.cfg.MaxLevel {
		level = t.m.cfg.MaxLevel
	}
	t.m.Wakeup(t, level)
	return t
}

// Sleep takes the task off the ready queues. Called on the running task it
// returns only after another task wakes it.
func (t *Task) Sleep() *Task {
	t.m.Sleep(t)
	return t
}

// SendMessage queues msg on the task's mailbox and wakes it.
func (t *Task) SendMessage(msg Message) error {
	return t.m.SendMessage(t.id, msg)
}

// ReceiveMessage pops the oldest message, if any.
func (t *Task) ReceiveMessage() (Message, bool) {
	prev := t.m.cpu.DisableInterrupts()
	defer t.m.cpu.RestoreInterrupts(prev)

	msg, err := t.msgs.Pop()
	return msg, err == nil
}

// WaitMessage returns the oldest message, sleeping while the mailbox is empty.
// The emptiness check and the sleep happen with interrupts masked so a
// message posted from an interrupt handler cannot be missed.
func (t *Task) WaitMessage() Message {
	prev := t.m.cpu.DisableInterrupts()
	defer t.m.cpu.RestoreInterrupts(prev)

	for {
		if msg, err := t.msgs.Pop(); err == nil {
			return msg
		}
		t.m.Sleep(t)
	}
}

// taskQueue is a FIFO of runnable tasks for one level.
type taskQueue []*Task

func (q *taskQueue) pushBack(t *Task) { *q = append(*q, t) }

func (q *taskQueue) pushFront(t *Task) {
	*q = append(*q, nil)
	copy((*q)[1:], *q)
	(*q)[0] = t
}

func (q *taskQueue) popFront() *Task {
	t := (*q)[0]
	(*q)[0] = nil
	*q = (*q)[1:]
	return t
}

func (q *taskQueue) erase(t *Task) {
	for i, x := range *q {
		if x == t {
			copy((*q)[i:], (*q)[i+1:])
			(*q)[len(*q)-1] = nil
			*q = (*q)[:len(*q)-1]
			return
		}
	}
}
