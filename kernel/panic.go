package kernel

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// PanicInfo describes a task whose entry function panicked.
type PanicInfo struct {
	TaskID uint64
	Value  any
	Stack  []byte
}

type panicState struct {
	active  atomic.Bool
	once    sync.Once
	handler atomic.Value // func(PanicInfo)
}

// InPanicMode reports whether any task has panicked.
func (m *TaskManager) InPanicMode() bool {
	return m.panics.active.Load()
}

// SetPanicHandler installs the handler told about the first task panic.
// It runs on the panicking task and must not panic itself.
func (m *TaskManager) SetPanicHandler(fn func(PanicInfo)) {
	m.panics.handler.Store(fn)
}

func (m *TaskManager) triggerPanic(info PanicInfo) {
	m.panics.once.Do(func() {
		m.panics.active.Store(true)
		if v := m.panics.handler.Load(); v != nil {
			if fn, ok := v.(func(PanicInfo)); ok && fn != nil {
				fn(info)
			}
		}
	})
}

// run is the body of every task started by InitContext. A task whose entry
// panics or returns is put to sleep for good; it keeps its id.
func (m *TaskManager) run(t *Task, fn TaskFunc, arg int64) {
	defer func() {
		if v := recover(); v != nil {
			m.triggerPanic(PanicInfo{TaskID: t.id, Value: v, Stack: debug.Stack()})
		}
		for {
			m.Sleep(t)
		}
	}()
	fn(t.id, arg)
}
