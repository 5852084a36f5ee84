package kernel

import (
	"tock/hal"
)

// SchedulerConfig sizes the TaskManager. Zero fields take the defaults.
type SchedulerConfig struct {
	MaxLevel        int
	DefaultLevel    int
	StackBytes      int
	MailboxCapacity int
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	if c.MaxLevel <= 0 {
		c.MaxLevel = MaxLevel
	}
	if c.DefaultLevel <= 0 {
		c.DefaultLevel = DefaultLevel
	}
	if c.DefaultLevel > c.MaxLevel {
		c.DefaultLevel = c.MaxLevel
	}
	if c.StackBytes <= 0 {
		c.StackBytes = DefaultStackBytes
	}
	if c.StackBytes < MinStackBytes {
		c.StackBytes = MinStackBytes
	}
	return c
}

// Stats counts scheduling events.
type Stats struct {
	Switches    uint64
	Preemptions uint64
}

// TaskManager owns every task, one ready queue per level and the identity of
// the running task.
//
// The running task is never in a ready queue. Every exported method masks
// interrupts for its duration, so callers may use it from task or interrupt
// context.
type TaskManager struct {
	cpu hal.CPU
	sw  hal.ContextSwitcher
	cfg SchedulerConfig

	tasks    map[uint64]*Task
	latestID uint64
	ready    []taskQueue

	currentLevel int
	current      *Task
	idle         *Task

	irqDepth     int
	levelChanged bool
	stats        Stats

	panics panicState
}

// NewTaskManager adopts the calling execution as the main task (id 1, running
// at the default level) and starts the idle task at level 0, so a runnable
// task always exists.
func NewTaskManager(cpu hal.CPU, sw hal.ContextSwitcher, cfg SchedulerConfig) *TaskManager {
	cfg = cfg.withDefaults()
	m := &TaskManager{
		cpu:          cpu,
		sw:           sw,
		cfg:          cfg,
		tasks:        make(map[uint64]*Task),
		ready:        make([]taskQueue, cfg.MaxLevel+1),
		currentLevel: cfg.DefaultLevel,
	}

	main := m.NewTask()
	main.level = cfg.DefaultLevel
	main.running = true
	m.current = main

	m.idle = m.NewTask().InitContext(m.idleLoop, 0)
	m.Wakeup(m.idle, 0)
	return m
}

func (m *TaskManager) idleLoop(uint64, int64) {
	for {
		m.cpu.Halt()
	}
}

// Config returns the effective configuration.
func (m *TaskManager) Config() SchedulerConfig { return m.cfg }

// NewTask creates a sleeping task with a fresh id, the default level and a
// default-sized stack. It is not runnable until InitContext and Wakeup.
func (m *TaskManager) NewTask() *Task {
	prev := m.cpu.DisableInterrupts()
	defer m.cpu.RestoreInterrupts(prev)

	m.latestID++
	t := &Task{
		m:     m,
		id:    m.latestID,
		stack: make([]uint64, m.cfg.StackBytes/8),
		level: m.cfg.DefaultLevel,
		msgs:  NewMailbox(m.cfg.MailboxCapacity),
	}
	m.tasks[t.id] = t
	return t
}

// CurrentTask returns the running task.
func (m *TaskManager) CurrentTask() *Task {
	prev := m.cpu.DisableInterrupts()
	defer m.cpu.RestoreInterrupts(prev)
	return m.current
}

// Task looks a task up by id.
func (m *TaskManager) Task(id uint64) (*Task, error) {
	prev := m.cpu.DisableInterrupts()
	defer m.cpu.RestoreInterrupts(prev)

	t, ok := m.tasks[id]
	if !ok {
		return nil, makeError(NoSuchTask)
	}
	return t, nil
}

// CurrentLevel returns the level being serviced.
func (m *TaskManager) CurrentLevel() int {
	prev := m.cpu.DisableInterrupts()
	defer m.cpu.RestoreInterrupts(prev)
	return m.currentLevel
}

// Stats returns the scheduling counters.
func (m *TaskManager) Stats() Stats {
	prev := m.cpu.DisableInterrupts()
	defer m.cpu.RestoreInterrupts(prev)
	return m.stats
}

// Wakeup makes t runnable, at level unless level is LevelUnchanged. Waking a
// task above the serviced level switches to it before Wakeup returns; from an
// interrupt handler the switch happens once the handler has acknowledged the
// interrupt.
func (m *TaskManager) Wakeup(t *Task, level int) error {
	if level != LevelUnchanged && (level < 0 || level > m.cfg.MaxLevel) {
		return makeError(InvalidLevel)
	}

	prev := m.cpu.DisableInterrupts()
	defer m.cpu.RestoreInterrupts(prev)

	m.wakeup(t, level)
	return nil
}

// WakeupID is Wakeup by task id.
func (m *TaskManager) WakeupID(id uint64, level int) error {
	prev := m.cpu.DisableInterrupts()
	defer m.cpu.RestoreInterrupts(prev)

	t, ok := m.tasks[id]
	if !ok {
		return makeError(NoSuchTask)
	}
	return m.Wakeup(t, level)
}

// Sleep takes t out of scheduling. If t is running, control passes to the
// next ready task and Sleep returns once t has been woken and rescheduled.
func (m *TaskManager) Sleep(t *Task) {
	prev := m.cpu.DisableInterrupts()
	defer m.cpu.RestoreInterrupts(prev)

	if !t.running {
		return
	}
	t.running = false
	if t == m.current {
		m.schedule()
		return
	}
	m.ready[t.level].erase(t)
}

// SleepID is Sleep by task id.
func (m *TaskManager) SleepID(id uint64) error {
	prev := m.cpu.DisableInterrupts()
	defer m.cpu.RestoreInterrupts(prev)

	t, ok := m.tasks[id]
	if !ok {
		return makeError(NoSuchTask)
	}
	m.Sleep(t)
	return nil
}

// SwitchTask runs the scheduler. With currentSleep false the running task
// rotates to the back of its level; with currentSleep true it goes to sleep.
func (m *TaskManager) SwitchTask(currentSleep bool) {
	prev := m.cpu.DisableInterrupts()
	defer m.cpu.RestoreInterrupts(prev)

	cur := m.current
	if currentSleep {
		cur.running = false
	} else {
		m.ready[cur.level].pushBack(cur)
	}
	m.schedule()
}

// SendMessage queues msg on task id's mailbox and wakes the task.
func (m *TaskManager) SendMessage(id uint64, msg Message) error {
	prev := m.cpu.DisableInterrupts()
	defer m.cpu.RestoreInterrupts(prev)

	t, ok := m.tasks[id]
	if !ok {
		return makeError(NoSuchTask)
	}
	if err := t.msgs.Push(msg); err != nil {
		return err
	}
	m.wakeup(t, LevelUnchanged)
	return nil
}

// EnterInterrupt marks the start of an interrupt handler. Until the matching
// ExitInterrupt, wakeups that would preempt are only recorded.
func (m *TaskManager) EnterInterrupt() {
	m.irqDepth++
}

// ExitInterrupt ends an interrupt handler after end-of-interrupt has been
// signalled. It performs a preemption recorded during the handler, or, when
// rotate is set, a round-robin switch.
func (m *TaskManager) ExitInterrupt(rotate bool) {
	m.irqDepth--
	if m.irqDepth > 0 {
		return
	}
	switch {
	case m.levelChanged:
		m.preempt()
	case rotate:
		m.SwitchTask(false)
	}
}

func (m *TaskManager) wakeup(t *Task, level int) {
	if t.running {
		m.changeLevelRunning(t, level)
		return
	}
	if level != LevelUnchanged {
		t.level = level
	}
	t.running = true
	m.ready[t.level].pushBack(t)
	if t.level > m.currentLevel {
		m.requestPreempt()
	}
}

func (m *TaskManager) changeLevelRunning(t *Task, level int) {
	if level == LevelUnchanged || level == t.level {
		return
	}
	if t != m.current {
		m.ready[t.level].erase(t)
		m.ready[level].pushBack(t)
		t.level = level
		if level > m.currentLevel {
			m.requestPreempt()
		}
		return
	}

	t.level = level
	m.currentLevel = level
	if m.highestReady() > level {
		m.requestPreempt()
	}
}

func (m *TaskManager) requestPreempt() {
	if m.irqDepth > 0 {
		m.levelChanged = true
		return
	}
	m.preempt()
}

// preempt gives the CPU to the highest ready task. The running task did not
// yield, so it goes to the front of its level to run next there.
func (m *TaskManager) preempt() {
	m.stats.Preemptions++
	m.ready[m.current.level].pushFront(m.current)
	m.schedule()
}

func (m *TaskManager) highestReady() int {
	for level := len(m.ready) - 1; level >= 0; level-- {
		if len(m.ready[level]) > 0 {
			return level
		}
	}
	return -1
}

// schedule switches to the front task of the highest non-empty level. The
// running task must already be queued or marked asleep.
func (m *TaskManager) schedule() {
	m.levelChanged = false

	var next *Task
	if level := m.highestReady(); level >= 0 {
		m.currentLevel = level
		next = m.ready[level].popFront()
	} else {
		// Everything is asleep, the idle task included; run it anyway.
		next = m.idle
		next.running = true
		m.currentLevel = next.level
	}

	prev := m.current
	m.current = next
	if next == prev {
		return
	}
	m.stats.Switches++
	m.sw.Switch(&next.ctx, &prev.ctx)
}
