package kernel

import (
	"tock/hal"
	"tock/internal/klog"
)

const (
	DefaultTimerHz           = 100
	DefaultPreemptTicks      = 2
	DefaultCalibrationMillis = 100
)

// Routing selects where interrupt handlers deliver their messages.
type Routing uint8

const (
	// RouteTask posts to the main task's mailbox and wakes it.
	RouteTask Routing = iota
	// RouteQueue posts to one global queue that the main task polls,
	// halting while it is empty.
	RouteQueue
)

func (r Routing) String() string {
	if r == RouteQueue {
		return "queue"
	}
	return "task"
}

// Config holds the kernel's tunables. Zero fields take the defaults.
type Config struct {
	Scheduler         SchedulerConfig
	TimerHz           int
	PreemptTicks      uint64
	CalibrationMillis int
	Routing           Routing
}

func (c Config) withDefaults() Config {
	c.Scheduler = c.Scheduler.withDefaults()
	if c.TimerHz <= 0 {
		c.TimerHz = DefaultTimerHz
	}
	if c.PreemptTicks == 0 {
		c.PreemptTicks = DefaultPreemptTicks
	}
	if c.CalibrationMillis <= 0 {
		c.CalibrationMillis = DefaultCalibrationMillis
	}
	return c
}

// Kernel owns the scheduler, the timers and the interrupt plumbing of one
// machine. New must run on the boot execution, which becomes the main task.
type Kernel struct {
	h   hal.HAL
	cpu hal.CPU
	cfg Config
	log *klog.Logger

	Tasks  *TaskManager
	Timers *TimerManager

	main     *Task
	queue    *Mailbox
	dispatch *Dispatcher

	lapicFreq uint64
}

func New(h hal.HAL, cfg Config, log *klog.Logger) *Kernel {
	cfg = cfg.withDefaults()
	k := &Kernel{h: h, cpu: h.CPU(), cfg: cfg, log: log}

	k.Tasks = NewTaskManager(k.cpu, h.Switcher(), cfg.Scheduler)
	k.main = k.Tasks.CurrentTask()

	var sink Sink = TaskSink{Tasks: k.Tasks, ID: k.main.ID()}
	if cfg.Routing == RouteQueue {
		k.queue = NewMailbox(cfg.Scheduler.MailboxCapacity)
		sink = k.queue
	}
	k.Timers = NewTimerManager(sink)
	k.dispatch = NewDispatcher(h.Interrupts(), k.Tasks, k.Timers, sink)
	return k
}

func (k *Kernel) HAL() hal.HAL           { return k.h }
func (k *Kernel) Config() Config         { return k.cfg }
func (k *Kernel) Log() *klog.Logger      { return k.log }
func (k *Kernel) MainTask() *Task        { return k.main }
func (k *Kernel) LAPICFrequency() uint64 { return k.lapicFreq }

// Start installs the interrupt handlers, calibrates and starts the LAPIC
// timer, arms preemption and enables interrupts.
func (k *Kernel) Start() {
	k.cpu.DisableInterrupts()

	k.dispatch.Install()
	k.lapicFreq = InitializeLAPICTimer(k.h.LAPICTimer(), k.h.Clock(), k.cfg.TimerHz, k.cfg.CalibrationMillis)
	k.log.Infof("lapic timer: %d counts/s, %d Hz, preempt every %d ticks",
		k.lapicFreq, k.cfg.TimerHz, k.cfg.PreemptTicks)
	k.Timers.StartPreemption(k.cfg.PreemptTicks)

	k.cpu.EnableInterrupts()
}

// AddTimer arms t.
func (k *Kernel) AddTimer(t Timer) {
	prev := k.cpu.DisableInterrupts()
	defer k.cpu.RestoreInterrupts(prev)
	k.Timers.AddTimer(t)
}

// CurrentTick returns the timer interrupt count.
func (k *Kernel) CurrentTick() uint64 {
	prev := k.cpu.DisableInterrupts()
	defer k.cpu.RestoreInterrupts(prev)
	return k.Timers.CurrentTick()
}

// Dropped counts messages interrupt handlers failed to deliver.
func (k *Kernel) Dropped() uint64 {
	prev := k.cpu.DisableInterrupts()
	defer k.cpu.RestoreInterrupts(prev)
	return k.dispatch.Dropped()
}

// ReceiveMessage pops t's oldest message. For the main task under queue
// routing the global queue is read once the task's own mailbox is empty.
func (k *Kernel) ReceiveMessage(t *Task) (Message, bool) {
	prev := k.cpu.DisableInterrupts()
	defer k.cpu.RestoreInterrupts(prev)
	return k.receive(t)
}

// WaitMessage returns t's next message. While none is queued the main task
// halts under queue routing and every other task sleeps until a sender wakes
// it.
func (k *Kernel) WaitMessage(t *Task) Message {
	if !k.polls(t) {
		return t.WaitMessage()
	}

	prev := k.cpu.DisableInterrupts()
	defer k.cpu.RestoreInterrupts(prev)
	for {
		if msg, ok := k.receive(t); ok {
			return msg
		}
		k.cpu.Halt()
		k.cpu.DisableInterrupts()
	}
}

func (k *Kernel) polls(t *Task) bool {
	return k.queue != nil && t == k.main
}

func (k *Kernel) receive(t *Task) (Message, bool) {
	if msg, err := t.msgs.Pop(); err == nil {
		return msg, true
	}
	if k.polls(t) {
		if msg, err := k.queue.Pop(); err == nil {
			return msg, true
		}
	}
	return Message{}, false
}
