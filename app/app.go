// Package app is the demo system that runs on the kernel: a compositor and
// input loop on the main task, a counter task drawing into its own window
// and a terminal task echoing keys under a blinking cursor.
package app

import (
	"fmt"
	"image"
	"image/color"

	"tock/console"
	"tock/hal"
	"tock/internal/bootcfg"
	"tock/internal/buildinfo"
	"tock/internal/klog"
	"tock/kernel"
)

// Timer values the main task arms for itself.
const (
	cursorTimerValue   int64 = 1
	shutdownTimerValue int64 = 2

	cursorPeriod = 50
)

const (
	statusLayerID uint32 = iota + 1
	taskBLayerID
)

// desktopHeight is the height of the layer area; the console takes the rest
// of the screen.
const desktopHeight = 120

var (
	desktopColor = color.RGBA{R: 0x45, G: 0xC5, B: 0x6E, A: 255}
	windowColor  = color.RGBA{R: 0xC6, G: 0xC6, B: 0xC6, A: 255}
	textColor    = color.RGBA{A: 255}
)

type system struct {
	h   hal.HAL
	cfg *bootcfg.Config
	k   *kernel.Kernel
	log *klog.Logger
	con *console.Console

	layers *layerManager
	status *layer

	main     *kernel.Task
	taskB    *kernel.Task
	terminal *kernel.Task

	lastStatusTick uint64
}

// Run boots the kernel on the calling execution, which becomes the main task,
// and serves its message loop. It returns only when cfg.Host.Ticks is
// non-zero and that many timer ticks have elapsed.
func Run(h hal.HAL, cfg *bootcfg.Config) error {
	s, err := newSystem(h, cfg)
	if err != nil {
		return err
	}
	return s.loop()
}

func newSystem(h hal.HAL, cfg *bootcfg.Config) (*system, error) {
	log := klog.New(h.Logger(), cfg.LogLevel())
	s := &system{h: h, cfg: cfg, log: log}

	fb := h.Display().Framebuffer()
	if fb == nil {
		return nil, fmt.Errorf("app: no framebuffer")
	}
	fb.ClearRGB(0, 0, 0)
	s.con = console.New(fb, image.Rect(0, desktopHeight, fb.Width(), fb.Height()))
	log.AttachConsole(s.con)
	log.Infof("tock %s", buildinfo.Short())

	s.k = kernel.New(h, cfg.Kernel(), log)
	installPanicHandler(s.k, h, log)

	s.layers = newLayerManager(fb, image.Rect(0, 0, fb.Width(), desktopHeight), desktopColor)
	s.status = s.layers.newLayer(statusLayerID, newWindow(160, 24), image.Pt(8, 8))
	s.layers.newLayer(taskBLayerID, newWindow(160, 40), image.Pt(200, 8))

	s.main = s.k.MainTask()
	if s.k.Config().Routing == kernel.RouteTask {
		// Under queue routing the main task polls instead of sleeping, so it
		// stays at the default level and shares the CPU with the others.
		s.main.WakeupLevel(s.k.Config().Scheduler.MaxLevel)
	}

	s.taskB = s.k.Tasks.NewTask().InitContext(s.taskBLoop, 45).Wakeup()
	s.terminal = s.k.Tasks.NewTask().InitContext(s.terminalLoop, 0).Wakeup()
	log.Infof("tasks: main=%d taskB=%d terminal=%d", s.main.ID(), s.taskB.ID(), s.terminal.ID())

	s.k.Start()

	now := s.k.CurrentTick()
	s.k.AddTimer(kernel.Timer{Timeout: now + cursorPeriod, Value: cursorTimerValue})
	if cfg.Host.Ticks > 0 {
		s.k.AddTimer(kernel.Timer{Timeout: cfg.Host.Ticks, Value: shutdownTimerValue})
	}

	s.layers.drawAll()
	return s, nil
}

func (s *system) loop() error {
	for {
		s.drawStatus()

		msg := s.k.WaitMessage(s.main)
		switch msg.Type {
		case kernel.MsgInterruptXHCI:
			s.drainKeyboard()

		case kernel.MsgTimerTimeout:
			switch msg.Timer.Value {
			case cursorTimerValue:
				s.k.AddTimer(kernel.Timer{Timeout: msg.Timer.Timeout + cursorPeriod, Value: cursorTimerValue})
				s.forward(s.terminal, msg)
			case shutdownTimerValue:
				s.log.Infof("shutdown at tick %d, %d dropped, %+v",
					s.k.CurrentTick(), s.k.Dropped(), s.k.Tasks.Stats())
				return nil
			}

		case kernel.MsgKeyPush:
			s.onKey(msg)

		case kernel.MsgLayer:
			s.onLayer(msg)

		default:
			s.log.Errorf("main: unknown message type %v", msg.Type)
		}
	}
}

func (s *system) forward(t *kernel.Task, msg kernel.Message) {
	if err := t.SendMessage(msg); err != nil {
		s.log.Warnf("main: forward %v to task %d: %v", msg.Type, t.ID(), err)
	}
}

func (s *system) drainKeyboard() {
	in := s.h.Input()
	if in == nil || in.Keyboard() == nil {
		return
	}
	events := in.Keyboard().Events()
	for {
		select {
		case ev := <-events:
			msg, ok := keyPushMessage(ev)
			if !ok {
				continue
			}
			s.forward(s.main, msg)
		default:
			return
		}
	}
}

func (s *system) onKey(msg kernel.Message) {
	switch msg.Keyboard.ASCII {
	case 's':
		if err := s.k.Tasks.SleepID(s.taskB.ID()); err != nil {
			s.log.Errorf("main: sleep task %d: %v", s.taskB.ID(), err)
			return
		}
		s.log.Infof("taskB asleep")
	case 'w':
		if err := s.k.Tasks.WakeupID(s.taskB.ID(), kernel.LevelUnchanged); err != nil {
			s.log.Errorf("main: wake task %d: %v", s.taskB.ID(), err)
			return
		}
		s.log.Infof("taskB awake")
	default:
		s.forward(s.terminal, msg)
	}
}

func (s *system) onLayer(msg kernel.Message) {
	if !s.k.Tasks.InPanicMode() {
		if err := s.layers.apply(msg.Layer); err != nil {
			s.log.Warnf("main: layer request from task %d: %v", msg.SrcTask, err)
		}
	}
	if err := s.k.Tasks.SendMessage(msg.SrcTask, kernel.Message{Type: kernel.MsgLayerFinish}); err != nil {
		s.log.Warnf("main: layer finish to task %d: %v", msg.SrcTask, err)
	}
}

func (s *system) drawStatus() {
	tick := s.k.CurrentTick()
	if tick == s.lastStatusTick || s.k.Tasks.InPanicMode() {
		return
	}
	s.lastStatusTick = tick

	w := s.status.win
	w.fill(windowColor)
	w.drawText(4, 16, fmt.Sprintf("tick %d", tick), textColor)
	s.layers.draw(s.status.bounds())
}
