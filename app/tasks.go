package app

import (
	"fmt"

	"tock/kernel"
)

// taskBLoop counts forever, redrawing its window and asking the main task to
// composite it after every step.
func (s *system) taskBLoop(id uint64, arg int64) {
	self, err := s.k.Tasks.Task(id)
	if err != nil {
		s.log.Errorf("taskB: %v", err)
		return
	}
	s.log.Infof("taskB: id=%d arg=%d", id, arg)

	l := s.layers.layer(taskBLayerID)
	for count := uint64(0); ; count++ {
		l.win.fill(windowColor)
		l.win.drawText(4, 16, "TaskB", textColor)
		l.win.drawText(4, 32, fmt.Sprintf("%010d", count), textColor)

		if err := s.main.SendMessage(kernel.LayerMessage(id, taskBLayerID, kernel.LayerDraw, kernel.Rect{})); err != nil {
			s.log.Warnf("taskB: layer request: %v", err)
			continue
		}
		for {
			msg := s.k.WaitMessage(self)
			if msg.Type == kernel.MsgLayerFinish {
				break
			}
			s.log.Warnf("taskB: unexpected message %v", msg.Type)
		}
	}
}

// terminalLoop blinks the console cursor on forwarded timer messages and
// echoes forwarded key presses.
func (s *system) terminalLoop(id uint64, _ int64) {
	self, err := s.k.Tasks.Task(id)
	if err != nil {
		s.log.Errorf("terminal: %v", err)
		return
	}
	for {
		msg := s.k.WaitMessage(self)
		if s.k.Tasks.InPanicMode() {
			continue
		}
		switch msg.Type {
		case kernel.MsgTimerTimeout:
			s.con.BlinkCursor()
		case kernel.MsgKeyPush:
			if msg.Keyboard.ASCII != 0 {
				s.con.PutKey(msg.Keyboard.ASCII)
			}
		default:
			s.log.Errorf("terminal: unexpected message %v", msg.Type)
		}
		if err := s.con.Flush(); err != nil {
			s.log.Warnf("terminal: flush: %v", err)
		}
	}
}
