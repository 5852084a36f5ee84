//go:build !tinygo

package hal

// hostSwitcher runs every task on its own goroutine and passes the CPU between
// them with a per-context baton. A goroutine only executes while it holds the
// baton, so the kernel never observes two tasks running at once.
type hostSwitcher struct {
	cpu     *hostCPU
	threads map[*TaskContext]*hostThread
}

type hostThread struct {
	resume chan struct{}
}

func newHostSwitcher(cpu *hostCPU) *hostSwitcher {
	return &hostSwitcher{cpu: cpu, threads: make(map[*TaskContext]*hostThread)}
}

func (s *hostSwitcher) Prepare(ctx *TaskContext, entry func()) {
	th := &hostThread{resume: make(chan struct{}, 1)}
	s.threads[ctx] = th
	go func() {
		<-th.resume
		s.cpu.deliver()
		entry()
		panic("hal: task entry returned")
	}()
}

func (s *hostSwitcher) Switch(next, current *TaskContext) {
	if next == current {
		return
	}
	to, ok := s.threads[next]
	if !ok {
		panic("hal: switch to a context that was never prepared")
	}
	// The boot context was never prepared; it gets a baton the first time it
	// is switched out.
	from, ok := s.threads[current]
	if !ok {
		from = &hostThread{resume: make(chan struct{}, 1)}
		s.threads[current] = from
	}

	if s.cpu.enabled {
		current.RFlags |= FlagIF
	} else {
		current.RFlags &^= FlagIF
	}
	current.CR3 = s.cpu.cr3
	s.cpu.enabled = next.RFlags&FlagIF != 0
	if next.CR3 != 0 {
		s.cpu.cr3 = next.CR3
	}

	to.resume <- struct{}{}
	<-from.resume
	// Resumed with IF set: take what became pending while switched out.
	s.cpu.deliver()
}
