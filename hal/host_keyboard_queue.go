//go:build !tinygo

package hal

// hostKeyboardVector is the MSI vector the kernel programs for the xHCI
// controller; key events are reported through it.
const hostKeyboardVector = 0x40

type hostKeyboard struct {
	ch  chan KeyEvent
	cpu *hostCPU
}

func newHostKeyboard(cpu *hostCPU) *hostKeyboard {
	return &hostKeyboard{ch: make(chan KeyEvent, 64), cpu: cpu}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

// push queues ev and raises the controller interrupt. It reports false when
// the event ring is full and ev was dropped.
func (k *hostKeyboard) push(ev KeyEvent) bool {
	select {
	case k.ch <- ev:
	default:
		return false
	}
	k.cpu.raise(hostKeyboardVector)
	return true
}
