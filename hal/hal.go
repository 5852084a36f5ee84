package hal

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyTab
)

// KeyEvent is a keyboard event.
type KeyEvent struct {
	Code  KeyCode
	Press bool
	Rune  rune
}

// Keyboard queues key events for the kernel to drain after a device interrupt.
type Keyboard interface {
	Events() <-chan KeyEvent
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Input provides access to input devices (if available).
type Input interface {
	Keyboard() Keyboard
}

// RFlags bits the kernel cares about.
const (
	FlagIF       uint64 = 1 << 9
	FlagReserved uint64 = 1 << 1
)

// TaskContext is the saved machine state of a suspended computation.
//
// The layout matches the order the switch trampoline stores registers in and
// must not be reordered.
type TaskContext struct {
	CR3, RIP, RFlags, Reserved1 uint64
	CS, SS, FS, GS              uint64
	RAX, RBX, RCX, RDX          uint64
	RDI, RSI, RSP, RBP          uint64
	R8, R9, R10, R11            uint64
	R12, R13, R14, R15          uint64
	FXSaveArea                  [512]byte
}

// CPU is the interrupt flag and halt primitive of the single logical processor.
type CPU interface {
	// DisableInterrupts clears IF and reports whether it was set.
	DisableInterrupts() bool
	// RestoreInterrupts sets IF back to a value returned by DisableInterrupts.
	RestoreInterrupts(enabled bool)
	EnableInterrupts()
	InterruptsEnabled() bool
	// Halt enables interrupts and waits for the next one (sti; hlt).
	Halt()
	// PageTableRoot returns the active CR3 value.
	PageTableRoot() uint64
}

// InterruptHandler runs in interrupt context with IF cleared.
type InterruptHandler func()

// DescriptorAttr is the type/attribute byte of a vector table entry.
type DescriptorAttr uint8

// Descriptor types.
const (
	DescriptorInterruptGate uint8 = 14
	DescriptorTrapGate      uint8 = 15
)

// MakeDescriptorAttr builds a present descriptor attribute byte.
func MakeDescriptorAttr(typ uint8, dpl uint8) DescriptorAttr {
	return DescriptorAttr(1<<7 | (dpl&3)<<5 | typ&0xF)
}

// InterruptController installs vector handlers and acknowledges interrupts.
type InterruptController interface {
	SetHandler(vector uint8, attr DescriptorAttr, selector uint16, h InterruptHandler)
	NotifyEndOfInterrupt()
}

// TimerMode selects the local timer counting mode.
type TimerMode uint8

const (
	TimerOneShot TimerMode = iota
	TimerPeriodic
)

// LAPICTimer is the register interface of the local APIC timer.
type LAPICTimer interface {
	SetDivide(cfg uint32)
	SetLVT(mode TimerMode, vector uint8, masked bool)
	SetInitialCount(n uint32)
	CurrentCount() uint32
}

// Clock is a calibrated wall-clock delay source (the ACPI PM timer).
type Clock interface {
	WaitMilliseconds(ms int)
}

// ContextSwitcher transfers the processor between saved task contexts.
type ContextSwitcher interface {
	// Prepare arranges for the first switch into ctx to begin executing entry.
	Prepare(ctx *TaskContext, entry func())
	// Switch saves the running state into current and resumes next. It
	// returns when another switch resumes current.
	Switch(next, current *TaskContext)
}

// HAL provides the only contact point between the kernel and the machine.
type HAL interface {
	Logger() Logger
	Display() Display
	Input() Input
	CPU() CPU
	Interrupts() InterruptController
	LAPICTimer() LAPICTimer
	Clock() Clock
	Switcher() ContextSwitcher
}
