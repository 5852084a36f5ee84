package kernel

// MessageType tags which argument of a Message is valid.
type MessageType uint8

const (
	MsgInterruptXHCI MessageType = iota + 1
	MsgTimerTimeout
	MsgKeyPush
	MsgLayer
	MsgLayerFinish
)

func (t MessageType) String() string {
	switch t {
	case MsgInterruptXHCI:
		return "interrupt-xhci"
	case MsgTimerTimeout:
		return "timer-timeout"
	case MsgKeyPush:
		return "key-push"
	case MsgLayer:
		return "layer"
	case MsgLayerFinish:
		return "layer-finish"
	default:
		return "unknown"
	}
}

// LayerOperation is the compositor request carried by MsgLayer.
type LayerOperation uint8

const (
	LayerMove LayerOperation = iota
	LayerMoveRelative
	LayerDraw
	LayerDrawArea
)

// Rect is a drawing area in screen coordinates.
type Rect struct {
	X, Y, W, H int
}

// TimerArg is the payload of MsgTimerTimeout.
type TimerArg struct {
	Timeout uint64
	Value   int64
}

// KeyboardArg is the payload of MsgKeyPush.
type KeyboardArg struct {
	Modifier uint8
	Keycode  uint8
	ASCII    uint8
}

// LayerArg is the payload of MsgLayer.
type LayerArg struct {
	LayerID uint32
	Op      LayerOperation
	Area    Rect
}

// Message is a small tagged value passed between interrupt handlers and tasks.
// Only the argument matching Type is meaningful.
type Message struct {
	Type    MessageType
	SrcTask uint64

	Timer    TimerArg
	Keyboard KeyboardArg
	Layer    LayerArg
}

// TimerTimeoutMessage builds the message a fired timer delivers.
func TimerTimeoutMessage(t Timer) Message {
	return Message{Type: MsgTimerTimeout, Timer: TimerArg{Timeout: t.Timeout, Value: t.Value}}
}

// KeyPushMessage builds a key press notification.
func KeyPushMessage(modifier, keycode, ascii uint8) Message {
	return Message{Type: MsgKeyPush, Keyboard: KeyboardArg{Modifier: modifier, Keycode: keycode, ASCII: ascii}}
}

// LayerMessage builds a compositor request from task src.
func LayerMessage(src uint64, layerID uint32, op LayerOperation, area Rect) Message {
	return Message{Type: MsgLayer, SrcTask: src, Layer: LayerArg{LayerID: layerID, Op: op, Area: area}}
}
