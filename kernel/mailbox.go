package kernel

const mailboxInitialSlots = 8

// Mailbox is a FIFO of messages. With a zero capacity it grows without bound;
// otherwise Push fails with ErrFull once capacity messages are queued.
//
// It does no locking: a producer in interrupt context and a consumer in task
// context are serialized by masking interrupts around every call.
type Mailbox struct {
	capacity int
	head     uint64
	tail     uint64
	slots    []Message
}

// NewMailbox returns a mailbox holding at most capacity messages, or an
// unbounded one when capacity is 0.
func NewMailbox(capacity int) *Mailbox {
	return &Mailbox{capacity: capacity}
}

// Len reports the number of queued messages.
func (mb *Mailbox) Len() int { return int(mb.head - mb.tail) }

// Push appends msg.
func (mb *Mailbox) Push(msg Message) error {
	n := mb.head - mb.tail
	if mb.capacity > 0 && n >= uint64(mb.capacity) {
		return makeError(Full)
	}
	if n == uint64(len(mb.slots)) {
		mb.grow()
	}
	mb.slots[mb.head%uint64(len(mb.slots))] = msg
	mb.head++
	return nil
}

// Pop removes the oldest message.
func (mb *Mailbox) Pop() (Message, error) {
	if mb.tail == mb.head {
		return Message{}, makeError(Empty)
	}
	i := mb.tail % uint64(len(mb.slots))
	msg := mb.slots[i]
	mb.slots[i] = Message{}
	mb.tail++
	return msg, nil
}

// Post implements Sink.
func (mb *Mailbox) Post(msg Message) error { return mb.Push(msg) }

func (mb *Mailbox) grow() {
	size := 2 * len(mb.slots)
	if size == 0 {
		size = mailboxInitialSlots
	}
	if mb.capacity > 0 && size > mb.capacity {
		size = mb.capacity
	}
	slots := make([]Message, size)
	n := mb.head - mb.tail
	for i := uint64(0); i < n; i++ {
		slots[i] = mb.slots[(mb.tail+i)%uint64(len(mb.slots))]
	}
	mb.slots = slots
	mb.tail = 0
	mb.head = n
}
