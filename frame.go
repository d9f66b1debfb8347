package slipstream

import "github.com/coder/websocket"

// MessageType indicates whether a frame carries text or binary data. It is an
// alias of github.com/coder/websocket.MessageType so frames can be handed to the
// underlying connection without conversion.
type MessageType = websocket.MessageType

// Frame message types.
const (
	MessageText   MessageType = websocket.MessageText
	MessageBinary MessageType = websocket.MessageBinary
)

// Frame is the unit of transfer between the client and its transport. Outbound
// frames are enqueued by sending goroutines and drained by the writer pump;
// inbound frames are produced by the read pump. A frame's data must not be
// modified after it has been enqueued — ownership passes to the consumer.
type Frame struct {
	Type MessageType
	Data []byte
}

// NewTextFrame creates a text frame from a string.
func NewTextFrame(data string) *Frame {
	return &Frame{Type: MessageText, Data: []byte(data)}
}

// NewBinaryFrame creates a binary frame from a byte slice.
func NewBinaryFrame(data []byte) *Frame {
	return &Frame{Type: MessageBinary, Data: data}
}
