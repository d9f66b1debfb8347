package slipstream

// InboundMessage represents a decoded message received from the server. The
// fields are populated by the client's message decoder — by default the JSON
// envelope codec in codec.go.
type InboundMessage struct {
	// ID is the message identifier, used for request/reply correlation. A
	// message whose ID matches a pending Request is routed to that request's
	// interceptor instead of the handler chain.
	ID string

	// Path is the message path used for routing to bound handlers.
	Path string

	// Data contains the decoded message payload. Handlers can unmarshal it
	// with ctx.Unmarshal.
	Data []byte

	// Meta contains optional metadata attached to the message, such as
	// authentication tokens or tracing IDs.
	Meta map[string]any
}

// OutboundMessage represents a message being sent to the server. The message
// encoder turns it into a frame before it enters the send path.
type OutboundMessage struct {
	// ID is the message identifier. Reply echoes the inbound message's ID so
	// the server can correlate; Request generates a fresh one.
	ID string

	// Path is the message path the server should route on.
	Path string

	// Data is the message payload, marshalled by the encoder.
	Data any

	// Meta contains optional metadata to attach to the message.
	Meta map[string]any
}

// MessageDecoder turns an inbound frame into a message. Returning an error
// drops the frame; it does not terminate the session.
type MessageDecoder func(*Frame) (*InboundMessage, error)

// MessageEncoder turns an outbound message into a frame for the send path.
type MessageEncoder func(*OutboundMessage) (*Frame, error)

// Unmarshaler decodes an inbound message payload into a value. Used by
// Context.Unmarshal and Request responses.
type Unmarshaler func(data []byte, into any) error
