package slipstream

import (
	"context"

	"github.com/coder/websocket"
)

// SocketConnection is the transport seam between the client runtime and the
// wire. The writer pump calls Write, the read pump calls Read, and the stop
// supervisor calls Close exactly once during teardown. Implementations must
// tolerate Read and Write being called from different goroutines.
type SocketConnection interface {
	// Read blocks until the next inbound frame arrives or an error occurs.
	Read(ctx context.Context) (*Frame, error)

	// Write sends a frame over the wire.
	Write(ctx context.Context, frame *Frame) error

	// Close closes the connection with the given status code and reason.
	Close(status Status, reason string) error
}

// WebSocketConnection is a SocketConnection over github.com/coder/websocket.
// This is the connection type Dial installs; NewWebSocketConnection is only
// needed when the application establishes the websocket itself.
type WebSocketConnection struct {
	conn *websocket.Conn
}

var _ SocketConnection = &WebSocketConnection{}

// NewWebSocketConnection wraps an established websocket connection.
func NewWebSocketConnection(conn *websocket.Conn) *WebSocketConnection {
	return &WebSocketConnection{conn: conn}
}

// Read reads the next frame from the websocket. Blocks until a frame arrives
// or an error occurs. Implements SocketConnection.Read.
func (c *WebSocketConnection) Read(ctx context.Context) (*Frame, error) {
	messageType, data, err := c.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	return &Frame{Type: messageType, Data: data}, nil
}

// Write sends a frame to the websocket. Implements SocketConnection.Write.
func (c *WebSocketConnection) Write(ctx context.Context, frame *Frame) error {
	return c.conn.Write(ctx, frame.Type, frame.Data)
}

// Close closes the websocket with the given status code and reason.
// Implements SocketConnection.Close.
func (c *WebSocketConnection) Close(status Status, reason string) error {
	return c.conn.Close(websocket.StatusCode(status), reason)
}
