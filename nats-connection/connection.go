package natsconnection

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/slipstream-ws/slipstream"
)

// ErrConnectionClosed is returned by Read and Write once the connection has
// been closed.
var ErrConnectionClosed = errors.New("nats connection closed")

// Connection is a slipstream.SocketConnection that carries frames over a pair
// of NATS subjects instead of a WebSocket. Inbound frames arrive on
// readSubject; outbound frames are published to writeSubject. This lets a
// slipstream client run against services reachable only through a NATS mesh.
type Connection struct {
	natsConnection *nats.Conn
	subscription   *nats.Subscription
	writeSubject   string
	frames         chan *slipstream.Frame

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

var _ slipstream.SocketConnection = &Connection{}

// frameEnvelope is the wire form of a frame on a NATS subject. Data is
// base64-encoded by encoding/json.
type frameEnvelope struct {
	Type int    `json:"type"`
	Data []byte `json:"data"`
}

// New subscribes to readSubject and returns a connection that publishes
// outbound frames to writeSubject. The subscription buffer holds up to
// bufferSize frames before inbound frames are dropped.
func New(natsConnection *nats.Conn, readSubject string, writeSubject string, bufferSize int) (*Connection, error) {
	connection := &Connection{
		natsConnection: natsConnection,
		writeSubject:   writeSubject,
		frames:         make(chan *slipstream.Frame, bufferSize),
		done:           make(chan struct{}),
	}

	subscription, err := natsConnection.Subscribe(readSubject, func(msg *nats.Msg) {
		envelope := &frameEnvelope{}
		if err := json.Unmarshal(msg.Data, envelope); err != nil {
			return
		}
		frame := &slipstream.Frame{
			Type: slipstream.MessageType(envelope.Type),
			Data: envelope.Data,
		}
		select {
		case connection.frames <- frame:
		case <-connection.done:
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	connection.subscription = subscription

	return connection, nil
}

// Read blocks until the next inbound frame arrives on the read subject.
// Implements slipstream.SocketConnection.Read.
func (c *Connection) Read(ctx context.Context) (*slipstream.Frame, error) {
	select {
	case frame := <-c.frames:
		return frame, nil
	case <-c.done:
		return nil, ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Write publishes a frame to the write subject. Implements
// slipstream.SocketConnection.Write.
func (c *Connection) Write(ctx context.Context, frame *slipstream.Frame) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	envelopeData, err := json.Marshal(&frameEnvelope{
		Type: int(frame.Type),
		Data: frame.Data,
	})
	if err != nil {
		return err
	}
	return c.natsConnection.Publish(c.writeSubject, envelopeData)
}

// Close unsubscribes from the read subject. The underlying NATS connection is
// left open — it belongs to the caller. Implements
// slipstream.SocketConnection.Close.
func (c *Connection) Close(status slipstream.Status, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	return c.subscription.Unsubscribe()
}
