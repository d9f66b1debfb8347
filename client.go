package slipstream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultRequestTimeout is how long Request waits for a correlated response
// before giving up.
var DefaultRequestTimeout = 15 * time.Second

// ErrClientStopped is returned by Request when the client shuts down before a
// response arrives.
var ErrClientStopped = errors.New("client stopped")

// Client is a running WebSocket client session. It owns the bridge connecting
// sending goroutines to the single writer goroutine, the read pump that
// dispatches inbound messages to bound handlers, and the stop supervisor that
// performs teardown when the stop signal is raised.
//
// All methods are safe for concurrent use. A client cannot be restarted after
// it stops — dial again instead.
type Client struct {
	bridge *Bridge

	decoder     MessageDecoder
	encoder     MessageEncoder
	unmarshaler Unmarshaler

	routesMx   sync.RWMutex
	middleware []Handler
	routes     []*route

	interceptorsMx sync.Mutex
	interceptors   map[string]func(*InboundMessage)

	errMx    sync.Mutex
	err      error
	stopping bool

	done chan struct{}
	log  zerolog.Logger
}

// Dial establishes a WebSocket connection to the given URL and returns a
// running client.
func Dial(ctx context.Context, url string, options ...Option) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewClient(NewWebSocketConnection(conn), options...), nil
}

// NewClient starts a client session over an already established connection.
// Most applications should use Dial; NewClient is for custom SocketConnection
// implementations such as the NATS transport.
func NewClient(conn SocketConnection, options ...Option) *Client {
	client := &Client{
		decoder:      DecodeJSONMessage,
		encoder:      EncodeJSONMessage,
		unmarshaler:  defaultUnmarshaler,
		interceptors: map[string]func(*InboundMessage){},
		done:         make(chan struct{}),
		log:          zerolog.Nop(),
	}
	settings := defaultSettings()
	for _, option := range options {
		option(client, settings)
	}

	client.bridge = NewBridge(client.log)
	writerHandle := NewHandle(settings.writerBufferSize)
	stopHandle := NewStopHandle(settings.stopBufferSize)
	client.bridge.RegisterWriter(writerHandle)
	client.bridge.RegisterStop(stopHandle)

	ctx, cancel := context.WithCancel(context.Background())

	writer := &writerPump{
		handle:       writerHandle,
		conn:         conn,
		bridge:       client.bridge,
		client:       client,
		writeTimeout: settings.writeTimeout,
		log:          client.log,
	}
	reader := &readerPump{
		conn:   conn,
		bridge: client.bridge,
		client: client,
		log:    client.log,
	}
	stop := &supervisor{
		stop:   stopHandle,
		conn:   conn,
		client: client,
		cancel: cancel,
		done:   client.done,
		log:    client.log,
	}

	go stop.run()
	go writer.run(ctx)
	go reader.run(ctx)

	return client
}

// Bridge exposes the client's dispatch bridge for frame-level use. Most
// applications should use Send and Request instead.
func (c *Client) Bridge() *Bridge {
	return c.bridge
}

// Use registers middleware handlers that run before every bound handler.
// Middleware continues the chain by calling ctx.Next.
func (c *Client) Use(handlers ...HandlerFunc) {
	c.routesMx.Lock()
	defer c.routesMx.Unlock()
	for _, handler := range handlers {
		c.middleware = append(c.middleware, handler)
	}
}

// Bind registers handlers for inbound messages whose path matches the given
// pattern. The first bound pattern to match wins; registration order decides
// ties. Panics if the pattern is invalid.
func (c *Client) Bind(patternStr string, handlers ...HandlerFunc) {
	pattern, err := NewPattern(patternStr)
	if err != nil {
		panic(err)
	}
	boundHandlers := make([]Handler, 0, len(handlers))
	for _, handler := range handlers {
		boundHandlers = append(boundHandlers, handler)
	}
	c.routesMx.Lock()
	defer c.routesMx.Unlock()
	c.routes = append(c.routes, &route{pattern: pattern, handlers: boundHandlers})
}

// Send sends a message with no path or ID. Use SendTo to address a server
// route, or Request when a response is expected.
func (c *Client) Send(data any) error {
	return c.sendMessage(&OutboundMessage{Data: data})
}

// SendTo sends a message addressed to a server route.
func (c *Client) SendTo(path string, data any) error {
	return c.sendMessage(&OutboundMessage{Path: path, Data: data})
}

// SendText sends a raw text frame, bypassing the message encoder.
func (c *Client) SendText(data string) error {
	return c.bridge.Send(NewTextFrame(data))
}

// SendBinary sends a raw binary frame, bypassing the message encoder.
func (c *Client) SendBinary(data []byte) error {
	return c.bridge.Send(NewBinaryFrame(data))
}

// Request sends a message addressed to a server route and waits up to
// DefaultRequestTimeout for the correlated response.
func (c *Client) Request(path string, data any) (*InboundMessage, error) {
	return c.RequestWithTimeout(path, data, DefaultRequestTimeout)
}

// RequestWithTimeout is Request with an explicit timeout.
func (c *Client) RequestWithTimeout(path string, data any, timeout time.Duration) (*InboundMessage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.RequestWithContext(ctx, path, data)
}

// RequestWithContext sends a message addressed to a server route and waits
// for a response carrying the same message ID. The response is intercepted
// before the handler chain runs.
func (c *Client) RequestWithContext(ctx context.Context, path string, data any) (*InboundMessage, error) {
	id := uuid.NewString()
	responseChan := make(chan *InboundMessage, 1)

	c.addInterceptor(id, func(message *InboundMessage) {
		responseChan <- message
	})
	defer c.removeInterceptor(id)

	if err := c.sendMessage(&OutboundMessage{ID: id, Path: path, Data: data}); err != nil {
		return nil, err
	}

	select {
	case message := <-responseChan:
		return message, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
	case <-c.done:
		return nil, ErrClientStopped
	}
}

// Kill raises the stop signal, beginning an orderly shutdown of the session.
// It returns immediately; wait on Done for teardown to complete. Kill is safe
// to call from any goroutine and more than once.
func (c *Client) Kill() {
	c.bridge.Kill()
}

// Done is closed once the stop supervisor has torn the session down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the error that terminated the session, or nil if the session
// was stopped deliberately via Kill or by a normal closure from the peer.
// Its result is meaningful once Done is closed.
func (c *Client) Err() error {
	c.errMx.Lock()
	defer c.errMx.Unlock()
	return c.err
}

// setErr records the first terminal error. Pump errors provoked by the
// teardown itself — the supervisor closing the connection out from under a
// blocked read or write — are not terminal causes and are dropped, as are
// later errors from the other pump racing the same teardown.
func (c *Client) setErr(err error) {
	c.errMx.Lock()
	defer c.errMx.Unlock()
	if c.err == nil && !c.stopping {
		c.err = err
	}
}

// beginStop marks teardown as begun. Called by the supervisor before it
// closes the connection.
func (c *Client) beginStop() {
	c.errMx.Lock()
	defer c.errMx.Unlock()
	c.stopping = true
}

func (c *Client) sendMessage(message *OutboundMessage) error {
	frame, err := c.encoder(message)
	if err != nil {
		return err
	}
	return c.bridge.Send(frame)
}

func (c *Client) dispatch(frame *Frame) {
	message, err := c.decoder(frame)
	if err != nil {
		c.log.Warn().Err(err).Str("module", "client").Msg("dropping undecodable inbound frame")
		return
	}

	if message.ID != "" {
		if interceptor, ok := c.takeInterceptor(message.ID); ok {
			interceptor(message)
			return
		}
	}

	c.routesMx.RLock()
	chain := make([]Handler, 0, len(c.middleware)+4)
	chain = append(chain, c.middleware...)
	var params MessageParams
	for _, boundRoute := range c.routes {
		if routeParams, ok := boundRoute.pattern.Match(message.Path); ok {
			params = routeParams
			chain = append(chain, boundRoute.handlers...)
			break
		}
	}
	c.routesMx.RUnlock()

	if len(chain) == 0 {
		c.log.Debug().Str("module", "client").Str("path", message.Path).Msg("no handler for inbound message")
		return
	}

	ctx := newContext(c, message, params, chain)
	ctx.Next()
}

func (c *Client) addInterceptor(id string, interceptor func(*InboundMessage)) {
	c.interceptorsMx.Lock()
	defer c.interceptorsMx.Unlock()
	c.interceptors[id] = interceptor
}

func (c *Client) removeInterceptor(id string) {
	c.interceptorsMx.Lock()
	defer c.interceptorsMx.Unlock()
	delete(c.interceptors, id)
}

func (c *Client) takeInterceptor(id string) (func(*InboundMessage), bool) {
	c.interceptorsMx.Lock()
	defer c.interceptorsMx.Unlock()
	interceptor, ok := c.interceptors[id]
	if ok {
		delete(c.interceptors, id)
	}
	return interceptor, ok
}
