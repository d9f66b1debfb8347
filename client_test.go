package slipstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/slipstream-ws/slipstream"
)

type mockConnection struct {
	incomingFrames chan *slipstream.Frame
	outgoingFrames chan *slipstream.Frame

	mu         sync.Mutex
	writeErr   error
	closed     bool
	closeCount int
	closeGate  chan struct{}
}

func newMockConnection() *mockConnection {
	return &mockConnection{
		incomingFrames: make(chan *slipstream.Frame, 16),
		outgoingFrames: make(chan *slipstream.Frame, 16),
		closeGate:      make(chan struct{}),
	}
}

func (m *mockConnection) Read(ctx context.Context) (*slipstream.Frame, error) {
	select {
	case frame := <-m.incomingFrames:
		return frame, nil
	case <-m.closeGate:
		return nil, errors.New("connection closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *mockConnection) Write(ctx context.Context, frame *slipstream.Frame) error {
	m.mu.Lock()
	writeErr := m.writeErr
	closed := m.closed
	m.mu.Unlock()
	if writeErr != nil {
		return writeErr
	}
	if closed {
		return errors.New("connection closed")
	}
	select {
	case m.outgoingFrames <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockConnection) Close(status slipstream.Status, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCount += 1
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.closeGate)
	return nil
}

func (m *mockConnection) failWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

func (m *mockConnection) sendIncoming(frame *slipstream.Frame) {
	m.incomingFrames <- frame
}

func (m *mockConnection) receiveOutgoing(t *testing.T, timeout time.Duration) *slipstream.Frame {
	t.Helper()
	select {
	case frame := <-m.outgoingFrames:
		return frame
	case <-time.After(timeout):
		t.Fatal("timeout waiting for outgoing frame")
		return nil
	}
}

func incomingJSON(t *testing.T, envelope map[string]any) *slipstream.Frame {
	t.Helper()
	data, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshalling test envelope: %v", err)
	}
	return &slipstream.Frame{Type: slipstream.MessageText, Data: data}
}

func decodeOutgoing(t *testing.T, frame *slipstream.Frame) map[string]any {
	t.Helper()
	envelope := map[string]any{}
	if err := json.Unmarshal(frame.Data, &envelope); err != nil {
		t.Fatalf("unmarshalling outgoing frame: %v", err)
	}
	return envelope
}

func TestClientWritesFramesInOrder(t *testing.T) {
	conn := newMockConnection()
	client := slipstream.NewClient(conn)
	defer client.Kill()

	if err := client.SendText("first"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if err := client.SendText("second"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if frame := conn.receiveOutgoing(t, time.Second); string(frame.Data) != "first" {
		t.Fatalf("expected 'first', got: %s", frame.Data)
	}
	if frame := conn.receiveOutgoing(t, time.Second); string(frame.Data) != "second" {
		t.Fatalf("expected 'second', got: %s", frame.Data)
	}
}

func TestClientDispatchesToBoundHandler(t *testing.T) {
	conn := newMockConnection()
	client := slipstream.NewClient(conn)
	defer client.Kill()

	handled := make(chan string, 1)
	client.Bind("/rooms/:room/message", func(ctx *slipstream.Context) {
		var payload struct {
			Text string `json:"text"`
		}
		if err := ctx.Unmarshal(&payload); err != nil {
			t.Errorf("unmarshal failed: %v", err)
		}
		handled <- ctx.Params().Get("room") + ":" + payload.Text
	})

	conn.sendIncoming(incomingJSON(t, map[string]any{
		"path": "/rooms/general/message",
		"data": map[string]string{"text": "hello"},
	}))

	select {
	case got := <-handled:
		if got != "general:hello" {
			t.Fatalf("expected 'general:hello', got: %s", got)
		}
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
}

func TestClientMiddlewareRunsBeforeHandler(t *testing.T) {
	conn := newMockConnection()
	client := slipstream.NewClient(conn)
	defer client.Kill()

	order := make(chan string, 2)
	client.Use(func(ctx *slipstream.Context) {
		order <- "middleware"
		ctx.Next()
	})
	client.Bind("/events", func(ctx *slipstream.Context) {
		order <- "handler"
	})

	conn.sendIncoming(incomingJSON(t, map[string]any{"path": "/events"}))

	if got := <-order; got != "middleware" {
		t.Fatalf("expected middleware first, got: %s", got)
	}
	if got := <-order; got != "handler" {
		t.Fatalf("expected handler second, got: %s", got)
	}
}

func TestClientMiddlewareCanEndChain(t *testing.T) {
	conn := newMockConnection()
	client := slipstream.NewClient(conn)
	defer client.Kill()

	blocked := make(chan struct{}, 1)
	client.Use(func(ctx *slipstream.Context) {
		blocked <- struct{}{}
	})
	client.Bind("/events", func(ctx *slipstream.Context) {
		t.Error("handler ran past blocking middleware")
	})

	conn.sendIncoming(incomingJSON(t, map[string]any{"path": "/events"}))

	<-blocked
	time.Sleep(50 * time.Millisecond)
}

func TestClientReplyEchoesMessageID(t *testing.T) {
	conn := newMockConnection()
	client := slipstream.NewClient(conn)
	defer client.Kill()

	client.Bind("/ping", func(ctx *slipstream.Context) {
		if err := ctx.Reply(map[string]string{"status": "ok"}); err != nil {
			t.Errorf("reply failed: %v", err)
		}
	})

	conn.sendIncoming(incomingJSON(t, map[string]any{
		"id":   "msg-42",
		"path": "/ping",
	}))

	envelope := decodeOutgoing(t, conn.receiveOutgoing(t, time.Second))
	if envelope["id"] != "msg-42" {
		t.Fatalf("expected reply to echo id 'msg-42', got: %v", envelope["id"])
	}
}

func TestClientRequestCorrelation(t *testing.T) {
	conn := newMockConnection()
	client := slipstream.NewClient(conn)
	defer client.Kill()

	client.Bind("/whoami", func(ctx *slipstream.Context) {
		t.Error("correlated response must not reach the handler chain")
	})

	type result struct {
		message *slipstream.InboundMessage
		err     error
	}
	results := make(chan result, 1)
	go func() {
		message, err := client.Request("/whoami", nil)
		results <- result{message, err}
	}()

	request := decodeOutgoing(t, conn.receiveOutgoing(t, time.Second))
	id, ok := request["id"].(string)
	if !ok || id == "" {
		t.Fatalf("request frame missing generated id: %v", request)
	}
	if request["path"] != "/whoami" {
		t.Fatalf("expected path '/whoami', got: %v", request["path"])
	}

	conn.sendIncoming(incomingJSON(t, map[string]any{
		"id":   id,
		"path": "/whoami",
		"data": map[string]string{"user": "alice"},
	}))

	select {
	case got := <-results:
		if got.err != nil {
			t.Fatalf("request failed: %v", got.err)
		}
		var payload struct {
			User string `json:"user"`
		}
		if err := json.Unmarshal(got.message.Data, &payload); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if payload.User != "alice" {
			t.Fatalf("expected user 'alice', got: %s", payload.User)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for request response")
	}
}

func TestClientKillTearsDownOnce(t *testing.T) {
	conn := newMockConnection()
	client := slipstream.NewClient(conn)

	client.Kill()
	client.Kill()

	select {
	case <-client.Done():
	case <-time.After(time.Second):
		t.Fatal("client never finished teardown")
	}

	conn.mu.Lock()
	closed := conn.closed
	conn.mu.Unlock()
	if !closed {
		t.Fatal("connection not closed during teardown")
	}
}

func TestClientWriteFailureEscalatesToShutdown(t *testing.T) {
	conn := newMockConnection()
	client := slipstream.NewClient(conn)

	conn.failWrites(errors.New("broken pipe"))

	if err := client.SendText("doomed"); err != nil {
		t.Fatalf("enqueue itself should succeed, got: %v", err)
	}

	select {
	case <-client.Done():
	case <-time.After(time.Second):
		t.Fatal("write failure did not shut the client down")
	}

	// The writer is gone, so later sends fail and must not panic.
	if err := client.SendText("after"); !errors.Is(err, slipstream.ErrWriterClosed) {
		t.Fatalf("expected ErrWriterClosed after teardown, got: %v", err)
	}
}

func TestClientErrSurfacesWriteFailureCause(t *testing.T) {
	conn := newMockConnection()
	client := slipstream.NewClient(conn)

	writeErr := errors.New("broken pipe")
	conn.failWrites(writeErr)

	if err := client.SendText("doomed"); err != nil {
		t.Fatalf("enqueue itself should succeed, got: %v", err)
	}

	select {
	case <-client.Done():
	case <-time.After(time.Second):
		t.Fatal("write failure did not shut the client down")
	}

	if err := client.Err(); !errors.Is(err, writeErr) {
		t.Fatalf("expected Err to surface the write failure, got: %v", err)
	}
}

func TestClientErrSurfacesReadFailureCause(t *testing.T) {
	conn := newMockConnection()
	client := slipstream.NewClient(conn)

	_ = conn.Close(slipstream.StatusAbnormalClosure, "peer vanished")

	select {
	case <-client.Done():
	case <-time.After(time.Second):
		t.Fatal("read failure did not shut the client down")
	}

	if client.Err() == nil {
		t.Fatal("expected Err to surface the read failure")
	}
}

func TestClientErrNilAfterDeliberateKill(t *testing.T) {
	conn := newMockConnection()
	client := slipstream.NewClient(conn)

	client.Kill()

	select {
	case <-client.Done():
	case <-time.After(time.Second):
		t.Fatal("client never finished teardown")
	}

	if err := client.Err(); err != nil {
		t.Fatalf("deliberate kill must not record a terminal error, got: %v", err)
	}
}

func TestClientReadFailureEscalatesToShutdown(t *testing.T) {
	conn := newMockConnection()
	client := slipstream.NewClient(conn)

	// Closing the mock makes Read fail, which must raise the stop signal.
	_ = conn.Close(slipstream.StatusAbnormalClosure, "peer vanished")

	select {
	case <-client.Done():
	case <-time.After(time.Second):
		t.Fatal("read failure did not shut the client down")
	}
}

func TestClientRequestFailsWhenClientStops(t *testing.T) {
	conn := newMockConnection()
	client := slipstream.NewClient(conn)

	results := make(chan error, 1)
	go func() {
		_, err := client.Request("/never", nil)
		results <- err
	}()

	conn.receiveOutgoing(t, time.Second)
	client.Kill()

	select {
	case err := <-results:
		if !errors.Is(err, slipstream.ErrClientStopped) {
			t.Fatalf("expected ErrClientStopped, got: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("request did not observe client shutdown")
	}
}
