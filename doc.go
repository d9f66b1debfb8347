// Package slipstream provides a concurrent WebSocket client runtime for Go.
//
// Slipstream hands outbound messages from any number of goroutines to a
// single writer goroutine through a dispatch bridge, routes inbound messages
// to pattern-bound handlers, and shuts the whole session down through one
// idempotent stop signal.
//
// # Key Features
//
//   - A send path safe for arbitrarily many concurrent callers, with
//     per-caller FIFO ordering
//   - Fail-fast escalation: a failed send tears the session down rather than
//     retrying behind the caller's back
//   - Pattern-based inbound routing with parameters and wildcards
//   - Request/reply correlation over message IDs
//   - Pluggable transports: WebSocket out of the box, NATS via the
//     nats-connection subpackage
//
// # Quick Start
//
// Dial a server, bind handlers, and send messages from any goroutine:
//
//	client, err := slipstream.Dial(ctx, "wss://example.com/socket")
//	if err != nil {
//	    return err
//	}
//
//	client.Bind("/chat/message", func(ctx *slipstream.Context) {
//	    var msg ChatMessage
//	    ctx.Unmarshal(&msg)
//	    ctx.Reply(ChatAck{Status: "received"})
//	})
//
//	client.SendTo("/chat/join", JoinRequest{Room: "general"})
//	<-client.Done()
//
// # Shutdown
//
// Any goroutine may call Kill to begin shutdown. The stop signal is a level,
// not an edge — raising it repeatedly is harmless, and the first signal wins.
// A send that fails because the writer is gone raises the signal itself and
// returns ErrWriterClosed; callers must not assume the client survives a
// failed send.
//
// # Message Format
//
// The default codec is a JSON envelope with an ID (for request/reply), a path
// (for routing), a data payload, and optional metadata:
//
//	{
//	  "id":   "abc123",
//	  "path": "/chat/message",
//	  "data": {"username": "alice", "text": "Hello!"},
//	  "meta": {"trace": "f81a"}
//	}
//
// Replace the codec with WithMessageDecoder and WithMessageEncoder to speak a
// different envelope format.
package slipstream
