package slipstream_test

import (
	"testing"

	"github.com/slipstream-ws/slipstream"
)

func TestDecodeJSONMessage(t *testing.T) {
	frame := slipstream.NewTextFrame(`{
		"id": "msg-1",
		"path": "/chat/message",
		"data": {"text": "hello"},
		"meta": {"trace": "f81a"}
	}`)

	message, err := slipstream.DecodeJSONMessage(frame)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if message.ID != "msg-1" {
		t.Fatalf("expected id 'msg-1', got: %s", message.ID)
	}
	if message.Path != "/chat/message" {
		t.Fatalf("expected path '/chat/message', got: %s", message.Path)
	}
	if message.Meta["trace"] != "f81a" {
		t.Fatalf("expected meta trace 'f81a', got: %v", message.Meta["trace"])
	}
}

func TestDecodeJSONMessageRejectsMalformedFrame(t *testing.T) {
	if _, err := slipstream.DecodeJSONMessage(slipstream.NewTextFrame("not json")); err == nil {
		t.Fatal("expected decode error for malformed frame")
	}
}

func TestEncodeJSONMessageOmitsEmptyFields(t *testing.T) {
	frame, err := slipstream.EncodeJSONMessage(&slipstream.OutboundMessage{Data: map[string]string{"text": "hi"}})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if frame.Type != slipstream.MessageText {
		t.Fatal("expected a text frame")
	}
	if got := string(frame.Data); got != `{"data":{"text":"hi"}}` {
		t.Fatalf("unexpected envelope: %s", got)
	}
}
