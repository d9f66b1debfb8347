package slipstream

import "encoding/json"

type jsonEnvelope struct {
	ID   string          `json:"id,omitempty"`
	Path string          `json:"path,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
	Meta map[string]any  `json:"meta,omitempty"`
}

// DecodeJSONMessage is the default MessageDecoder. It expects text frames
// carrying a JSON envelope of the form:
//
//	{
//	  "id":   "abc123",
//	  "path": "/chat/message",
//	  "data": { ... },
//	  "meta": { ... }
//	}
func DecodeJSONMessage(frame *Frame) (*InboundMessage, error) {
	envelope := &jsonEnvelope{}
	if err := json.Unmarshal(frame.Data, envelope); err != nil {
		return nil, err
	}
	return &InboundMessage{
		ID:   envelope.ID,
		Path: envelope.Path,
		Data: envelope.Data,
		Meta: envelope.Meta,
	}, nil
}

// EncodeJSONMessage is the default MessageEncoder. It produces a text frame
// carrying the same JSON envelope format DecodeJSONMessage consumes.
func EncodeJSONMessage(message *OutboundMessage) (*Frame, error) {
	var data json.RawMessage
	if message.Data != nil {
		marshalled, err := json.Marshal(message.Data)
		if err != nil {
			return nil, err
		}
		data = marshalled
	}
	frameData, err := json.Marshal(&jsonEnvelope{
		ID:   message.ID,
		Path: message.Path,
		Data: data,
		Meta: message.Meta,
	})
	if err != nil {
		return nil, err
	}
	return &Frame{Type: MessageText, Data: frameData}, nil
}
