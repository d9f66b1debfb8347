package slipstream

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a client at construction time.
type Option func(*Client, *settings)

// settings holds construction-time values that don't live on the client after
// startup.
type settings struct {
	writerBufferSize int
	stopBufferSize   int
	writeTimeout     time.Duration
}

func defaultSettings() *settings {
	return &settings{
		writerBufferSize: 64,
		stopBufferSize:   8,
		writeTimeout:     5 * time.Second,
	}
}

func defaultUnmarshaler(data []byte, into any) error {
	return json.Unmarshal(data, into)
}

// WithLogger attaches a zerolog logger to the client. The default logger
// discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client, _ *settings) {
		c.log = log
	}
}

// WithWriterBufferSize sets the capacity of the writer handle's frame buffer.
// Senders block while the buffer is full.
func WithWriterBufferSize(size int) Option {
	return func(_ *Client, s *settings) {
		s.writerBufferSize = size
	}
}

// WithStopBufferSize sets the capacity of the stop handle's signal buffer.
func WithStopBufferSize(size int) Option {
	return func(_ *Client, s *settings) {
		s.stopBufferSize = size
	}
}

// WithWriteTimeout sets the deadline the writer pump applies to each write.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(_ *Client, s *settings) {
		s.writeTimeout = timeout
	}
}

// WithMessageDecoder replaces the inbound message decoder. The default is
// DecodeJSONMessage.
func WithMessageDecoder(decoder MessageDecoder) Option {
	return func(c *Client, _ *settings) {
		c.decoder = decoder
	}
}

// WithMessageEncoder replaces the outbound message encoder. The default is
// EncodeJSONMessage.
func WithMessageEncoder(encoder MessageEncoder) Option {
	return func(c *Client, _ *settings) {
		c.encoder = encoder
	}
}

// WithUnmarshaler replaces the payload unmarshaler used by Context.Unmarshal.
// The default is encoding/json.
func WithUnmarshaler(unmarshaler Unmarshaler) Option {
	return func(c *Client, _ *settings) {
		c.unmarshaler = unmarshaler
	}
}
