package slipstream

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// writerPump is the single consumer of the bridge's writer handle. It drains
// outbound frames in order and writes each to the connection. A failed write
// is fatal for the session: the pump raises the stop signal and exits. On
// exit it closes the writer handle so in-flight and future sends observe the
// disconnect.
type writerPump struct {
	handle       *Handle
	conn         SocketConnection
	bridge       *Bridge
	client       *Client
	writeTimeout time.Duration
	log          zerolog.Logger
}

func (w *writerPump) run(ctx context.Context) {
	defer w.handle.Close()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug().Str("module", "writer").Msg("writer pump stopping")
			return
		case frame := <-w.handle.Receive():
			if err := w.write(ctx, frame); err != nil {
				w.log.Error().Err(err).Str("module", "writer").Msg("outbound write failed")
				w.client.setErr(fmt.Errorf("outbound write: %w", err))
				// Close before raising the stop signal so sends racing the
				// teardown observe the disconnect rather than enqueueing
				// into a dead queue.
				w.handle.Close()
				w.bridge.Kill()
				return
			}
		}
	}
}

func (w *writerPump) write(ctx context.Context, frame *Frame) error {
	writeCtx, cancel := context.WithTimeout(ctx, w.writeTimeout)
	defer cancel()
	return w.conn.Write(writeCtx, frame)
}
