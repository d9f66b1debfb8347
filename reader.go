package slipstream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
)

// readerPump reads inbound frames from the connection and hands each to the
// client's dispatcher. A read error is fatal for the session: the pump raises
// the stop signal and exits. A normal closure initiated by the server follows
// the same path — shutdown is the stop supervisor's job either way.
type readerPump struct {
	conn   SocketConnection
	bridge *Bridge
	client *Client
	log    zerolog.Logger
}

func (r *readerPump) run(ctx context.Context) {
	for {
		frame, err := r.conn.Read(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				r.log.Debug().Str("module", "reader").Msg("reader pump stopping")
				return
			}
			if isConnectionClosed(err) {
				r.log.Info().Str("module", "reader").Msg("connection closed by peer")
			} else {
				r.log.Error().Err(err).Str("module", "reader").Msg("inbound read failed")
				r.client.setErr(fmt.Errorf("inbound read: %w", err))
			}
			r.bridge.Kill()
			return
		}
		go r.client.dispatch(frame)
	}
}

func isConnectionClosed(err error) bool {
	return websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway ||
		errors.Is(err, io.EOF)
}
