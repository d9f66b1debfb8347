package slipstream

import (
	"context"

	"github.com/rs/zerolog"
)

// supervisor is the single consumer of the bridge's stop handle. The first
// signal triggers teardown: the connection is closed, the pump context is
// cancelled, and the client's done gate is closed. The signal is a level —
// any signals raised after the first are indistinguishable from it and are
// simply dropped when the supervisor closes the handle on exit.
type supervisor struct {
	stop   *StopHandle
	conn   SocketConnection
	client *Client
	cancel context.CancelFunc
	done   chan struct{}
	log    zerolog.Logger
}

func (s *supervisor) run() {
	defer s.stop.Close()

	<-s.stop.Signals()

	s.log.Info().Str("module", "supervisor").Msg("stop signal received, tearing down client")

	s.client.beginStop()
	if err := s.conn.Close(StatusNormalClosure, "client stopped"); err != nil {
		s.log.Debug().Err(err).Str("module", "supervisor").Msg("connection close during teardown")
	}
	s.cancel()
	close(s.done)
}
