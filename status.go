package slipstream

import "github.com/coder/websocket"

// Status represents a WebSocket close status code as defined in RFC 6455. The
// stop supervisor closes the connection with StatusNormalClosure; applications
// supplying their own SocketConnection receive whichever status teardown used.
type Status = websocket.StatusCode

// WebSocket close status codes the client runtime works with.
const (
	StatusNormalClosure   Status = websocket.StatusNormalClosure   // 1000
	StatusGoingAway       Status = websocket.StatusGoingAway       // 1001
	StatusProtocolError   Status = websocket.StatusProtocolError   // 1002
	StatusAbnormalClosure Status = websocket.StatusAbnormalClosure // 1006
	StatusInternalError   Status = websocket.StatusInternalError   // 1011
	StatusServiceRestart  Status = websocket.StatusServiceRestart  // 1012
	StatusTryAgainLater   Status = websocket.StatusTryAgainLater   // 1013
)
