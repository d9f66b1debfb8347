package slipstream

// Context carries an inbound message through the handler chain. It gives
// handlers access to the message, the parameters extracted from its path, and
// the client's send path for replies.
//
// Middleware continues the chain by calling Next. A handler that does not
// call Next ends the chain.
type Context struct {
	client   *Client
	message  *InboundMessage
	params   MessageParams
	handlers []Handler
	index    int
}

func newContext(client *Client, message *InboundMessage, params MessageParams, handlers []Handler) *Context {
	return &Context{
		client:   client,
		message:  message,
		params:   params,
		handlers: handlers,
	}
}

// Next invokes the next handler in the chain. The dispatcher calls Next once
// to start the chain; middleware calls it to pass control onward.
func (c *Context) Next() {
	if c.index >= len(c.handlers) {
		return
	}
	handler := c.handlers[c.index]
	c.index += 1
	handler.Handle(c)
}

// Message returns the inbound message being handled.
func (c *Context) Message() *InboundMessage {
	return c.message
}

// Path returns the inbound message's path.
func (c *Context) Path() string {
	return c.message.Path
}

// Params returns the parameters extracted from the message path by the bound
// handler's pattern. Middleware running before a route matches sees an empty
// map.
func (c *Context) Params() MessageParams {
	return c.params
}

// Unmarshal decodes the inbound message payload into the given value using
// the client's unmarshaler.
func (c *Context) Unmarshal(into any) error {
	return c.client.unmarshaler(c.message.Data, into)
}

// Send sends a new message to the server through the client's send path.
func (c *Context) Send(data any) error {
	return c.client.Send(data)
}

// Reply sends a response correlated to the inbound message by echoing its ID.
func (c *Context) Reply(data any) error {
	return c.client.sendMessage(&OutboundMessage{
		ID:   c.message.ID,
		Data: data,
	})
}

// Kill raises the client's stop signal. See Client.Kill.
func (c *Context) Kill() {
	c.client.Kill()
}
