package slipstream

// Handler is a handler object interface. Any object that implements this
// interface can be bound to a message path or used as middleware.
type Handler interface {
	Handle(ctx *Context)
}

// HandlerFunc is a function adapter that allows ordinary functions to be used
// as handlers. This is the most common way to define handlers; implement the
// Handler interface instead for stateful handlers.
type HandlerFunc func(ctx *Context)

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx *Context) {
	f(ctx)
}

// route associates a compiled pattern with the handlers bound to it.
type route struct {
	pattern  *Pattern
	handlers []Handler
}
