package ws

import (
	"TDProject/logger"
)

// Handler processes one inbound event kind.
type Handler interface {
	Type() string
	Handle(ctx *Context, f *Frame, c *Conn) error
}

// Context carries what handlers may touch.
type Context struct {
	G *Gateway
}

type Dispatcher struct {
	handlers map[string]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

func (d *Dispatcher) Register(h Handler) { d.handlers[h.Type()] = h }

func (d *Dispatcher) GetHandler(eventType string) Handler {
	h, ok := d.handlers[eventType]
	if !ok {
		logger.Debugf("[ws] no handler for type=%s", eventType)
		return nil
	}
	return h
}
