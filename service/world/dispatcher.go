package world

import (
	"PArena/logger"
)

// Handler processes one inbound frame type.
type Handler interface {
	Type() string
	Handle(ctx *Context, f *Frame, sess *Session) error
}

// Context carries the server into handlers.
type Context struct {
	S *Server
}

// Dispatcher routes inbound frames to their handler by frame type.
type Dispatcher struct {
	handlers map[string]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

// Register installs a handler. Call before serving; the map is not guarded.
func (d *Dispatcher) Register(h Handler) { d.handlers[h.Type()] = h }

// GetHandler returns the handler for a frame type, or nil. An unknown type
// is a protocol error and the frame is dropped silently upstream.
func (d *Dispatcher) GetHandler(frameType string) Handler {
	h, ok := d.handlers[frameType]
	if !ok {
		logger.Debugf("[dispatch] no handler for type=%s", frameType)
		return nil
	}
	return h
}
