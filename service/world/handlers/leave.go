package handlers

import (
	"PArena/service/world"
)

type LeaveHandler struct{}

func NewLeaveHandler() world.Handler { return &LeaveHandler{} }

func (h *LeaveHandler) Type() string { return world.FrameLeave }

// Handle runs the disconnect protocol for an explicit leave. The transport
// close that follows triggers Disconnect again, which no-ops: departure is
// broadcast at most once per connection.
func (h *LeaveHandler) Handle(ctx *world.Context, f *world.Frame, sess *world.Session) error {
	ctx.S.Disconnect(sess)
	sess.Client().Close()
	return nil
}
