package handlers

import (
	"PArena/service/world"
)

type UpdateHandler struct{}

func NewUpdateHandler() world.Handler { return &UpdateHandler{} }

func (h *UpdateHandler) Type() string { return world.FrameUpdateState }

func (h *UpdateHandler) Handle(ctx *world.Context, f *world.Frame, sess *world.Session) error {
	// fields that fail to decode are dropped individually; the id is bound
	// to the session, never read from the payload
	delta := world.DecodeUpdatePayload(f.Payload)
	ctx.S.UpdateState(sess, delta)
	return nil
}
