package handlers

import (
	"encoding/json"
	"strings"

	"PArena/logger"
	"PArena/service/world"
)

// maxDisplayNameLen bounds what we accept before falling back to the default.
const maxDisplayNameLen = 64

type JoinHandler struct{}

func NewJoinHandler() world.Handler { return &JoinHandler{} }

func (h *JoinHandler) Type() string { return world.FrameJoin }

func (h *JoinHandler) Handle(ctx *world.Context, f *world.Frame, sess *world.Session) error {
	var payload world.JoinPayload
	if len(f.Payload) > 0 {
		if err := json.Unmarshal(f.Payload, &payload); err != nil {
			// malformed join payload: proceed with a defaulted name rather
			// than rejecting the connection
			logger.Debugf("[join] bad payload conn=%s err=%v", sess.ConnID(), err)
		}
	}

	name := strings.TrimSpace(payload.DisplayName)
	if len(name) > maxDisplayNameLen {
		name = name[:maxDisplayNameLen]
	}

	return ctx.S.Join(sess, name)
}
