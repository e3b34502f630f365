package handlers

import (
	"PArena/service/world"
)

// RegisterAll installs every inbound frame handler on the server's
// dispatcher. Call once from main before serving.
func RegisterAll(s *world.Server) {
	s.Disp().Register(NewJoinHandler())
	s.Disp().Register(NewUpdateHandler())
	s.Disp().Register(NewLeaveHandler())
}
