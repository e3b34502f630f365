package world

import (
	"fmt"

	"PArena/global"
	"PArena/logger"
	"PArena/tools/ratelimit"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// EventMirror receives a copy of every lifecycle event for out-of-process
// consumers (e.g. the NATS mirror). Implementations must be fire-and-forget;
// the gateway never blocks on or fails because of the mirror.
type EventMirror interface {
	ParticipantJoined(p Participant)
	ParticipantUpdated(p Participant)
	ParticipantLeft(id string)
}

// Server owns the world state of one gateway node: the participant registry,
// the connection table, the broadcast router and the frame dispatcher. It is
// the session lifecycle controller keeping registry and broadcast consistent
// across join, update and disconnect.
type Server struct {
	cfg  global.WorldConfig
	gwID string

	registry *Registry
	conns    *ConnManager
	fanout   *Fanout
	router   *Router
	disp     *Dispatcher
	limiter  *ratelimit.KeyLimiter
	metrics  *Metrics
	mirror   EventMirror
}

// NewServer wires the world server. mirror may be nil (no event mirroring),
// reg may be nil (no metrics).
func NewServer(cfg *global.AppConfig, mirror EventMirror, reg prometheus.Registerer) *Server {
	metrics := NewMetrics(reg)
	conns := NewConnManager()
	fanout := NewFanout(cfg.World.FanoutQueue, func(connID string) {
		metrics.IncDropped()
		logger.Debugf("[fanout] send queue full, dropped frame conn=%s", connID)
	})

	s := &Server{
		cfg:      cfg.World,
		gwID:     cfg.GatewayNodeId,
		registry: NewRegistry(),
		conns:    conns,
		fanout:   fanout,
		router:   NewRouter(conns, fanout, metrics),
		disp:     NewDispatcher(),
		limiter:  ratelimit.New(cfg.World.UpdateRPS, cfg.World.UpdateBurst, 0),
		metrics:  metrics,
		mirror:   mirror,
	}
	return s
}

func (s *Server) Disp() *Dispatcher     { return s.disp }
func (s *Server) ConnMgr() *ConnManager { return s.conns }
func (s *Server) Registry() *Registry   { return s.registry }
func (s *Server) GwID() string          { return s.gwID }

// Join runs the post-join protocol: register the participant, send the full
// roster to the joiner, announce the join to everyone else. A second join on
// the same connection is a protocol error and is dropped silently.
func (s *Server) Join(sess *Session, displayName string) error {
	if !sess.Activate() {
		logger.Debugf("[world] join ignored, session %s is %s", sess.ConnID(), sess.State())
		return nil
	}

	id := sess.ConnID()
	if displayName == "" {
		displayName = defaultDisplayName(id)
	}

	p, err := s.registry.Register(Participant{
		ID:          id,
		DisplayName: displayName,
		Position:    Vector3{X: s.cfg.SpawnX, Y: s.cfg.SpawnY, Z: s.cfg.SpawnZ},
		Yaw:         0,
		Animation:   AnimationIdle,
	})
	if err != nil {
		// gateway-assigned ids make this unreachable; a hit means the
		// invariant broke, so log loudly and tear the connection down
		logger.Errorf("[world] register conn=%s: %v", id, err)
		s.Disconnect(sess)
		sess.Client().Close()
		return errors.Wrap(err, "register participant")
	}

	roster := s.registry.ListAll()
	s.router.NotifyJoin(p, roster, sess.Client())
	s.metrics.ParticipantJoined()
	if s.mirror != nil {
		s.mirror.ParticipantJoined(p)
	}
	logger.Infof("[world] joined id=%s name=%q participants=%d", p.ID, p.DisplayName, len(roster))
	return nil
}

// UpdateState merges a partial state delta into the sender's own entry and
// fans the result out to everyone else. The participant id always comes from
// the session binding; payload-supplied ids are never trusted.
func (s *Server) UpdateState(sess *Session, delta StateDelta) {
	if !sess.Active() {
		// update before join: protocol error, dropped silently
		s.metrics.IncRejected("not_active")
		return
	}
	delta = delta.sanitize()
	if delta.empty() {
		// every field was absent or invalid; nothing mutates, so nothing
		// is announced and UpdatedAt stays put
		s.metrics.IncRejected("empty_update")
		return
	}

	p, err := s.registry.Update(sess.ConnID(), delta)
	if err != nil {
		// already disconnected; benign race, drop the would-be broadcast
		logger.Debugf("[world] update after removal conn=%s", sess.ConnID())
		return
	}

	s.router.NotifyUpdate(p)
	if s.mirror != nil {
		s.mirror.ParticipantUpdated(p)
	}
}

// Disconnect runs the teardown protocol exactly once per session regardless
// of how many disconnect signals arrive: remove the registry entry, drop the
// connection from the table, announce the departure.
func (s *Server) Disconnect(sess *Session) {
	prev, first := sess.Close()
	if !first {
		return
	}

	id := sess.ConnID()
	s.conns.Remove(id)
	s.limiter.Forget(id)

	if prev != SessionActive {
		// never joined; nothing was ever broadcast about this connection
		return
	}

	if _, err := s.registry.Remove(id); err != nil {
		// removal raced something else; log and keep going, the broadcast
		// must not fire twice
		logger.Warnf("[world] remove conn=%s: %v", id, err)
		return
	}

	s.router.NotifyLeave(id)
	s.metrics.ParticipantLeft()
	if s.mirror != nil {
		s.mirror.ParticipantLeft(id)
	}
	logger.Infof("[world] left id=%s participants=%d", id, s.registry.Len())
}

// Shutdown closes every connection and stops the fan-out queue.
func (s *Server) Shutdown() {
	s.conns.CloseAll()
	s.fanout.Close()
}

func defaultDisplayName(id string) string {
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return fmt.Sprintf("guest-%s", id)
}
