package natsx

import (
	"encoding/json"
	"time"

	"PArena/global"
	"PArena/logger"
	"PArena/service/world"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// Mirror publishes a copy of every world lifecycle event to NATS core
// subjects so dashboards, recorders or bots can observe the space without
// holding a WebSocket. Publishing is fire-and-forget: the gateway's own
// broadcast path never waits on or fails because of the mirror.
type Mirror struct {
	nc     *nats.Conn
	prefix string
}

// NewMirror connects to NATS using the gateway's mirror config.
func NewMirror(cfg global.NatsConfig) (*Mirror, error) {
	if cfg.URL == "" {
		return nil, errors.New("nats url missing")
	}
	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = "arena.world"
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name("arena-gateway-mirror"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(500*time.Millisecond),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(3*time.Second),
	)
	if err != nil {
		return nil, errors.Wrap(err, "connect nats")
	}
	return &Mirror{nc: nc, prefix: prefix}, nil
}

// Close drains the connection so queued events flush before shutdown.
func (m *Mirror) Close() {
	if m == nil || m.nc == nil {
		return
	}
	if err := m.nc.Drain(); err != nil {
		logger.Warnf("[mirror] drain: %v", err)
	}
}

func (m *Mirror) ParticipantJoined(p world.Participant) {
	m.publish("joined", p)
}

func (m *Mirror) ParticipantUpdated(p world.Participant) {
	m.publish("updated", p)
}

func (m *Mirror) ParticipantLeft(id string) {
	m.publish("left", world.LeftPayload{ID: id})
}

func (m *Mirror) publish(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Errorf("[mirror] marshal %s: %v", event, err)
		return
	}
	if err := m.nc.Publish(m.prefix+"."+event, data); err != nil {
		logger.Warnf("[mirror] publish %s: %v", event, err)
	}
}
