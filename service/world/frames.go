package world

import (
	"encoding/json"
	"time"

	"PArena/logger"

	"github.com/pkg/errors"
)

// Frame types, client -> server.
const (
	FrameJoin        = "join"
	FrameUpdateState = "updateState"
	FrameLeave       = "leave"
)

// Frame types, server -> client.
const (
	FrameRoster = "roster"
	FrameJoined = "participantJoined"
	FrameUpdate = "participantUpdated"
	FrameLeft   = "participantLeft"
)

// Frame is the wire envelope for every message in either direction.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Ts      int64           `json:"ts,omitempty"` // unix millis, server-stamped on outbound frames
}

// ParseFrame decodes an inbound envelope.
func ParseFrame(raw []byte) (*Frame, error) {
	f := &Frame{}
	if err := json.Unmarshal(raw, f); err != nil {
		return nil, errors.Wrap(err, "unmarshal frame")
	}
	if f.Type == "" {
		return nil, errors.New("frame missing type")
	}
	return f, nil
}

// JoinPayload is the client's join request.
type JoinPayload struct {
	DisplayName string `json:"displayName"`
}

// UpdatePayload is the client's partial state update. Absent fields stay nil
// and are not merged.
type UpdatePayload struct {
	Position  *Vector3 `json:"position"`
	Yaw       *float64 `json:"yaw"`
	Animation *string  `json:"animation"`
}

// DecodeUpdatePayload decodes an updateState payload field by field: a field
// that fails to decode is dropped on its own while the rest of the frame is
// still applied. Occasional malformed frames on a best-effort real-time
// channel must not cost the whole update, let alone the connection.
func DecodeUpdatePayload(raw json.RawMessage) StateDelta {
	var d StateDelta
	if len(raw) == 0 {
		return d
	}

	var p UpdatePayload
	if err := json.Unmarshal(raw, &p); err == nil {
		d.Position = p.Position
		d.Yaw = p.Yaw
		d.Animation = p.Animation
		return d
	}

	// strict decode failed; salvage what we can per field
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return StateDelta{}
	}
	if raw, ok := fields["position"]; ok {
		var v Vector3
		if json.Unmarshal(raw, &v) == nil {
			d.Position = &v
		}
	}
	if raw, ok := fields["yaw"]; ok {
		var y float64
		if json.Unmarshal(raw, &y) == nil {
			d.Yaw = &y
		}
	}
	if raw, ok := fields["animation"]; ok {
		var a string
		if json.Unmarshal(raw, &a) == nil {
			d.Animation = &a
		}
	}
	return d
}

// RosterPayload is sent once, only to the joining connection, so the new
// client can materialize everyone already present without a query round-trip.
type RosterPayload struct {
	SelfID       string        `json:"selfId"`
	Participants []Participant `json:"participants"`
}

// LeftPayload announces a departure; full state is no longer relevant.
type LeftPayload struct {
	ID string `json:"id"`
}

// ---- server event constructors ----

func BuildRoster(selfID string, participants []Participant) []byte {
	return mustFrame(FrameRoster, RosterPayload{SelfID: selfID, Participants: participants})
}

func BuildJoined(p Participant) []byte {
	return mustFrame(FrameJoined, p)
}

func BuildUpdated(p Participant) []byte {
	return mustFrame(FrameUpdate, p)
}

func BuildLeft(id string) []byte {
	return mustFrame(FrameLeft, LeftPayload{ID: id})
}

func mustFrame(frameType string, payload any) []byte {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Errorf("[frames] marshal %s payload: %v", frameType, err)
		return nil
	}
	out, err := json.Marshal(Frame{
		Type:    frameType,
		Payload: raw,
		Ts:      time.Now().UnixMilli(),
	})
	if err != nil {
		logger.Errorf("[frames] marshal %s frame: %v", frameType, err)
		return nil
	}
	return out
}
