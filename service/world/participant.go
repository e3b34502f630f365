package world

import "math"

// Vector3 is a world-space position.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Animation labels a client may report for its avatar.
const (
	AnimationIdle = "idle"
	AnimationWalk = "walk"
	AnimationRun  = "run"
	AnimationJump = "jump"
)

// ValidAnimation reports whether the label is one the gateway relays.
func ValidAnimation(label string) bool {
	switch label {
	case AnimationIdle, AnimationWalk, AnimationRun, AnimationJump:
		return true
	}
	return false
}

// Participant is one connected client's synchronized avatar state.
// The ID is the connection id assigned at upgrade time; it never outlives
// the connection and is never reused while the connection is open.
type Participant struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	Position    Vector3 `json:"position"`
	Yaw         float64 `json:"yaw"` // radians
	Animation   string  `json:"animation"`
	UpdatedAt   int64   `json:"updatedAt"` // unix millis, non-decreasing per id
}

// StateDelta is a partial mutation of a participant's state.
// Nil fields are left unchanged on merge.
type StateDelta struct {
	Position  *Vector3
	Yaw       *float64
	Animation *string
}

// sanitize drops fields that carry values the gateway must not relay:
// non-finite numbers and unknown animation labels. Dropping a field keeps
// the previous value, matching the best-effort protocol where a bad frame
// never terminates the connection.
func (d StateDelta) sanitize() StateDelta {
	if d.Position != nil && !finiteVector(*d.Position) {
		d.Position = nil
	}
	if d.Yaw != nil && !finite(*d.Yaw) {
		d.Yaw = nil
	}
	if d.Animation != nil && !ValidAnimation(*d.Animation) {
		d.Animation = nil
	}
	return d
}

func (d StateDelta) empty() bool {
	return d.Position == nil && d.Yaw == nil && d.Animation == nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteVector(v Vector3) bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}
