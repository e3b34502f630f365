package world

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrDuplicateID means a participant id is already registered. Connection
	// ids are gateway-assigned, so hitting this is an invariant violation,
	// not a normal error path.
	ErrDuplicateID = errors.New("participant id already registered")
	// ErrNotFound means the participant has already been removed, e.g. a
	// late update racing a completed disconnect. Benign; callers drop the
	// would-be broadcast.
	ErrNotFound = errors.New("participant not found")
)

// Registry is the authoritative in-memory table of participants. Lifetime is
// bounded by process uptime; there is deliberately no persistence behind it.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]*Participant
	clock func() time.Time
}

func NewRegistry() *Registry {
	return NewRegistryWithClock(nil)
}

// NewRegistryWithClock injects a clock for tests; nil means time.Now.
func NewRegistryWithClock(clock func() time.Time) *Registry {
	if clock == nil {
		clock = time.Now
	}
	return &Registry{
		byID:  make(map[string]*Participant),
		clock: clock,
	}
}

// Register inserts a new participant and stamps UpdatedAt.
func (r *Registry) Register(p Participant) (Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; exists {
		return Participant{}, errors.Wrapf(ErrDuplicateID, "id=%s", p.ID)
	}
	p.UpdatedAt = r.clock().UnixMilli()
	stored := p
	r.byID[p.ID] = &stored
	return p, nil
}

// Remove deletes and returns the entry for id.
func (r *Registry) Remove(id string) (Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return Participant{}, errors.Wrapf(ErrNotFound, "id=%s", id)
	}
	delete(r.byID, id)
	return *p, nil
}

// Update merges the delta into the entry for id and refreshes UpdatedAt when
// at least one field survives sanitization. The timestamp is clamped so it
// never goes backwards for a given id, which lets receivers discard stale
// out-of-order updates safely.
func (r *Registry) Update(id string, d StateDelta) (Participant, error) {
	d = d.sanitize()

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return Participant{}, errors.Wrapf(ErrNotFound, "id=%s", id)
	}
	if d.empty() {
		// UpdatedAt marks actual mutations; a delta that lost every field
		// to sanitization leaves the entry untouched
		return *p, nil
	}

	if d.Position != nil {
		p.Position = *d.Position
	}
	if d.Yaw != nil {
		p.Yaw = *d.Yaw
	}
	if d.Animation != nil {
		p.Animation = *d.Animation
	}

	now := r.clock().UnixMilli()
	if now < p.UpdatedAt {
		now = p.UpdatedAt
	}
	p.UpdatedAt = now
	return *p, nil
}

// Get returns a copy of the entry for id.
func (r *Registry) Get(id string) (Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

// ListAll returns a snapshot of all current entries; order is unspecified.
// Used when onboarding a newly joined participant.
func (r *Registry) ListAll() []Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Participant, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, *p)
	}
	return out
}

// Len returns the number of registered participants.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
