package world

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func testParticipant(id string) Participant {
	return Participant{
		ID:          id,
		DisplayName: "player-" + id,
		Position:    Vector3{},
		Animation:   AnimationIdle,
	}
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()

	p, err := r.Register(testParticipant("c1"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if p.UpdatedAt == 0 {
		t.Fatal("Register must stamp UpdatedAt")
	}

	got, ok := r.Get("c1")
	if !ok {
		t.Fatal("participant missing after register")
	}
	if got.DisplayName != "player-c1" {
		t.Fatalf("display name = %q", got.DisplayName)
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
}

func TestRegisterDuplicateID(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Register(testParticipant("c1")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := r.Register(testParticipant("c1"))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("duplicate register must not add an entry, Len = %d", r.Len())
	}
}

func TestRemove(t *testing.T) {
	r := NewRegistry()
	_, _ = r.Register(testParticipant("c1"))

	p, err := r.Remove("c1")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if p.ID != "c1" {
		t.Fatalf("removed id = %q", p.ID)
	}
	if r.Len() != 0 {
		t.Fatalf("Len after remove = %d", r.Len())
	}

	// second remove is the disconnect-raced-removal case: non-fatal
	if _, err := r.Remove("c1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateMergesOnlyProvidedFields(t *testing.T) {
	r := NewRegistry()
	_, _ = r.Register(Participant{
		ID:          "c1",
		DisplayName: "alice",
		Position:    Vector3{X: 1, Y: 2, Z: 3},
		Yaw:         0.5,
		Animation:   AnimationIdle,
	})

	anim := AnimationWalk
	p, err := r.Update("c1", StateDelta{Animation: &anim})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.Animation != AnimationWalk {
		t.Fatalf("animation = %q", p.Animation)
	}
	if p.Position != (Vector3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("position changed by partial update: %+v", p.Position)
	}
	if p.Yaw != 0.5 {
		t.Fatalf("yaw changed by partial update: %v", p.Yaw)
	}

	pos := Vector3{X: 9, Y: 0, Z: -2}
	p, err = r.Update("c1", StateDelta{Position: &pos})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.Position != pos {
		t.Fatalf("position = %+v, want %+v", p.Position, pos)
	}
	if p.Animation != AnimationWalk {
		t.Fatalf("animation lost on later update: %q", p.Animation)
	}
}

func TestUpdateAbsentID(t *testing.T) {
	r := NewRegistry()
	yaw := 1.0
	if _, err := r.Update("ghost", StateDelta{Yaw: &yaw}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateDropsInvalidFields(t *testing.T) {
	r := NewRegistry()
	_, _ = r.Register(Participant{ID: "c1", Yaw: 0.7, Animation: AnimationIdle})

	nan := math.NaN()
	badPos := Vector3{X: math.Inf(1)}
	badAnim := "backflip"
	goodYaw := 2.0

	p, err := r.Update("c1", StateDelta{
		Position:  &badPos,
		Yaw:       &nan,
		Animation: &badAnim,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.Yaw != 0.7 || p.Animation != AnimationIdle || p.Position != (Vector3{}) {
		t.Fatalf("invalid fields must not merge: %+v", p)
	}

	p, err = r.Update("c1", StateDelta{Yaw: &goodYaw, Animation: &badAnim})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.Yaw != 2.0 {
		t.Fatalf("valid field dropped alongside invalid one: yaw=%v", p.Yaw)
	}
	if p.Animation != AnimationIdle {
		t.Fatalf("unknown animation merged: %q", p.Animation)
	}
}

func TestUpdateAllInvalidKeepsTimestamp(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	r := NewRegistryWithClock(clock)
	reg, _ := r.Register(Participant{ID: "c1", Animation: AnimationIdle})

	now = time.Unix(2000, 0)
	badAnim := "backflip"
	p, err := r.Update("c1", StateDelta{Animation: &badAnim})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.UpdatedAt != reg.UpdatedAt {
		t.Fatalf("delta with no surviving fields bumped UpdatedAt: %d -> %d",
			reg.UpdatedAt, p.UpdatedAt)
	}
	if p.Animation != AnimationIdle {
		t.Fatalf("unknown animation merged: %q", p.Animation)
	}
}

func TestUpdatedAtNeverDecreases(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	r := NewRegistryWithClock(clock)
	_, _ = r.Register(testParticipant("c1"))

	yaw := 1.0
	p1, _ := r.Update("c1", StateDelta{Yaw: &yaw})

	// clock goes backwards (NTP step); timestamp must hold its ground
	now = time.Unix(500, 0)
	p2, _ := r.Update("c1", StateDelta{Yaw: &yaw})
	if p2.UpdatedAt < p1.UpdatedAt {
		t.Fatalf("UpdatedAt went backwards: %d -> %d", p1.UpdatedAt, p2.UpdatedAt)
	}

	now = time.Unix(2000, 0)
	p3, _ := r.Update("c1", StateDelta{Yaw: &yaw})
	if p3.UpdatedAt <= p2.UpdatedAt {
		t.Fatalf("UpdatedAt should advance with the clock: %d -> %d", p2.UpdatedAt, p3.UpdatedAt)
	}
}

func TestListAllSnapshot(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 5; i++ {
		_, _ = r.Register(testParticipant(fmt.Sprintf("c%d", i)))
	}

	list := r.ListAll()
	if len(list) != 5 {
		t.Fatalf("ListAll = %d entries, want 5", len(list))
	}

	// mutating the snapshot must not touch the registry
	list[0].DisplayName = "mutated"
	got, _ := r.Get(list[0].ID)
	if got.DisplayName == "mutated" {
		t.Fatal("ListAll must return copies, not aliases")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", n)
			if _, err := r.Register(testParticipant(id)); err != nil {
				t.Errorf("Register %s: %v", id, err)
				return
			}
			yaw := float64(n)
			for j := 0; j < 100; j++ {
				_, _ = r.Update(id, StateDelta{Yaw: &yaw})
				_ = r.ListAll()
			}
			if _, err := r.Remove(id); err != nil {
				t.Errorf("Remove %s: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != 0 {
		t.Fatalf("registry not empty after all removals: %d", r.Len())
	}
}
