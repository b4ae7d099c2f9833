// Package combat implements the turn-based arena combat core: team rosters and
// target validity, the randomized turn order, ability resolution and victory
// evaluation.
//
// Nothing in this package returns an error for gameplay input. Stale handles,
// unset abilities and fighters outside both teams degrade to no-ops.
package combat

import "github.com/cory-johannsen/turnarena/internal/game/entity"

// Entities is the subset of the entity platform the combat core reads and writes.
//
// *entity.Registry satisfies Entities.
type Entities interface {
	Valid(h entity.Handle) bool
	Health(h entity.Handle) (current, max int, ok bool)
	SetHealth(h entity.Handle, current int)
	Position(h entity.Handle) (entity.Vec3, bool)
	TurnOrder(h entity.Handle) (entity.TurnOrderData, bool)
	SetTurnOrder(h entity.Handle, order int)
}

// Side distinguishes the two teams.
type Side int

const (
	SideNone Side = iota
	SidePlayer
	SideAI
)

// String returns a lower-case side label.
func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideAI:
		return "ai"
	default:
		return "none"
	}
}

// Opponent returns the other side. SideNone has no opponent.
func (s Side) Opponent() Side {
	switch s {
	case SidePlayer:
		return SideAI
	case SideAI:
		return SidePlayer
	default:
		return SideNone
	}
}
