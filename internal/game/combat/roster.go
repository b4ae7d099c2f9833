package combat

import "github.com/cory-johannsen/turnarena/internal/game/entity"

// Team is an ordered collection of fighters on one side.
type Team struct {
	Side     Side
	Fighters []entity.Handle
}

// Len returns the number of fighters on the team.
func (t Team) Len() int { return len(t.Fighters) }

// Contains reports whether h is a member of t.
func (t Team) Contains(h entity.Handle) bool {
	for _, f := range t.Fighters {
		if f == h {
			return true
		}
	}
	return false
}

// Roster holds both teams and is the single source of truth for target validity.
//
// Invariant: a fighter belongs to at most one team.
type Roster struct {
	entities Entities
	player   Team
	ai       Team
}

// NewRoster creates an empty Roster over entities.
//
// Precondition: entities must be non-nil.
func NewRoster(entities Entities) *Roster {
	r := &Roster{entities: entities}
	r.Reset()
	return r
}

// Reset empties both teams.
func (r *Roster) Reset() {
	r.player = Team{Side: SidePlayer}
	r.ai = Team{Side: SideAI}
}

// Add appends h to the team for side. Adding to SideNone, or adding a fighter
// already on a team, is a no-op.
func (r *Roster) Add(side Side, h entity.Handle) {
	if r.player.Contains(h) || r.ai.Contains(h) {
		return
	}
	switch side {
	case SidePlayer:
		r.player.Fighters = append(r.player.Fighters, h)
	case SideAI:
		r.ai.Fighters = append(r.ai.Fighters, h)
	}
}

// Team returns the team for side. SideNone yields an empty team.
func (r *Roster) Team(side Side) Team {
	switch side {
	case SidePlayer:
		return r.player
	case SideAI:
		return r.ai
	default:
		return Team{}
	}
}

// Size returns the combined size of both teams.
func (r *Roster) Size() int { return r.player.Len() + r.ai.Len() }

// TeamOf returns the team h belongs to, or an empty team if h is on neither.
func (r *Roster) TeamOf(h entity.Handle) Team {
	if r.ai.Contains(h) {
		return r.ai
	}
	if r.player.Contains(h) {
		return r.player
	}
	return Team{}
}

// IsValidTarget reports whether h can act or be targeted: it resolves to a
// live entity, is on a team, has health data, and has health above zero.
func (r *Roster) IsValidTarget(h entity.Handle) bool {
	if !r.entities.Valid(h) {
		return false
	}
	if !r.ai.Contains(h) && !r.player.Contains(h) {
		return false
	}
	current, _, ok := r.entities.Health(h)
	return ok && current > 0
}

// ValidMembers returns the members of t that are currently valid targets, in team order.
func (r *Roster) ValidMembers(t Team) []entity.Handle {
	var out []entity.Handle
	for _, f := range t.Fighters {
		if r.IsValidTarget(f) {
			out = append(out, f)
		}
	}
	return out
}

// Wiped reports whether t has no valid targets left.
func (r *Roster) Wiped(t Team) bool {
	for _, f := range t.Fighters {
		if r.IsValidTarget(f) {
			return false
		}
	}
	return true
}
