package combat

import (
	"github.com/cory-johannsen/turnarena/internal/game/dice"
	"github.com/cory-johannsen/turnarena/internal/game/effect"
	"github.com/cory-johannsen/turnarena/internal/game/entity"
)

// Sequencer owns the randomized turn order and the current-turn cursor.
//
// Invariant: after Initialize, Len() == roster.Size() until Reset.
type Sequencer struct {
	roster   *Roster
	entities Entities
	effects  *effect.Queue
	order    []entity.Handle
	cursor   int
}

// NewSequencer creates an empty Sequencer.
//
// Precondition: roster, entities and effects must be non-nil.
func NewSequencer(roster *Roster, entities Entities, effects *effect.Queue) *Sequencer {
	return &Sequencer{roster: roster, entities: entities, effects: effects, cursor: -1}
}

// Initialize builds the turn order from the AI team followed by the player team,
// shuffles it with src, publishes every slot as inactive, and selects the first actor.
//
// Precondition: src must be non-nil; at least one fighter must be a valid target.
// Postcondition: Len() == roster.Size(); Current() is a valid target.
func (s *Sequencer) Initialize(src dice.Source) {
	ai := s.roster.Team(SideAI).Fighters
	player := s.roster.Team(SidePlayer).Fighters
	s.order = make([]entity.Handle, 0, len(ai)+len(player))
	s.order = append(s.order, ai...)
	s.order = append(s.order, player...)
	dice.Shuffle(s.order, src)

	for i, h := range s.order {
		s.entities.SetTurnOrder(h, i)
		s.effects.Push(effect.TurnOrderUpdate{Order: i, Status: effect.StatusInactive, Image: s.image(h)})
	}
	s.cursor = -1
	s.Advance()
}

// Reset clears the turn order.
func (s *Sequencer) Reset() {
	s.order = nil
	s.cursor = -1
}

// Advance moves the cursor to the next valid fighter, wrapping, and republishes
// the status of every slot.
//
// Postcondition: Returns false and leaves the cursor unchanged when no fighter
// in the order is a valid target.
func (s *Sequencer) Advance() bool {
	n := len(s.order)
	if n == 0 {
		return false
	}
	next := s.cursor
	found := false
	for range n {
		next = (next + 1) % n
		if s.roster.IsValidTarget(s.order[next]) {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	s.cursor = next
	s.Publish()
	return true
}

// Current returns the fighter at the cursor.
func (s *Sequencer) Current() (entity.Handle, bool) {
	if s.cursor < 0 || s.cursor >= len(s.order) {
		return entity.Handle{}, false
	}
	return s.order[s.cursor], true
}

// IsPlayerTurn reports whether the fighter at the cursor is on the player team.
func (s *Sequencer) IsPlayerTurn() bool {
	h, ok := s.Current()
	return ok && s.roster.Team(SidePlayer).Contains(h)
}

// Cursor returns the current index, or -1 before the first Advance.
func (s *Sequencer) Cursor() int { return s.cursor }

// Len returns the number of slots.
func (s *Sequencer) Len() int { return len(s.order) }

// Order returns a copy of the turn order.
func (s *Sequencer) Order() []entity.Handle {
	out := make([]entity.Handle, len(s.order))
	copy(out, s.order)
	return out
}

// StatusAt returns the display status of slot i. Fainted takes precedence over active.
func (s *Sequencer) StatusAt(i int) effect.Status {
	if !s.roster.IsValidTarget(s.order[i]) {
		return effect.StatusFainted
	}
	if i == s.cursor {
		return effect.StatusActive
	}
	return effect.StatusInactive
}

// Publish republishes the status of every slot.
func (s *Sequencer) Publish() {
	for i, h := range s.order {
		s.effects.Push(effect.TurnOrderUpdate{Order: i, Status: s.StatusAt(i), Image: s.image(h)})
	}
}

func (s *Sequencer) image(h entity.Handle) string {
	to, _ := s.entities.TurnOrder(h)
	return to.Image
}
