package session

import (
	"github.com/cory-johannsen/turnarena/internal/game/combat"
	"github.com/cory-johannsen/turnarena/internal/game/entity"
)

// Message is one inbound signal applied to a GameSession by Handle.
//
// The interface is sealed: only types in this package implement it.
type Message interface {
	message()
}

// WorldEntered reports that the controlling client has loaded into the world.
type WorldEntered struct {
	Player entity.Handle
}

// PointerHover reports the fighter under the player's pointer. A zero Target
// means the pointer left every fighter.
type PointerHover struct {
	Target entity.Handle
}

// ConfirmClick commits the last hovered fighter as the pending target.
type ConfirmClick struct{}

// AbilitySelected sets the pending ability. AbilityNone clears it.
type AbilitySelected struct {
	Ability combat.Ability
}

// StartOrRestart requests a fresh game on the next Update.
type StartOrRestart struct{}

// Leave tears the game down without restarting.
type Leave struct{}

// EntityDeath reports that an entity has died. Removal is deferred to the
// start of the next Update.
type EntityDeath struct {
	Entity entity.Handle
}

func (WorldEntered) message()    {}
func (PointerHover) message()    {}
func (ConfirmClick) message()    {}
func (AbilitySelected) message() {}
func (StartOrRestart) message()  {}
func (Leave) message()           {}
func (EntityDeath) message()     {}
