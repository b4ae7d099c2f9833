// Package effect defines the closed set of outbound effect descriptions the
// arena core produces and the queue a collaborator drains them from.
//
// Effects are fire-and-forget: nothing a collaborator does with them feeds
// back into combat state.
package effect

import (
	"fmt"
	"strconv"

	"github.com/cory-johannsen/turnarena/internal/game/entity"
)

// Status is the turn-order display state of a fighter.
type Status int

const (
	StatusInactive Status = iota
	StatusActive
	StatusFainted
)

// String returns a lower-case status label.
func (s Status) String() string {
	switch s {
	case StatusInactive:
		return "inactive"
	case StatusActive:
		return "active"
	case StatusFainted:
		return "fainted"
	default:
		return "unknown"
	}
}

// Effect is one outbound effect description.
//
// The interface is sealed: only types in this package implement it.
type Effect interface {
	Kind() string
	sealed()
}

// TurnOrderUpdate republishes one fighter's slot in the turn order.
type TurnOrderUpdate struct {
	Order  int
	Status Status
	Image  string
}

// Victory reports that every AI fighter is down.
type Victory struct{}

// Loss reports that every player fighter is down.
type Loss struct{}

// Particle spawns a named particle at a world position.
type Particle struct {
	Name string
	Pos  entity.Vec3
}

// HitAnimation asks the presentation layer to play the on-hit animation.
type HitAnimation struct {
	Target entity.Handle
}

// Lightning strikes a lightning bolt at a world position.
type Lightning struct {
	Pos entity.Vec3
}

// Fill replaces every block in the box From..To with Block.
type Fill struct {
	From  entity.Vec3
	To    entity.Vec3
	Block string
}

// Teleport moves every player to Pos facing Yaw (horizontal) and Pitch
// (vertical), rendered in the host's yaw-then-pitch argument order.
type Teleport struct {
	Pos   entity.Vec3
	Yaw   float64
	Pitch float64
}

// Command is a raw host command such as a gamerule change.
type Command struct {
	Line string
}

func (TurnOrderUpdate) Kind() string { return "update_turn_order" }
func (Victory) Kind() string         { return "victory" }
func (Loss) Kind() string            { return "loss" }
func (Particle) Kind() string        { return "spawn_particle" }
func (HitAnimation) Kind() string    { return "execute_on_hit_animation" }
func (Lightning) Kind() string       { return "command" }
func (Fill) Kind() string            { return "command" }
func (Teleport) Kind() string        { return "command" }
func (Command) Kind() string         { return "command" }

func (TurnOrderUpdate) sealed() {}
func (Victory) sealed()         {}
func (Loss) sealed()            {}
func (Particle) sealed()        {}
func (HitAnimation) sealed()    {}
func (Lightning) sealed()       {}
func (Fill) sealed()            {}
func (Teleport) sealed()        {}
func (Command) sealed()         {}

// CommandLine renders world-mutating effects as host slash commands.
//
// Postcondition: Returns ("", false) for effects that are not commands.
func CommandLine(e Effect) (string, bool) {
	switch v := e.(type) {
	case Fill:
		return fmt.Sprintf("/fill %s %s %s %s %s %s %s",
			num(v.From.X), num(v.From.Y), num(v.From.Z),
			num(v.To.X), num(v.To.Y), num(v.To.Z), v.Block), true
	case Teleport:
		return fmt.Sprintf("/tp @a %s %s %s %s %s",
			num(v.Pos.X), num(v.Pos.Y), num(v.Pos.Z), num(v.Yaw), num(v.Pitch)), true
	case Lightning:
		return fmt.Sprintf("/summon minecraft:lightning_bolt %s %s %s",
			num(v.Pos.X), num(v.Pos.Y), num(v.Pos.Z)), true
	case Command:
		return v.Line, true
	default:
		return "", false
	}
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
