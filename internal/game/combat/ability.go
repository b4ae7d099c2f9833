package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/turnarena/internal/game/effect"
	"github.com/cory-johannsen/turnarena/internal/game/entity"
)

// Ability is the action a turn-holder invokes.
type Ability int

const (
	AbilityNone Ability = iota
	DamageSingleTarget
	DamageWholeTeam
	HealSingleTarget
)

const (
	// SingleTargetDamage is dealt by DamageSingleTarget.
	SingleTargetDamage = 10
	// WholeTeamDamage is dealt to each valid member by DamageWholeTeam.
	WholeTeamDamage = 3
	// HealAmount is restored by HealSingleTarget, capped at max health.
	HealAmount = 7
)

// HitParticle is spawned at the primary target of every resolved ability.
const HitParticle = "minecraft:example_smoke_puff"

// OffensiveAbilities are the abilities the AI chooses between.
var OffensiveAbilities = []Ability{DamageSingleTarget, DamageWholeTeam}

// Valid reports whether a is a resolvable ability.
func (a Ability) Valid() bool {
	return a == DamageSingleTarget || a == DamageWholeTeam || a == HealSingleTarget
}

// String returns the client identifier for a.
func (a Ability) String() string {
	switch a {
	case DamageSingleTarget:
		return "damageSingleTarget"
	case DamageWholeTeam:
		return "damageWholeTeam"
	case HealSingleTarget:
		return "healSingleTarget"
	default:
		return "none"
	}
}

// ParseAbility maps a client button identifier to an Ability.
// Unrecognized identifiers yield AbilityNone.
func ParseAbility(id string) Ability {
	switch id {
	case "damageSingleTargetAbilityClicked", "damageSingleTarget":
		return DamageSingleTarget
	case "damageWholeTeamAbilityClicked", "damageWholeTeam":
		return DamageWholeTeam
	case "healSingleTargetAbilityClicked", "healSingleTarget":
		return HealSingleTarget
	default:
		return AbilityNone
	}
}

// Resolver maps an ability and a primary target to health changes.
type Resolver struct {
	roster   *Roster
	entities Entities
	effects  *effect.Queue
	logger   *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: all arguments must be non-nil.
func NewResolver(roster *Roster, entities Entities, effects *effect.Queue, logger *zap.Logger) *Resolver {
	return &Resolver{roster: roster, entities: entities, effects: effects, logger: logger}
}

// Resolve applies a to target and emits hit effects at target.
//
// Postcondition: Returns false with no state change if a is not resolvable or
// target is not a valid target.
func (r *Resolver) Resolve(a Ability, target entity.Handle) bool {
	if !a.Valid() || !r.roster.IsValidTarget(target) {
		return false
	}

	switch a {
	case DamageSingleTarget:
		r.ApplyDamage(target, SingleTargetDamage)
	case DamageWholeTeam:
		for _, f := range r.roster.TeamOf(target).Fighters {
			if r.roster.IsValidTarget(f) {
				r.ApplyDamage(f, WholeTeamDamage)
			}
		}
	case HealSingleTarget:
		r.ApplyDamage(target, -HealAmount)
	}

	if pos, ok := r.entities.Position(target); ok {
		r.effects.Push(effect.Particle{Name: HitParticle, Pos: pos})
	}
	r.effects.Push(effect.HitAnimation{Target: target})

	r.logger.Debug("ability resolved",
		zap.Stringer("ability", a),
		zap.Stringer("target", target),
	)
	return true
}

// ApplyDamage subtracts amount from h's health and caps the result at max health.
// A negative amount heals. Health is not floored at zero.
func (r *Resolver) ApplyDamage(h entity.Handle, amount int) {
	current, max, ok := r.entities.Health(h)
	if !ok {
		return
	}
	current -= amount
	if current > max {
		current = max
	}
	r.entities.SetHealth(h, current)
}
