// Package ai chooses actions for fighters on the AI side.
package ai

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/turnarena/internal/game/combat"
	"github.com/cory-johannsen/turnarena/internal/game/dice"
	"github.com/cory-johannsen/turnarena/internal/game/entity"
)

// ChooseActionHook is the optional Lua function consulted before the default
// random policy. It is called as
//
//	choose_action(targets, abilities)
//
// where targets is a list of {id, health, max} tables and abilities is a list
// of ability names. It must return a table {target = i, ability = j} of
// 1-based indices into those lists, or nil to defer to the default policy.
const ChooseActionHook = "choose_action"

// ScriptCaller is the interface required by the Policy to consult a Lua hook.
type ScriptCaller interface {
	NewTable() *lua.LTable
	// CallHook returns (LNil, nil) if the function is not defined.
	CallHook(hook string, args ...lua.LValue) (lua.LValue, error)
}

// Choice is an ability and its primary target.
type Choice struct {
	Target  entity.Handle
	Ability combat.Ability
}

// Policy picks a uniformly random valid opponent and a uniformly random
// offensive ability, unless a loaded script overrides the choice.
type Policy struct {
	src      dice.Source
	entities combat.Entities
	script   ScriptCaller
	logger   *zap.Logger
}

// NewPolicy creates a Policy.
//
// Precondition: src, entities and logger must be non-nil; script may be nil.
func NewPolicy(src dice.Source, entities combat.Entities, script ScriptCaller, logger *zap.Logger) *Policy {
	return &Policy{src: src, entities: entities, script: script, logger: logger}
}

// ChooseAction selects a target from the valid members of opponents and an
// offensive ability.
//
// Postcondition: ok is false only when opponents has no valid member. When ok
// is true, Target is a valid member of opponents and Ability is offensive.
func (p *Policy) ChooseAction(r *combat.Roster, opponents combat.Team) (Choice, bool) {
	candidates := r.ValidMembers(opponents)
	if len(candidates) == 0 {
		return Choice{}, false
	}
	if c, ok := p.scripted(candidates); ok {
		return c, true
	}
	target, _ := dice.Pick(candidates, p.src)
	ability, _ := dice.Pick(combat.OffensiveAbilities, p.src)
	return Choice{Target: target, Ability: ability}, true
}

// scripted consults the Lua hook. Any error or out-of-range answer defers to
// the default policy.
func (p *Policy) scripted(candidates []entity.Handle) (Choice, bool) {
	if p.script == nil {
		return Choice{}, false
	}

	targets := p.script.NewTable()
	for _, h := range candidates {
		cur, maxHP, _ := p.entities.Health(h)
		t := p.script.NewTable()
		t.RawSetString("id", lua.LNumber(h.ID()))
		t.RawSetString("health", lua.LNumber(cur))
		t.RawSetString("max", lua.LNumber(maxHP))
		targets.Append(t)
	}
	abilities := p.script.NewTable()
	for _, a := range combat.OffensiveAbilities {
		abilities.Append(lua.LString(a.String()))
	}

	ret, err := p.script.CallHook(ChooseActionHook, targets, abilities)
	if err != nil {
		return Choice{}, false
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return Choice{}, false
	}
	ti, ok1 := index(tbl.RawGetString("target"), len(candidates))
	abi, ok2 := index(tbl.RawGetString("ability"), len(combat.OffensiveAbilities))
	if !ok1 || !ok2 {
		p.logger.Warn("ai: script returned out-of-range choice",
			zap.String("target", tbl.RawGetString("target").String()),
			zap.String("ability", tbl.RawGetString("ability").String()),
		)
		return Choice{}, false
	}
	return Choice{Target: candidates[ti], Ability: combat.OffensiveAbilities[abi]}, true
}

// index converts a 1-based Lua number into a 0-based index below n.
func index(v lua.LValue, n int) (int, bool) {
	num, ok := v.(lua.LNumber)
	if !ok {
		return 0, false
	}
	i := int(num) - 1
	if float64(i+1) != float64(num) || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}
