package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/turnarena/internal/game/combat"
)

func TestEvaluate(t *testing.T) {
	f := newFixture(t)
	p := f.spawn(combat.SidePlayer, 10, "")
	a := f.spawn(combat.SideAI, 10, "")

	assert.Equal(t, combat.OutcomeNone, combat.Evaluate(f.roster).Outcome())

	f.reg.SetHealth(a, 0)
	s := combat.Evaluate(f.roster)
	assert.True(t, s.AIWiped)
	assert.False(t, s.PlayerWiped)
	assert.Equal(t, combat.OutcomeVictory, s.Outcome())

	f.reg.SetHealth(a, 10)
	f.reg.SetHealth(p, -2)
	assert.Equal(t, combat.OutcomeLoss, combat.Evaluate(f.roster).Outcome())
}

func TestEvaluate_DoubleWipeVictoryTakesPrecedence(t *testing.T) {
	f := newFixture(t)
	p := f.spawn(combat.SidePlayer, 10, "")
	a := f.spawn(combat.SideAI, 10, "")
	f.reg.SetHealth(p, 0)
	f.reg.Destroy(a)

	s := combat.Evaluate(f.roster)
	assert.True(t, s.AIWiped)
	assert.True(t, s.PlayerWiped)
	assert.Equal(t, combat.OutcomeVictory, s.Outcome())
	assert.Equal(t, "victory", s.Outcome().String())
}
