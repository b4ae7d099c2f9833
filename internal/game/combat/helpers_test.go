package combat_test

import (
	"testing"

	"go.uber.org/zap"

	"github.com/cory-johannsen/turnarena/internal/game/combat"
	"github.com/cory-johannsen/turnarena/internal/game/effect"
	"github.com/cory-johannsen/turnarena/internal/game/entity"
)

// fixedSource always returns v clamped to n-1.
type fixedSource struct{ v int }

func (f fixedSource) Intn(n int) int {
	if f.v >= n {
		return n - 1
	}
	return f.v
}

// identitySource leaves every Fisher–Yates step in place.
type identitySource struct{}

func (identitySource) Intn(n int) int { return n - 1 }

type fixture struct {
	reg      *entity.Registry
	roster   *combat.Roster
	effects  *effect.Queue
	seq      *combat.Sequencer
	resolver *combat.Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := entity.NewRegistry(zap.NewNop())
	roster := combat.NewRoster(reg)
	q := effect.NewQueue()
	return &fixture{
		reg:      reg,
		roster:   roster,
		effects:  q,
		seq:      combat.NewSequencer(roster, reg, q),
		resolver: combat.NewResolver(roster, reg, q, zap.NewNop()),
	}
}

func (f *fixture) spawn(side combat.Side, maxHP int, image string) entity.Handle {
	h := f.reg.Create(entity.Spec{
		Identifier: "minecraft:zombie",
		Pos:        entity.Vec3{X: float64(f.reg.Count()), Y: 5, Z: 0},
		MaxHealth:  maxHP,
		Image:      image,
	})
	f.roster.Add(side, h)
	return h
}
