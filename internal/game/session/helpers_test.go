package session_test

import (
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/turnarena/internal/game/arena"
	"github.com/cory-johannsen/turnarena/internal/game/combat"
	"github.com/cory-johannsen/turnarena/internal/game/dice"
	"github.com/cory-johannsen/turnarena/internal/game/effect"
	"github.com/cory-johannsen/turnarena/internal/game/entity"
	"github.com/cory-johannsen/turnarena/internal/game/session"
)

// testingT is satisfied by both *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

// queuedSource returns queued values in order, then n-1 forever. n-1 leaves
// every Fisher–Yates step in place and makes Pick return the last element.
type queuedSource struct{ vals []int }

func (q *queuedSource) Intn(n int) int {
	if len(q.vals) == 0 {
		return n - 1
	}
	v := q.vals[0]
	q.vals = q.vals[1:]
	if v >= n {
		return n - 1
	}
	return v
}

func fighter(side combat.Side, x float64, hp int) arena.Fighter {
	id := "minecraft:vindicator"
	z := 0.5
	if side == combat.SideAI {
		id = "minecraft:blaze"
		z = 10.5
	}
	return arena.Fighter{
		Identifier: id,
		Side:       side,
		Position:   entity.Vec3{X: x, Y: 5, Z: z},
		Image:      id + ".png",
		MaxHealth:  hp,
	}
}

type fakeMetrics struct {
	resolved  map[combat.Side]int
	concluded []combat.Outcome
}

func (f *fakeMetrics) AbilityResolved(_ combat.Ability, side combat.Side) {
	if f.resolved == nil {
		f.resolved = map[combat.Side]int{}
	}
	f.resolved[side]++
}

func (f *fakeMetrics) GameConcluded(o combat.Outcome) { f.concluded = append(f.concluded, o) }

func newSession(t testingT, aiDelay int, src dice.Source, fighters ...arena.Fighter) (*session.GameSession, *fakeMetrics) {
	t.Helper()
	m := &fakeMetrics{}
	s := session.New(session.Config{AIDelay: aiDelay}, session.Deps{
		Layout:  &arena.Roster{Fighters: fighters},
		Source:  src,
		Metrics: m,
		Logger:  zap.NewNop(),
	})
	return s, m
}

// start enters the world with a player entity and starts a game.
func start(t testingT, s *session.GameSession) entity.Handle {
	t.Helper()
	player := s.Registry().Create(entity.Spec{Identifier: entity.PlayerIdentifier})
	s.Handle(session.WorldEntered{Player: player})
	s.Handle(session.StartOrRestart{})
	s.Update()
	require.Equal(t, session.PhaseRunning, s.Phase())
	return player
}

func team(s *session.GameSession, side combat.Side) []entity.Handle {
	return s.Roster().Team(side).Fighters
}

func health(t testingT, s *session.GameSession, h entity.Handle) int {
	t.Helper()
	cur, _, ok := s.Registry().Health(h)
	require.True(t, ok)
	return cur
}

func countKind(effs []effect.Effect, kind string) int {
	n := 0
	for _, e := range effs {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}
