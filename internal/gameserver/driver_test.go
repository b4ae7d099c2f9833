package gameserver_test

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/turnarena/internal/game/arena"
	"github.com/cory-johannsen/turnarena/internal/game/combat"
	"github.com/cory-johannsen/turnarena/internal/game/dice"
	"github.com/cory-johannsen/turnarena/internal/game/entity"
	"github.com/cory-johannsen/turnarena/internal/game/session"
	"github.com/cory-johannsen/turnarena/internal/gameserver"
	"github.com/cory-johannsen/turnarena/internal/protocol"
	"github.com/cory-johannsen/turnarena/internal/server"
)

type recordingMetrics struct {
	ticks    atomic.Int64
	rejected map[string]int
}

func (m *recordingMetrics) ObserveTick(time.Duration) { m.ticks.Add(1) }
func (m *recordingMetrics) MessageRejected(reason string) {
	if m.rejected == nil {
		m.rejected = map[string]int{}
	}
	m.rejected[reason]++
}

func smallLayout() *arena.Roster {
	return &arena.Roster{Fighters: []arena.Fighter{
		{Identifier: "minecraft:vindicator", Side: combat.SidePlayer, Position: entity.Vec3{X: 0, Y: 5, Z: 0.5}, Image: "Vindicator_Head.png", MaxHealth: 20},
		{Identifier: "minecraft:blaze", Side: combat.SideAI, Position: entity.Vec3{X: 4, Y: 5, Z: 10.5}, Image: "Blaze_Face.png", MaxHealth: 20},
	}}
}

func newDriver(t *testing.T, inbox int, m gameserver.DriverMetrics) (*gameserver.Driver, *session.GameSession) {
	t.Helper()
	sess := session.New(session.Config{AIDelay: 15}, session.Deps{
		Layout: smallLayout(),
		Source: dice.NewSeededSource(7),
		Logger: zap.NewNop(),
	})
	return gameserver.NewDriver(10*time.Millisecond, sess, inbox, m, zap.NewNop()), sess
}

// frames drains every frame currently buffered for c.
func frames(t *testing.T, c *gameserver.Client) []protocol.Envelope {
	t.Helper()
	var out []protocol.Envelope
	for {
		select {
		case data, ok := <-c.Frames():
			if !ok {
				return out
			}
			var env protocol.Envelope
			require.NoError(t, json.Unmarshal(data, &env))
			out = append(out, env)
		default:
			return out
		}
	}
}

func types(envs []protocol.Envelope) map[string]int {
	out := map[string]int{}
	for _, e := range envs {
		out[e.Type]++
	}
	return out
}

func TestNewDriver_PanicsOnZeroInterval(t *testing.T) {
	sess := session.New(session.Config{}, session.Deps{Logger: zap.NewNop()})
	assert.Panics(t, func() { gameserver.NewDriver(0, sess, 1, nil, zap.NewNop()) })
}

func TestDriver_TickAppliesInboxThenUpdates(t *testing.T) {
	m := &recordingMetrics{}
	d, sess := newDriver(t, 8, m)
	c := gameserver.NewClient("c1", 256)
	d.Attach(c)
	assert.Equal(t, map[string]int{"snapshot": 1}, types(frames(t, c)))

	require.True(t, d.Submit(session.WorldEntered{}))
	require.True(t, d.Submit(session.StartOrRestart{}))
	d.Tick()

	assert.Equal(t, session.PhaseRunning, sess.Phase())
	assert.Equal(t, "running", d.Snapshot().Phase)
	assert.Equal(t, int64(1), m.ticks.Load())
	assert.Equal(t, 3, sess.Registry().Count(), "player plus two fighters")

	got := types(frames(t, c))
	assert.Equal(t, 1, got["snapshot"])
	assert.Positive(t, got["command"])
	assert.Equal(t, 4, got["update_turn_order"])
}

func TestDriver_ReusesPlayerEntity(t *testing.T) {
	d, sess := newDriver(t, 8, nil)
	d.Submit(session.WorldEntered{})
	d.Tick()
	d.Submit(session.WorldEntered{})
	d.Tick()
	d.Tick()
	assert.Equal(t, 1, sess.Registry().Count())
}

func TestDriver_InboxFullRejects(t *testing.T) {
	m := &recordingMetrics{}
	d, _ := newDriver(t, 1, m)
	assert.True(t, d.Submit(session.ConfirmClick{}))
	assert.False(t, d.Submit(session.ConfirmClick{}))
	assert.Equal(t, 1, m.rejected["inbox_full"])
}

func TestDriver_ReapsDeathsForNextTick(t *testing.T) {
	d, sess := newDriver(t, 8, nil)
	d.Submit(session.WorldEntered{})
	d.Submit(session.StartOrRestart{})
	d.Tick()

	c := gameserver.NewClient("c1", 256)
	d.Attach(c)
	frames(t, c)

	ai := sess.Roster().Team(combat.SideAI).Fighters[0]
	sess.Registry().SetHealth(ai, 0)
	d.Tick()
	assert.True(t, sess.Registry().Valid(ai))
	assert.Equal(t, 1, d.Snapshot().DeadQueued)

	var lines []string
	for _, env := range frames(t, c) {
		if env.Type == "command" {
			var p protocol.CommandPayload
			require.NoError(t, json.Unmarshal(env.Payload, &p))
			lines = append(lines, p.Command)
		}
	}
	assert.Contains(t, lines, "/summon minecraft:lightning_bolt 4 5 10.5")

	d.Tick()
	assert.False(t, sess.Registry().Valid(ai))
}

func TestDriver_DetachStopsDelivery(t *testing.T) {
	d, _ := newDriver(t, 8, nil)
	c := gameserver.NewClient("c1", 256)
	d.Attach(c)
	frames(t, c)
	d.Detach(c)

	d.Submit(session.WorldEntered{})
	d.Tick()
	assert.Empty(t, frames(t, c))
}

func TestDriver_StartStop(t *testing.T) {
	d, _ := newDriver(t, 8, nil)
	errCh := make(chan error, 1)
	go func() { errCh <- d.Start() }()

	d.Submit(session.WorldEntered{})
	d.Submit(session.StartOrRestart{})
	require.Eventually(t, func() bool { return d.Snapshot().Phase == "running" }, 2*time.Second, 5*time.Millisecond)

	d.Stop()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not stop")
	}
}

func TestClient_PushAfterCloseFails(t *testing.T) {
	c := gameserver.NewClient("c1", 1)
	require.NoError(t, c.Push([]byte("a")))
	assert.ErrorIs(t, c.Push([]byte("b")), gameserver.ErrClientFull)
	c.Close()
	c.Close()
	assert.ErrorIs(t, c.Push([]byte("c")), gameserver.ErrClientClosed)
}

func TestDriver_StopBeforeStartNeverTicks(t *testing.T) {
	m := &recordingMetrics{}
	d, _ := newDriver(t, 8, m)
	d.Stop()

	errCh := make(chan error, 1)
	go func() { errCh <- d.Start() }()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("driver started after Stop")
	}
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, m.ticks.Load())
}

func TestDriver_StartTwiceFails(t *testing.T) {
	d, _ := newDriver(t, 8, nil)
	d.Stop()
	require.NoError(t, d.Start())
	assert.ErrorIs(t, d.Start(), gameserver.ErrDriverStarted)
}

func TestDriver_LifecycleCancelledBeforeStartLeavesNoTicker(t *testing.T) {
	m := &recordingMetrics{}
	d, _ := newDriver(t, 8, m)

	lc := server.NewLifecycle(zap.NewNop())
	lc.Add("session", &server.FuncService{StartFn: d.Start, StopFn: d.Stop})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, lc.Run(ctx))

	before := m.ticks.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, m.ticks.Load())
}
