// Package gameserver hosts a GameSession: a single goroutine ticks it, and a
// websocket bridge connects the one controlling client.
package gameserver

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/turnarena/internal/game/entity"
	"github.com/cory-johannsen/turnarena/internal/game/session"
	"github.com/cory-johannsen/turnarena/internal/protocol"
)

// DriverMetrics receives tick and inbox observations. Implementations must not block.
type DriverMetrics interface {
	ObserveTick(d time.Duration)
	MessageRejected(reason string)
}

type nopDriverMetrics struct{}

func (nopDriverMetrics) ObserveTick(time.Duration) {}
func (nopDriverMetrics) MessageRejected(string)    {}

// Driver owns a GameSession and advances it once per interval.
//
// Invariant: the session is only touched from Tick, and Tick is only called
// from one goroutine at a time.
type Driver struct {
	interval time.Duration
	sess     *session.GameSession
	inbox    chan session.Message
	metrics  DriverMetrics
	logger   *zap.Logger

	player    entity.Handle
	lastPhase session.Phase

	mu      sync.Mutex
	client  *Client
	started bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	snapshot atomic.Pointer[session.Snapshot]
}

// NewDriver creates a Driver around sess.
//
// Precondition: interval must be > 0; sess and logger must be non-nil.
func NewDriver(interval time.Duration, sess *session.GameSession, inboxSize int, metrics DriverMetrics, logger *zap.Logger) *Driver {
	if interval <= 0 {
		panic("gameserver.NewDriver: interval must be > 0")
	}
	if inboxSize <= 0 {
		inboxSize = 64
	}
	if metrics == nil {
		metrics = nopDriverMetrics{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Driver{
		interval:  interval,
		sess:      sess,
		inbox:     make(chan session.Message, inboxSize),
		metrics:   metrics,
		logger:    logger,
		lastPhase: sess.Phase(),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	snap := sess.Snapshot()
	d.snapshot.Store(&snap)
	return d
}

// Submit queues msg for the next tick without blocking.
//
// Postcondition: Returns false, and counts a rejection, if the inbox is full.
func (d *Driver) Submit(msg session.Message) bool {
	select {
	case d.inbox <- msg:
		return true
	default:
		d.metrics.MessageRejected("inbox_full")
		return false
	}
}

// Attach routes outbound frames to c, replacing any previous client, and
// sends it the current snapshot.
func (d *Driver) Attach(c *Client) {
	d.mu.Lock()
	d.client = c
	d.mu.Unlock()
	d.sendSnapshot(*d.snapshot.Load())
}

// Detach stops routing frames to c. Detaching a client that is not attached is a no-op.
func (d *Driver) Detach(c *Client) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.client == c {
		d.client = nil
	}
}

// Snapshot returns the state captured at the end of the last tick. Safe for
// concurrent use.
func (d *Driver) Snapshot() session.Snapshot {
	return *d.snapshot.Load()
}

// Tick runs one session step: apply queued messages, update, report deaths
// for removal on the next tick, then flush effects to the client.
func (d *Driver) Tick() {
	start := time.Now()

	for drained := false; !drained; {
		select {
		case msg := <-d.inbox:
			d.sess.Handle(d.bind(msg))
		default:
			drained = true
		}
	}

	d.sess.Update()
	for _, h := range d.sess.Registry().Reap() {
		d.sess.Handle(session.EntityDeath{Entity: h})
	}

	for _, e := range d.sess.DrainEffects() {
		env, err := protocol.Encode(e)
		if err != nil {
			d.logger.Error("encoding effect", zap.String("kind", e.Kind()), zap.Error(err))
			continue
		}
		d.send(env)
	}

	snap := d.sess.Snapshot()
	d.snapshot.Store(&snap)
	if phase := d.sess.Phase(); phase != d.lastPhase {
		d.lastPhase = phase
		d.sendSnapshot(snap)
	}

	d.metrics.ObserveTick(time.Since(start))
}

// bind fills in the player entity for WorldEntered, spawning it on first entry.
func (d *Driver) bind(msg session.Message) session.Message {
	m, ok := msg.(session.WorldEntered)
	if !ok || !m.Player.IsZero() {
		return msg
	}
	if !d.sess.Registry().Valid(d.player) {
		d.player = d.sess.Registry().Create(entity.Spec{Identifier: entity.PlayerIdentifier})
	}
	m.Player = d.player
	return m
}

// send pushes env to the attached client. The push happens under mu, so once
// Detach returns no frame is in flight to the detached client.
func (d *Driver) send(env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		d.logger.Error("marshal error", zap.String("type", env.Type), zap.Error(err))
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	c := d.client
	if c == nil {
		return
	}
	if err := c.Push(data); err != nil {
		d.logger.Warn("dropping frame",
			zap.String("client", c.ID()),
			zap.String("type", env.Type),
			zap.Error(err),
		)
	}
}

func (d *Driver) sendSnapshot(s session.Snapshot) {
	env, err := protocol.EncodeSnapshot(s)
	if err != nil {
		d.logger.Error("encoding snapshot", zap.Error(err))
		return
	}
	d.send(env)
}

// Run ticks the session every interval until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Tick()
		}
	}
}

// ErrDriverStarted is returned by a second call to Start.
var ErrDriverStarted = errors.New("gameserver: driver already started")

// Start runs the tick loop until Stop is called. A Driver runs at most once;
// Start after Stop returns immediately without ticking.
func (d *Driver) Start() error {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return ErrDriverStarted
	}
	d.started = true
	d.mu.Unlock()
	defer close(d.done)

	if d.ctx.Err() != nil {
		d.logger.Info("session driver stopped before start", zap.String("session_id", d.sess.ID()))
		return nil
	}
	d.logger.Info("session driver started",
		zap.String("session_id", d.sess.ID()),
		zap.Duration("interval", d.interval),
	)
	d.Run(d.ctx)
	return nil
}

// Stop ends the tick loop and waits for the in-flight tick to finish. Stop
// before Start prevents the loop from ever running.
func (d *Driver) Stop() {
	d.cancel()
	d.mu.Lock()
	started := d.started
	d.mu.Unlock()
	if started {
		<-d.done
	}
}
