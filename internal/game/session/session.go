// Package session implements the game phase controller: one GameSession owns
// the teams, the turn order and the dead-entity queue, and advances them one
// tick at a time.
//
// A GameSession is not safe for concurrent use. It is owned by a single tick
// loop that calls Handle for each inbound message and then Update once.
package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/cory-johannsen/turnarena/internal/game/ai"
	"github.com/cory-johannsen/turnarena/internal/game/arena"
	"github.com/cory-johannsen/turnarena/internal/game/combat"
	"github.com/cory-johannsen/turnarena/internal/game/dice"
	"github.com/cory-johannsen/turnarena/internal/game/effect"
	"github.com/cory-johannsen/turnarena/internal/game/entity"
)

// DefaultAIDelay is the number of ticks an AI fighter waits before acting.
const DefaultAIDelay = 15

// DeathParticle is spawned where a fighter dies.
const DeathParticle = combat.HitParticle

// Config holds the tunables of a GameSession.
type Config struct {
	// AIDelay is the number of ticks of an AI turn; the AI acts on the last one.
	// Values <= 0 use DefaultAIDelay.
	AIDelay int
}

// Metrics receives gameplay events. Implementations must not block.
type Metrics interface {
	AbilityResolved(a combat.Ability, side combat.Side)
	GameConcluded(o combat.Outcome)
}

type nopMetrics struct{}

func (nopMetrics) AbilityResolved(combat.Ability, combat.Side) {}
func (nopMetrics) GameConcluded(combat.Outcome)                {}

// Deps are the collaborators of a GameSession.
type Deps struct {
	// Layout is the roster placed at every setup. Nil uses arena.DefaultRoster.
	Layout *arena.Roster
	// Source drives turn order shuffles and AI choices. Nil uses a crypto source.
	Source dice.Source
	// Script optionally overrides AI choices.
	Script ai.ScriptCaller
	// Metrics may be nil.
	Metrics Metrics
	Logger  *zap.Logger
}

// GameSession is the explicit state of one single-player arena session.
type GameSession struct {
	id     string
	gameID string
	cfg    Config
	logger *zap.Logger

	layout   *arena.Roster
	src      dice.Source
	metrics  Metrics
	reg      *entity.Registry
	effects  *effect.Queue
	roster   *combat.Roster
	seq      *combat.Sequencer
	resolver *combat.Resolver
	policy   *ai.Policy
	phase    *fsm.FSM
	dead     DeadQueue

	player         entity.Handle
	ability        combat.Ability
	target         entity.Handle
	lastHovered    entity.Handle
	aiCounter      int
	outcome        combat.Outcome
	startRequested bool
}

// New creates a GameSession in the idle phase.
//
// Precondition: deps.Logger must be non-nil.
// Postcondition: Phase() == PhaseIdle.
func New(cfg Config, deps Deps) *GameSession {
	if cfg.AIDelay <= 0 {
		cfg.AIDelay = DefaultAIDelay
	}
	if deps.Layout == nil {
		deps.Layout = arena.DefaultRoster()
	}
	if deps.Source == nil {
		deps.Source = dice.NewCryptoSource()
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	id := uuid.NewString()
	logger := deps.Logger.With(zap.String("session_id", id))

	reg := entity.NewRegistry(logger)
	q := effect.NewQueue()
	roster := combat.NewRoster(reg)
	return &GameSession{
		id:       id,
		cfg:      cfg,
		logger:   logger,
		layout:   deps.Layout,
		src:      deps.Source,
		metrics:  deps.Metrics,
		reg:      reg,
		effects:  q,
		roster:   roster,
		seq:      combat.NewSequencer(roster, reg, q),
		resolver: combat.NewResolver(roster, reg, q, logger),
		policy:   ai.NewPolicy(deps.Source, reg, deps.Script, logger),
		phase:    newPhaseMachine(logger),
	}
}

// ID returns the session identifier.
func (s *GameSession) ID() string { return s.id }

// Phase returns the current phase.
func (s *GameSession) Phase() Phase { return Phase(s.phase.Current()) }

// Outcome returns the result of the last concluded game, or OutcomeNone.
func (s *GameSession) Outcome() combat.Outcome { return s.outcome }

// Registry exposes the entity store the session plays on.
func (s *GameSession) Registry() *entity.Registry { return s.reg }

// Roster exposes both teams.
func (s *GameSession) Roster() *combat.Roster { return s.roster }

// Sequencer exposes the turn order.
func (s *GameSession) Sequencer() *combat.Sequencer { return s.seq }

// DrainEffects returns every effect produced since the last drain, in order.
func (s *GameSession) DrainEffects() []effect.Effect { return s.effects.Drain() }

// Handle applies one inbound message. Invalid inputs are ignored.
func (s *GameSession) Handle(msg Message) {
	switch m := msg.(type) {
	case WorldEntered:
		s.player = m.Player
		s.fire(evEnterWorld)
	case PointerHover:
		s.onHover(m.Target)
	case ConfirmClick:
		if s.Phase() == PhaseRunning && s.seq.IsPlayerTurn() && s.ability.Valid() {
			s.target = s.lastHovered
		}
	case AbilitySelected:
		s.ability = m.Ability
	case StartOrRestart:
		s.startRequested = true
	case Leave:
		s.startRequested = false
		s.clearWorld()
		s.fire(evLeave)
	case EntityDeath:
		s.onDeath(m.Entity)
	}
}

// Update runs one tick: a pending world reset, then a pending start, then one
// step of play if the game is running.
func (s *GameSession) Update() {
	if s.Phase() == PhaseAwaitingWorldReset {
		s.clearWorld()
		s.fire(evWorldReset)
	}
	if s.startRequested {
		s.startRequested = false
		if s.phase.Can(evSetup) {
			s.setup()
		}
	}
	if s.Phase() == PhaseRunning {
		s.step()
	}
}

// clearWorld removes every entity except the player and rebuilds the arena.
func (s *GameSession) clearWorld() {
	n := s.reg.DestroyAllExcept(s.player)
	s.roster.Reset()
	s.seq.Reset()
	s.dead.Drain()
	s.effects.Push(arena.Build()...)
	s.logger.Info("world cleared", zap.Int("removed", n))
}

// setup places both teams, shuffles the turn order and starts play.
func (s *GameSession) setup() {
	s.fire(evSetup)
	s.destroyDead()

	s.effects.Push(arena.Prepare()...)
	s.reg.DestroyAllExcept(s.player)
	s.roster.Reset()
	for _, f := range s.layout.Fighters {
		s.roster.Add(f.Side, s.reg.Create(f.Spec()))
	}

	s.gameID = uuid.NewString()
	s.ability = combat.AbilityNone
	s.target = entity.Handle{}
	s.lastHovered = entity.Handle{}
	s.aiCounter = 0
	s.outcome = combat.OutcomeNone

	s.seq.Initialize(s.src)
	s.updateTurnIndicator()
	s.fire(evRun)

	s.logger.Info("game started",
		zap.String("game_id", s.gameID),
		zap.Int("player_fighters", s.roster.Team(combat.SidePlayer).Len()),
		zap.Int("ai_fighters", s.roster.Team(combat.SideAI).Len()),
	)
}

// step runs one tick of a running game.
func (s *GameSession) step() {
	s.destroyDead()

	if s.seq.IsPlayerTurn() {
		if s.ability.Valid() && s.roster.IsValidTarget(s.target) {
			s.use(s.ability, s.target, combat.SidePlayer)
		}
		return
	}

	s.aiCounter++
	if s.aiCounter < s.cfg.AIDelay {
		return
	}
	s.aiCounter = 0
	choice, ok := s.policy.ChooseAction(s.roster, s.roster.Team(combat.SidePlayer))
	if !ok {
		s.logger.Warn("ai turn with no valid opponents", zap.String("game_id", s.gameID))
		return
	}
	s.use(choice.Ability, choice.Target, combat.SideAI)
}

// use resolves an ability, ends the turn and evaluates the end of the game.
// The turn advances only while the game is still running.
func (s *GameSession) use(a combat.Ability, target entity.Handle, side combat.Side) {
	if !s.resolver.Resolve(a, target) {
		return
	}
	s.metrics.AbilityResolved(a, side)
	s.ability = combat.AbilityNone
	s.target = entity.Handle{}

	if o := combat.Evaluate(s.roster).Outcome(); o != combat.OutcomeNone {
		s.conclude(o)
		return
	}
	s.seq.Advance()
	s.updateTurnIndicator()
}

func (s *GameSession) conclude(o combat.Outcome) {
	s.outcome = o
	s.seq.Publish()
	switch o {
	case combat.OutcomeVictory:
		s.effects.Push(effect.Victory{})
	case combat.OutcomeLoss:
		s.effects.Push(effect.Loss{})
	}
	s.fire(evConclude)
	s.metrics.GameConcluded(o)
	s.logger.Info("game concluded",
		zap.String("game_id", s.gameID),
		zap.Stringer("outcome", o),
	)
}

func (s *GameSession) destroyDead() {
	for _, h := range s.dead.Drain() {
		s.reg.Destroy(h)
	}
}

func (s *GameSession) onDeath(h entity.Handle) {
	if pos, ok := s.reg.Position(h); ok {
		s.effects.Push(
			effect.Lightning{Pos: pos},
			effect.Particle{Name: DeathParticle, Pos: pos},
		)
	}
	s.dead.Push(h)
}

func (s *GameSession) onHover(h entity.Handle) {
	old := s.lastHovered
	s.lastHovered = h
	if s.Phase() != PhaseRunning {
		return
	}

	if pos, ok := s.reg.Position(old); ok {
		block := arena.BlockNeutral
		if cur, ok := s.seq.Current(); ok && cur == old {
			block = arena.BlockActive
		}
		s.effects.Push(arena.Indicator(pos, block))
	}
	if pos, ok := s.reg.Position(h); ok && s.ability.Valid() && s.seq.IsPlayerTurn() {
		s.effects.Push(arena.Indicator(pos, arena.BlockTarget))
	}
}

// updateTurnIndicator resets the platform and marks the current fighter.
func (s *GameSession) updateTurnIndicator() {
	cur, ok := s.seq.Current()
	if !ok {
		return
	}
	pos, ok := s.reg.Position(cur)
	if !ok {
		return
	}
	s.effects.Push(arena.Platform, arena.Indicator(pos, arena.BlockActive))
}

func (s *GameSession) fire(ev string) {
	if !s.phase.Can(ev) {
		return
	}
	if err := s.phase.Event(context.Background(), ev); err != nil {
		s.logger.Warn("phase transition failed", zap.String("event", ev), zap.Error(err))
	}
}
