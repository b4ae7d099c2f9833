package session

import (
	"context"

	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

// Phase is a state of the game phase controller.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseAwaitingWorldReset Phase = "awaiting_world_reset"
	PhaseSettingUp          Phase = "setting_up"
	PhaseRunning            Phase = "running"
	PhaseConcluded          Phase = "concluded"
)

// Phase transition events.
const (
	evEnterWorld = "enter_world"
	evWorldReset = "world_reset"
	evSetup      = "setup"
	evRun        = "run"
	evConclude   = "conclude"
	evLeave      = "leave"
)

func newPhaseMachine(logger *zap.Logger) *fsm.FSM {
	return fsm.NewFSM(
		string(PhaseIdle),
		fsm.Events{
			{Name: evEnterWorld, Src: []string{string(PhaseIdle), string(PhaseRunning), string(PhaseConcluded)}, Dst: string(PhaseAwaitingWorldReset)},
			{Name: evWorldReset, Src: []string{string(PhaseAwaitingWorldReset)}, Dst: string(PhaseIdle)},
			{Name: evSetup, Src: []string{string(PhaseIdle), string(PhaseConcluded), string(PhaseRunning)}, Dst: string(PhaseSettingUp)},
			{Name: evRun, Src: []string{string(PhaseSettingUp)}, Dst: string(PhaseRunning)},
			{Name: evConclude, Src: []string{string(PhaseRunning)}, Dst: string(PhaseConcluded)},
			{Name: evLeave, Src: []string{string(PhaseAwaitingWorldReset), string(PhaseSettingUp), string(PhaseRunning), string(PhaseConcluded)}, Dst: string(PhaseIdle)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Debug("phase transition",
					zap.String("event", e.Event),
					zap.String("from", e.Src),
					zap.String("to", e.Dst),
				)
			},
		},
	)
}
