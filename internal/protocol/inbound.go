package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cory-johannsen/turnarena/internal/game/combat"
	"github.com/cory-johannsen/turnarena/internal/game/entity"
	"github.com/cory-johannsen/turnarena/internal/game/session"
)

// Inbound message types.
const (
	TypeClientEnteredWorld  = "client_entered_world"
	TypeUpdateHoveredTarget = "update_hovered_target"
	TypeClick               = "click"
	TypeAbilityClicked      = "ability_clicked"
	TypeStart               = "start"
	TypeLeave               = "leave"
)

// ErrUnknownType is returned for envelopes whose type is not an inbound type.
var ErrUnknownType = errors.New("protocol: unknown message type")

// HoveredTargetPayload is the payload of update_hovered_target. A null or
// missing entity means the pointer is over no fighter.
type HoveredTargetPayload struct {
	Entity *uint64 `json:"entity"`
}

// AbilityClickedPayload is the payload of ability_clicked.
type AbilityClickedPayload struct {
	AbilityClicked string `json:"ability_clicked"`
}

// Decode parses one raw client frame into a session message.
//
// client_entered_world decodes to a WorldEntered with a zero Player; the
// caller supplies the player entity.
//
// Postcondition: Returns a non-nil Message or a non-nil error.
func Decode(data []byte) (session.Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("protocol: malformed envelope: %w", err)
	}
	return DecodeEnvelope(env)
}

// DecodeEnvelope converts a parsed envelope into a session message.
func DecodeEnvelope(env Envelope) (session.Message, error) {
	switch env.Type {
	case TypeClientEnteredWorld:
		return session.WorldEntered{}, nil
	case TypeUpdateHoveredTarget:
		var p HoveredTargetPayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		if p.Entity == nil {
			return session.PointerHover{}, nil
		}
		return session.PointerHover{Target: entity.HandleFromID(*p.Entity)}, nil
	case TypeClick:
		return session.ConfirmClick{}, nil
	case TypeAbilityClicked:
		var p AbilityClickedPayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		return session.AbilitySelected{Ability: combat.ParseAbility(p.AbilityClicked)}, nil
	case TypeStart:
		return session.StartOrRestart{}, nil
	case TypeLeave:
		return session.Leave{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

func unmarshalPayload(env Envelope, v any) error {
	if len(env.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("protocol: malformed %s payload: %w", env.Type, err)
	}
	return nil
}
