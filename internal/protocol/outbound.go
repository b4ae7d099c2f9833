package protocol

import (
	"fmt"

	"github.com/cory-johannsen/turnarena/internal/game/effect"
	"github.com/cory-johannsen/turnarena/internal/game/session"
)

// Outbound message types not named by an effect kind.
const (
	TypeSnapshot = "snapshot"
)

// TurnOrderPayload is the payload of update_turn_order.
type TurnOrderPayload struct {
	Order          int    `json:"order"`
	TurnOrderState string `json:"turn_order_state"`
	ImageName      string `json:"image_name"`
}

// HitAnimationPayload is the payload of execute_on_hit_animation.
type HitAnimationPayload struct {
	Fighter uint64 `json:"fighter"`
}

// ParticlePayload is the payload of spawn_particle.
type ParticlePayload struct {
	Effect   string     `json:"effect"`
	Position [3]float64 `json:"position"`
}

// CommandPayload is the payload of command.
type CommandPayload struct {
	Command string `json:"command"`
}

// Encode converts an effect into its wire envelope.
//
// Postcondition: Returns an envelope whose Type equals e.Kind(), or a non-nil error.
func Encode(e effect.Effect) (Envelope, error) {
	if line, ok := effect.CommandLine(e); ok {
		return NewEnvelope(e.Kind(), CommandPayload{Command: line})
	}
	switch v := e.(type) {
	case effect.TurnOrderUpdate:
		return NewEnvelope(v.Kind(), TurnOrderPayload{
			Order:          v.Order,
			TurnOrderState: v.Status.String(),
			ImageName:      v.Image,
		})
	case effect.Victory, effect.Loss:
		return NewEnvelope(e.Kind(), nil)
	case effect.HitAnimation:
		return NewEnvelope(v.Kind(), HitAnimationPayload{Fighter: v.Target.ID()})
	case effect.Particle:
		return NewEnvelope(v.Kind(), ParticlePayload{
			Effect:   v.Name,
			Position: [3]float64{v.Pos.X, v.Pos.Y, v.Pos.Z},
		})
	default:
		return Envelope{}, fmt.Errorf("protocol: no encoding for effect %T", e)
	}
}

// EncodeSnapshot wraps a session snapshot.
func EncodeSnapshot(s session.Snapshot) (Envelope, error) {
	return NewEnvelope(TypeSnapshot, s)
}
