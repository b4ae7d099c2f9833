package combat

// Outcome is the result of a concluded game.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeVictory
	OutcomeLoss
)

// String returns a lower-case outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeLoss:
		return "loss"
	default:
		return "none"
	}
}

// Standing reports which teams have been wiped out.
type Standing struct {
	AIWiped     bool
	PlayerWiped bool
}

// Evaluate checks both teams independently.
func Evaluate(r *Roster) Standing {
	return Standing{
		AIWiped:     r.Wiped(r.Team(SideAI)),
		PlayerWiped: r.Wiped(r.Team(SidePlayer)),
	}
}

// Outcome collapses a Standing to a single result. When both teams are wiped
// in the same resolution, Victory wins.
func (s Standing) Outcome() Outcome {
	switch {
	case s.AIWiped:
		return OutcomeVictory
	case s.PlayerWiped:
		return OutcomeLoss
	default:
		return OutcomeNone
	}
}
