package session

// FighterView is the read-only state of one turn order slot.
type FighterView struct {
	ID         uint64 `json:"id"`
	Identifier string `json:"identifier"`
	Side       string `json:"side"`
	Order      int    `json:"order"`
	Health     int    `json:"health"`
	MaxHealth  int    `json:"max_health"`
	Status     string `json:"status"`
	Image      string `json:"image"`
}

// Snapshot is a point-in-time copy of the session for debugging and status
// endpoints. It shares no memory with the session.
type Snapshot struct {
	SessionID  string        `json:"session_id"`
	GameID     string        `json:"game_id,omitempty"`
	Phase      string        `json:"phase"`
	Outcome    string        `json:"outcome"`
	Cursor     int           `json:"cursor"`
	PlayerTurn bool          `json:"player_turn"`
	Ability    string        `json:"ability"`
	AICounter  int           `json:"ai_counter"`
	DeadQueued int           `json:"dead_queued"`
	Fighters   []FighterView `json:"fighters"`
}

// Snapshot captures the current state.
func (s *GameSession) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:  s.id,
		GameID:     s.gameID,
		Phase:      string(s.Phase()),
		Outcome:    s.outcome.String(),
		Cursor:     s.seq.Cursor(),
		PlayerTurn: s.seq.IsPlayerTurn(),
		Ability:    s.ability.String(),
		AICounter:  s.aiCounter,
		DeadQueued: s.dead.Len(),
	}
	for i, h := range s.seq.Order() {
		v := FighterView{
			ID:     h.ID(),
			Side:   s.roster.TeamOf(h).Side.String(),
			Order:  i,
			Status: s.seq.StatusAt(i).String(),
		}
		v.Identifier, _ = s.reg.Identifier(h)
		v.Health, v.MaxHealth, _ = s.reg.Health(h)
		if to, ok := s.reg.TurnOrder(h); ok {
			v.Image = to.Image
		}
		snap.Fighters = append(snap.Fighters, v)
	}
	return snap
}
