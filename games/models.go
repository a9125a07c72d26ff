package games

type GameStatus string

type Color string

type ActionKind string

// Player is one seat of a session.
type Player struct {
	ID      string        `json:"id"`
	Color   Color         `json:"color"`
	Charges map[Power]int `json:"charges"`
}

// NewPlayer seats id with one charge of every power.
func NewPlayer(id string, color Color) *Player {
	charges := make(map[Power]int, len(Powers))
	for _, p := range Powers {
		charges[p] = 1
	}
	return &Player{
		ID:      id,
		Color:   color,
		Charges: charges,
	}
}

func (p *Player) clone() Player {
	out := Player{ID: p.ID, Color: p.Color, Charges: make(map[Power]int, len(p.Charges))}
	for k, v := range p.Charges {
		out.Charges[k] = v
	}
	return out
}

// Action is one ply requested by a player.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Column int        `json:"column"`
	Power  Power      `json:"power,omitempty"`
}

// Play builds a token drop action.
func Play(column int) Action {
	return Action{Kind: ActionPlay, Column: column}
}

// UsePower builds a power action.
func UsePower(p Power, column int) Action {
	return Action{Kind: ActionPower, Column: column, Power: p}
}

// Move records the last ply applied, for highlighting on clients. Cell is
// nil when the ply touched no particular cell, as with a gravity flip, and
// then row and column are absent from the JSON.
type Move struct {
	PlayerID string     `json:"playerId"`
	Kind     ActionKind `json:"kind"`
	Power    Power      `json:"power,omitempty"`
	*Cell
}

// Snapshot is a read-only copy of a session's state.
type Snapshot struct {
	Code        string     `json:"roomId"`
	Players     []Player   `json:"players"`
	Board       Board      `json:"board"`
	Gravity     Gravity    `json:"gravityState"`
	CurrentTurn string     `json:"currentPlayer"`
	Status      GameStatus `json:"status"`
	Winner      string     `json:"winner,omitempty"`
	LastMove    *Move      `json:"lastMove,omitempty"`
	// Version increases with every state change so clients can drop
	// stale updates.
	Version int `json:"version"`
}

// PlayerIDs returns the seated ids in slot order.
func (s Snapshot) PlayerIDs() []string {
	ids := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// Opponent returns the id seated opposite playerID, or "".
func (s Snapshot) Opponent(playerID string) string {
	for _, p := range s.Players {
		if p.ID != playerID {
			return p.ID
		}
	}
	return ""
}
