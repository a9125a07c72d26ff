package games

import "sync"

// Session is one room's game. All methods are safe for concurrent use and
// serialize on the session's own lock, so actions in different rooms never
// contend.
type Session struct {
	mu sync.Mutex

	code        string
	players     []*Player
	board       Board
	gravity     Gravity
	currentTurn string
	status      GameStatus
	winner      string
	lastMove    *Move
	version     int
}

// NewSession opens a waiting room with creator in slot 0 (red).
func NewSession(code, creatorID string) *Session {
	return &Session{
		code:        code,
		players:     []*Player{NewPlayer(creatorID, ColorRed)},
		gravity:     GravityNormal,
		currentTurn: creatorID,
		status:      StatusWaiting,
	}
}

// Code returns the room code.
func (s *Session) Code() string {
	return s.code
}

// Join seats playerID in slot 1 (yellow) and starts the game. Slot 0 moves
// first.
func (s *Session) Join(playerID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusFinished {
		return Snapshot{}, ErrRoomNotFound
	}
	if len(s.players) >= 2 {
		return Snapshot{}, ErrRoomFull
	}
	if s.seat(playerID) != nil {
		return Snapshot{}, ErrAlreadyInRoom
	}

	s.players = append(s.players, NewPlayer(playerID, ColorYellow))
	s.status = StatusActive
	s.currentTurn = s.players[0].ID
	s.version++
	return s.snapshot(), nil
}

// Apply validates and applies one ply for playerID. On error the session is
// left untouched.
func (s *Session) Apply(playerID string, action Action) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return Snapshot{}, ErrGameNotActive
	}
	player := s.seat(playerID)
	if player == nil {
		return Snapshot{}, ErrNotInRoom
	}
	if playerID != s.currentTurn {
		return Snapshot{}, ErrNotYourTurn
	}

	switch action.Kind {
	case ActionPlay:
		if err := s.play(player, action.Column); err != nil {
			return Snapshot{}, err
		}
	case ActionPower:
		if err := s.usePower(player, action.Power, action.Column); err != nil {
			return Snapshot{}, err
		}
	default:
		return Snapshot{}, ErrUnknownAction
	}

	s.settleOutcome()
	s.version++
	return s.snapshot(), nil
}

// Play drops a token for playerID into column.
func (s *Session) Play(playerID string, column int) (Snapshot, error) {
	return s.Apply(playerID, Play(column))
}

// UsePower spends one charge of p for playerID aimed at column.
func (s *Session) UsePower(playerID string, p Power, column int) (Snapshot, error) {
	return s.Apply(playerID, UsePower(p, column))
}

func (s *Session) play(player *Player, column int) error {
	row, err := s.board.Drop(column, s.gravity)
	if err != nil {
		return err
	}
	s.board.Place(row, column, player.ID)
	s.lastMove = &Move{PlayerID: player.ID, Kind: ActionPlay, Cell: &Cell{Row: row, Column: column}}
	return nil
}

func (s *Session) usePower(player *Player, p Power, column int) error {
	if !p.Valid() {
		return ErrUnknownPower
	}
	if player.Charges[p] <= 0 {
		return ErrNoChargesLeft
	}
	m, err := p.Apply(s.board, column, player.ID, s.gravity)
	if err != nil {
		return err
	}
	s.board = m.Board
	s.gravity = m.Gravity
	player.Charges[p]--
	s.lastMove = &Move{PlayerID: player.ID, Kind: ActionPower, Power: p, Cell: m.Target}
	return nil
}

// settleOutcome finishes the game on a win or draw, otherwise passes the
// turn. Every defined ply consumes the turn.
func (s *Session) settleOutcome() {
	if w := s.board.CheckWin(); w != "" {
		s.status = StatusFinished
		s.winner = w
		return
	}
	if s.board.IsFull() {
		s.status = StatusFinished
		s.winner = Draw
		return
	}
	s.currentTurn = s.other(s.currentTurn)
}

// Leave ends the game with no winner. It reports false when the session had
// already finished or playerID is not seated, which callers treat as a no-op.
func (s *Session) Leave(playerID string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusFinished || s.seat(playerID) == nil {
		return Snapshot{}, false
	}
	s.status = StatusFinished
	s.winner = ""
	s.version++
	return s.snapshot(), true
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	players := make([]Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p.clone())
	}
	var last *Move
	if s.lastMove != nil {
		m := *s.lastMove
		if m.Cell != nil {
			c := *m.Cell
			m.Cell = &c
		}
		last = &m
	}
	return Snapshot{
		Code:        s.code,
		Players:     players,
		Board:       s.board,
		Gravity:     s.gravity,
		CurrentTurn: s.currentTurn,
		Status:      s.status,
		Winner:      s.winner,
		LastMove:    last,
		Version:     s.version,
	}
}

func (s *Session) seat(playerID string) *Player {
	for _, p := range s.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (s *Session) other(playerID string) string {
	for _, p := range s.players {
		if p.ID != playerID {
			return p.ID
		}
	}
	return playerID
}
