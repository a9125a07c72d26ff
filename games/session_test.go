package games

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	red    = "player-red"
	yellow = "player-yellow"
)

func activeSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession("ABCDEF", red)
	_, err := s.Join(yellow)
	require.NoError(t, err)
	return s
}

func TestNewSessionWaiting(t *testing.T) {
	s := NewSession("ABCDEF", red)
	snap := s.Snapshot()

	assert.Equal(t, StatusWaiting, snap.Status)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, ColorRed, snap.Players[0].Color)
	for _, p := range Powers {
		assert.Equal(t, 1, snap.Players[0].Charges[p])
	}

	_, err := s.Play(red, 0)
	assert.ErrorIs(t, err, ErrGameNotActive)
}

func TestJoinStartsGame(t *testing.T) {
	s := NewSession("ABCDEF", red)
	snap, err := s.Join(yellow)
	require.NoError(t, err)

	assert.Equal(t, StatusActive, snap.Status)
	assert.Equal(t, []string{red, yellow}, snap.PlayerIDs())
	assert.Equal(t, ColorYellow, snap.Players[1].Color)
	assert.Equal(t, red, snap.CurrentTurn)

	_, err = s.Join("third")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestJoinOwnRoom(t *testing.T) {
	s := NewSession("ABCDEF", red)
	_, err := s.Join(red)
	assert.ErrorIs(t, err, ErrAlreadyInRoom)
}

// Scenario A
func TestTurnAlternationEnforced(t *testing.T) {
	s := activeSession(t)

	snap, err := s.Play(red, 0)
	require.NoError(t, err)
	assert.Equal(t, yellow, snap.CurrentTurn)

	for i := 0; i < 3; i++ {
		_, err = s.Play(red, 0)
		assert.ErrorIs(t, err, ErrNotYourTurn)
	}
	assert.Equal(t, 1, s.Snapshot().Board.Count())
}

func TestOutsiderRejected(t *testing.T) {
	s := activeSession(t)
	_, err := s.Play("stranger", 0)
	assert.ErrorIs(t, err, ErrNotInRoom)
}

// Scenario B
func TestColumnFullLeavesTurn(t *testing.T) {
	s := activeSession(t)
	for i := 0; i < BoardHeight; i++ {
		player := red
		if i%2 == 1 {
			player = yellow
		}
		_, err := s.Play(player, 0)
		require.NoError(t, err)
	}
	before := s.Snapshot()
	require.Equal(t, red, before.CurrentTurn)

	_, err := s.Play(red, 0)
	assert.ErrorIs(t, err, ErrColumnFull)

	after := s.Snapshot()
	assert.Equal(t, red, after.CurrentTurn)
	assert.Equal(t, before.Version, after.Version)
}

// Scenario C
func TestHorizontalWinFinishes(t *testing.T) {
	s := activeSession(t)
	for c := 0; c < 3; c++ {
		_, err := s.Play(red, c)
		require.NoError(t, err)
		_, err = s.Play(yellow, c)
		require.NoError(t, err)
	}
	snap, err := s.Play(red, 3)
	require.NoError(t, err)

	assert.Equal(t, StatusFinished, snap.Status)
	assert.Equal(t, red, snap.Winner)
	assert.Equal(t, red, snap.Board[BoardHeight-1][3])

	_, err = s.Play(yellow, 4)
	assert.ErrorIs(t, err, ErrGameNotActive)
	_, err = s.UsePower(yellow, PowerGravity, 0)
	assert.ErrorIs(t, err, ErrGameNotActive)
}

// drawColumns lists each column bottom-up. Rows run in pairs and columns
// alternate, so no line of four exists anywhere.
func drawColumns() [BoardWidth][BoardHeight]string {
	a := [BoardHeight]string{red, red, yellow, yellow, red, red}
	b := [BoardHeight]string{yellow, yellow, red, red, yellow, yellow}
	return [BoardWidth][BoardHeight]string{a, b, a, b, a, b, a}
}

// Scenario D
func TestFullBoardIsDraw(t *testing.T) {
	s := activeSession(t)
	cols := drawColumns()

	// play everything but the last cell directly onto the board, then let
	// the session take the final ply
	s.mu.Lock()
	for c := 0; c < BoardWidth; c++ {
		for i := 0; i < BoardHeight; i++ {
			s.board[BoardHeight-1-i][c] = cols[c][i]
		}
	}
	last := cols[BoardWidth-1][BoardHeight-1]
	s.board[0][BoardWidth-1] = EmptyCell
	s.currentTurn = last
	s.mu.Unlock()

	snap, err := s.Play(last, BoardWidth-1)
	require.NoError(t, err)
	assert.Equal(t, "", snap.Board.CheckWin())
	assert.Equal(t, StatusFinished, snap.Status)
	assert.Equal(t, Draw, snap.Winner)
}

// Scenario E
func TestGravityPowerFlipsDrops(t *testing.T) {
	s := activeSession(t)
	_, err := s.Play(red, 2)
	require.NoError(t, err)

	snap, err := s.UsePower(yellow, PowerGravity, 0)
	require.NoError(t, err)
	assert.Equal(t, GravityInverted, snap.Gravity)
	assert.Equal(t, red, snap.Board[0][2], "existing token should resettle to the top")
	assert.Equal(t, red, snap.CurrentTurn)

	require.NotNil(t, snap.LastMove)
	assert.Equal(t, PowerGravity, snap.LastMove.Power)
	assert.Nil(t, snap.LastMove.Cell, "a gravity flip touches no single cell")
	raw, err := json.Marshal(snap.LastMove)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"row"`)

	snap, err = s.Play(red, 4)
	require.NoError(t, err)
	assert.Equal(t, red, snap.Board[0][4])
	assert.Equal(t, 0, snap.LastMove.Row)
}

func TestChargesSingleUse(t *testing.T) {
	s := activeSession(t)
	for _, col := range []int{0, 1, 2} {
		_, err := s.Play(red, col)
		require.NoError(t, err)
		_, err = s.Play(yellow, col)
		require.NoError(t, err)
	}

	snap, err := s.UsePower(red, PowerRemove, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Players[0].Charges[PowerRemove])
	assert.Equal(t, 1, snap.Players[1].Charges[PowerRemove])

	_, err = s.Play(yellow, 5)
	require.NoError(t, err)

	// board has tokens, still rejected
	_, err = s.UsePower(red, PowerRemove, 1)
	assert.ErrorIs(t, err, ErrNoChargesLeft)
	assert.Equal(t, red, s.Snapshot().CurrentTurn)

	_, err = s.UsePower(red, PowerExplode, 1)
	assert.NoError(t, err)
}

func TestFailedPowerKeepsCharge(t *testing.T) {
	s := activeSession(t)
	_, err := s.UsePower(red, PowerRemove, 3)
	assert.ErrorIs(t, err, ErrEmptyColumn)

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Players[0].Charges[PowerRemove])
	assert.Equal(t, red, snap.CurrentTurn)

	_, err = s.UsePower(red, Power("teleport"), 3)
	assert.ErrorIs(t, err, ErrUnknownPower)
}

func TestPowerCanHandOpponentTheWin(t *testing.T) {
	s := activeSession(t)
	s.mu.Lock()
	s.board[5][0], s.board[5][1], s.board[5][2] = yellow, yellow, yellow
	s.board[5][3], s.board[4][3] = red, yellow
	s.mu.Unlock()

	// inverted, every column compacts to row 0 and yellow lines up there
	snap, err := s.UsePower(red, PowerGravity, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, snap.Status)
	assert.Equal(t, yellow, snap.Winner)
	assert.Equal(t, red, snap.Board[1][3])
}

func TestLeaveIsIdempotent(t *testing.T) {
	s := activeSession(t)
	snap, left := s.Leave(yellow)
	assert.True(t, left)
	assert.Equal(t, StatusFinished, snap.Status)
	assert.Empty(t, snap.Winner)

	snap, left = s.Leave(yellow)
	assert.False(t, left)
	assert.Zero(t, snap)
	_, left = s.Leave(red)
	assert.False(t, left)

	_, err := s.Play(red, 0)
	assert.ErrorIs(t, err, ErrGameNotActive)
}

func TestLeaveByStranger(t *testing.T) {
	s := activeSession(t)
	_, left := s.Leave("stranger")
	assert.False(t, left)
	assert.Equal(t, StatusActive, s.Snapshot().Status)
}

func TestConcurrentPlaysSerialized(t *testing.T) {
	s := activeSession(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(col int) {
			defer wg.Done()
			if _, err := s.Play(red, col%BoardWidth); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, s.Snapshot().Board.Count())
}

func TestSnapshotIsACopy(t *testing.T) {
	s := activeSession(t)
	snap := s.Snapshot()
	snap.Board[0][0] = "tamper"
	snap.Players[0].Charges[PowerRemove] = 99

	fresh := s.Snapshot()
	assert.Equal(t, EmptyCell, fresh.Board[0][0])
	assert.Equal(t, 1, fresh.Players[0].Charges[PowerRemove])
}
