package games

import "encoding/json"

// Gravity is the edge tokens fall toward. Normal is the bottom row.
type Gravity bool

const (
	GravityNormal   Gravity = false
	GravityInverted Gravity = true
)

// Toggle returns the opposite gravity.
func (g Gravity) Toggle() Gravity {
	return !g
}

func (g Gravity) String() string {
	if g == GravityInverted {
		return "inverted"
	}
	return "normal"
}

// Board is the 6x7 grid. Row 0 is the top edge. A cell holds the owning
// player id or EmptyCell. Board is a value: assignment copies it.
type Board [BoardHeight][BoardWidth]string

// Cell addresses one square of the board.
type Cell struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// scan order for the rows of a column, first row to fill first
func columnOrder(g Gravity) [BoardHeight]int {
	var rows [BoardHeight]int
	for i := range rows {
		if g == GravityInverted {
			rows[i] = i
		} else {
			rows[i] = BoardHeight - 1 - i
		}
	}
	return rows
}

func validColumn(column int) bool {
	return column >= 0 && column < BoardWidth
}

func inBounds(row, column int) bool {
	return row >= 0 && row < BoardHeight && validColumn(column)
}

// Drop returns the row a token dropped into column would land on under g.
// It does not place the token.
func (b Board) Drop(column int, g Gravity) (int, error) {
	if !validColumn(column) {
		return -1, ErrInvalidColumn
	}
	for _, r := range columnOrder(g) {
		if b[r][column] == EmptyCell {
			return r, nil
		}
	}
	return -1, ErrColumnFull
}

// Place sets the owner of a cell without validation.
func (b *Board) Place(row, column int, playerID string) {
	b[row][column] = playerID
}

// Remove clears a cell and settles the board so no token floats.
func (b *Board) Remove(row, column int, g Gravity) {
	b[row][column] = EmptyCell
	b.Settle(g)
}

// Settle compacts every column toward the gravity edge, keeping the
// relative order of the tokens.
func (b *Board) Settle(g Gravity) {
	order := columnOrder(g)
	for c := 0; c < BoardWidth; c++ {
		next := 0
		for _, r := range order {
			owner := b[r][c]
			if owner == EmptyCell {
				continue
			}
			b[r][c] = EmptyCell
			b[order[next]][c] = owner
			next++
		}
	}
}

// Top returns the row of the token nearest the open end of column, the
// last one that landed under g.
func (b Board) Top(column int, g Gravity) (int, error) {
	if !validColumn(column) {
		return -1, ErrInvalidColumn
	}
	order := columnOrder(g)
	for i := len(order) - 1; i >= 0; i-- {
		if r := order[i]; b[r][column] != EmptyCell {
			return r, nil
		}
	}
	return -1, ErrEmptyColumn
}

// directions in scan priority: horizontal, vertical, diagonal down-right,
// diagonal up-right
var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {-1, 1}}

// CheckWin returns the owner of the first four-in-a-row found scanning rows
// top to bottom and columns left to right, or "" when there is none.
func (b Board) CheckWin() string {
	for r := 0; r < BoardHeight; r++ {
		for c := 0; c < BoardWidth; c++ {
			owner := b[r][c]
			if owner == EmptyCell {
				continue
			}
			for _, d := range directions {
				if b.line(r, c, d[0], d[1], owner) {
					return owner
				}
			}
		}
	}
	return ""
}

func (b Board) line(row, col, dr, dc int, owner string) bool {
	for i := 1; i < WinLength; i++ {
		r, c := row+dr*i, col+dc*i
		if !inBounds(r, c) || b[r][c] != owner {
			return false
		}
	}
	return true
}

// IsFull reports whether every cell is occupied.
func (b Board) IsFull() bool {
	return b.Count() == BoardHeight*BoardWidth
}

// Count returns the number of occupied cells.
func (b Board) Count() int {
	n := 0
	for r := range b {
		for c := range b[r] {
			if b[r][c] != EmptyCell {
				n++
			}
		}
	}
	return n
}

// MarshalJSON encodes the grid row-major with null for empty cells.
func (b Board) MarshalJSON() ([]byte, error) {
	rows := make([][]*string, BoardHeight)
	for r := range b {
		rows[r] = make([]*string, BoardWidth)
		for c := range b[r] {
			if b[r][c] != EmptyCell {
				owner := b[r][c]
				rows[r][c] = &owner
			}
		}
	}
	return json.Marshal(rows)
}
