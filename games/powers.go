package games

// Power is a single-use ability that mutates the board instead of dropping
// a token.
type Power string

// Powers lists every power a player is granted at the start of a session.
var Powers = []Power{PowerRemove, PowerExplode, PowerGravity}

// Valid reports whether p is a known power.
func (p Power) Valid() bool {
	switch p {
	case PowerRemove, PowerExplode, PowerGravity:
		return true
	}
	return false
}

// Mutation is the result of applying a power.
type Mutation struct {
	Board   Board
	Gravity Gravity
	// Target is the cell the power aimed at, nil for powers that aim at
	// no cell.
	Target  *Cell
	Cleared []Cell
}

// Apply computes the effect of p on a copy of b. The acting player does not
// change the outcome for the defined powers but is part of the contract for
// powers that would. Charges are the caller's concern.
func (p Power) Apply(b Board, column int, actor string, g Gravity) (Mutation, error) {
	switch p {
	case PowerRemove:
		return removeTop(b, column, g)
	case PowerExplode:
		return explode(b, column, g)
	case PowerGravity:
		g = g.Toggle()
		b.Settle(g)
		return Mutation{Board: b, Gravity: g}, nil
	}
	return Mutation{}, ErrUnknownPower
}

func removeTop(b Board, column int, g Gravity) (Mutation, error) {
	row, err := b.Top(column, g)
	if err != nil {
		return Mutation{}, err
	}
	b.Remove(row, column, g)
	target := Cell{Row: row, Column: column}
	return Mutation{Board: b, Gravity: g, Target: &target, Cleared: []Cell{target}}, nil
}

// explode clears the 3x3 neighbourhood around the top token of column,
// clipped to the board, then settles once.
func explode(b Board, column int, g Gravity) (Mutation, error) {
	row, err := b.Top(column, g)
	if err != nil {
		return Mutation{}, err
	}
	var cleared []Cell
	for r := row - 1; r <= row+1; r++ {
		for c := column - 1; c <= column+1; c++ {
			if !inBounds(r, c) || b[r][c] == EmptyCell {
				continue
			}
			b[r][c] = EmptyCell
			cleared = append(cleared, Cell{Row: r, Column: c})
		}
	}
	b.Settle(g)
	return Mutation{Board: b, Gravity: g, Target: &Cell{Row: row, Column: column}, Cleared: cleared}, nil
}
