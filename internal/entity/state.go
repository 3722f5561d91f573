package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-learner/internal/apperror"
)

const BoardSize = 3

type Mark byte

const (
	Empty  Mark = '-'
	Cross  Mark = 'X'
	Nought Mark = 'O'
)

// Other returns the opposing mark. Empty maps to itself.
func (that Mark) Other() Mark {
	switch that {
	case Cross:
		return Nought
	case Nought:
		return Cross
	default:
		return Empty
	}
}

func (that Mark) String() string {
	return string(that)
}

func (that Mark) IsValid() bool {
	return that == Empty || that == Cross || that == Nought
}

type Outcome int

const (
	InPlay Outcome = iota
	Drawn
	Win
)

func (that Outcome) String() string {
	switch that {
	case InPlay:
		return "in-play"
	case Drawn:
		return "drawn"
	case Win:
		return "win"
	default:
		return fmt.Sprintf("outcome(%d)", int(that))
	}
}

type Move struct {
	Row int
	Col int
}

func (that Move) String() string {
	return fmt.Sprintf("(%d, %d)", that.Row, that.Col)
}

func (that Move) InRange() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

// ParseMove parses the "(r, c)" form produced by Move.String.
func ParseMove(s string) (Move, error) {
	var move Move
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "(%d, %d)", &move.Row, &move.Col); err != nil {
		return Move{}, fmt.Errorf("%w: cannot parse %q: %w", apperror.ErrInvalidMove, s, err)
	}

	if !move.InRange() {
		return Move{}, fmt.Errorf("%w: %s out of range", apperror.ErrInvalidMove, move)
	}

	return move, nil
}

var WinLines = [8][3]Move{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// State is a 3x3 grid of marks. It is a value type: assignment copies it.
type State [BoardSize][BoardSize]Mark

func NewState() State {
	var state State
	for row := range state {
		for col := range state[row] {
			state[row][col] = Empty
		}
	}

	return state
}

// ParseState builds a state from its 9-character row-major form.
func ParseState(s string) (State, error) {
	if len(s) != BoardSize*BoardSize {
		return State{}, fmt.Errorf("%w: state %q must have %d cells", apperror.ErrInvalidMove, s, BoardSize*BoardSize)
	}

	var state State
	for i := 0; i < len(s); i++ {
		mark := Mark(s[i])
		if !mark.IsValid() {
			return State{}, fmt.Errorf("%w: unknown mark %q in state %q", apperror.ErrInvalidMove, s[i], s)
		}
		state[i/BoardSize][i%BoardSize] = mark
	}

	return state, nil
}

func (that State) At(move Move) Mark {
	return that[move.Row][move.Col]
}

// AvailableMoves returns every empty cell in row-major order.
func (that State) AvailableMoves() []Move {
	moves := make([]Move, 0, BoardSize*BoardSize)
	for row := range that {
		for col, cell := range that[row] {
			if cell == Empty {
				moves = append(moves, Move{Row: row, Col: col})
			}
		}
	}

	return moves
}

func (that State) IsFull() bool {
	for row := range that {
		for _, cell := range that[row] {
			if cell == Empty {
				return false
			}
		}
	}

	return true
}

// LineMatch reports whether any row, column or diagonal is entirely mark.
func (that State) LineMatch(mark Mark) bool {
	for _, line := range WinLines {
		if that.At(line[0]) == mark && that.At(line[1]) == mark && that.At(line[2]) == mark {
			return true
		}
	}

	return false
}

// Outcome must be evaluated on the post-move state for the mark that just moved.
func (that State) Outcome(lastMover Mark) Outcome {
	if that.LineMatch(lastMover) {
		return Win
	}

	if that.IsFull() {
		return Drawn
	}

	return InPlay
}

// Place returns a copy of the state with mark written at move.
func (that State) Place(move Move, mark Mark) (State, error) {
	if !move.InRange() {
		return that, fmt.Errorf("%w: %s out of range", apperror.ErrInvalidMove, move)
	}

	if that.At(move) != Empty {
		return that, fmt.Errorf("%w: %s is occupied", apperror.ErrInvalidMove, move)
	}

	that[move.Row][move.Col] = mark

	return that, nil
}

func (that State) Key(player string) StateKey {
	return StateKey{State: that, Player: player}
}

// String returns the flattened grid in row-major order.
func (that State) String() string {
	var b strings.Builder
	b.Grow(BoardSize * BoardSize)
	for row := range that {
		for _, cell := range that[row] {
			b.WriteByte(byte(cell))
		}
	}

	return b.String()
}

// Render draws the grid for a console.
func (that State) Render() string {
	var b strings.Builder
	b.WriteString("* * * * *\n")
	for row := range that {
		fmt.Fprintf(&b, "* %s %s %s *\n", that[row][0], that[row][1], that[row][2])
	}
	b.WriteString("* * * * *\n")

	return b.String()
}
