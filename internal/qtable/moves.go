package qtable

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/rocketscienceinc/tictactoe-learner/internal/entity"
)

const (
	jitter   = 0.15
	Sentinel = -100
)

// Moves maps each candidate move of a state to its value.
type Moves map[entity.Move]float32

// NewMoves seeds every candidate with uniform noise in [-0.15, 0.15) so that
// ties are broken before any learning happens.
func NewMoves(candidates []entity.Move, rng *rand.Rand) Moves {
	moves := make(Moves, len(candidates))
	for _, move := range candidates {
		moves[move] = rng.Float32()*2*jitter - jitter
	}

	return moves
}

// NewSentinelMoves seeds every candidate with Sentinel, for exact solvers that
// overwrite each value.
func NewSentinelMoves(candidates []entity.Move) Moves {
	moves := make(Moves, len(candidates))
	for _, move := range candidates {
		moves[move] = Sentinel
	}

	return moves
}

func (that Moves) Clone() Moves {
	clone := make(Moves, len(that))
	for move, value := range that {
		clone[move] = value
	}

	return clone
}

func (that Moves) Max() float32 {
	best := math32.Inf(-1)
	for _, value := range that {
		best = math32.Max(best, value)
	}

	return best
}

func (that Moves) Min() float32 {
	best := math32.Inf(1)
	for _, value := range that {
		best = math32.Min(best, value)
	}

	return best
}

// SelectMax returns one of the moves tied for the maximum value, chosen uniformly.
func (that Moves) SelectMax(rng *rand.Rand) (entity.Move, bool) {
	return that.selectTied(that.Max(), rng)
}

// SelectMin returns one of the moves tied for the minimum value, chosen uniformly.
func (that Moves) SelectMin(rng *rand.Rand) (entity.Move, bool) {
	return that.selectTied(that.Min(), rng)
}

func (that Moves) selectTied(target float32, rng *rand.Rand) (entity.Move, bool) {
	tied := make([]entity.Move, 0, len(that))
	for _, move := range that.Sorted() {
		if that[move] == target {
			tied = append(tied, move)
		}
	}

	if len(tied) == 0 {
		return entity.Move{}, false
	}

	return tied[rng.Intn(len(tied))], true
}

// Sorted returns the moves in row-major order, so that iteration over the
// table is reproducible for a seeded generator.
func (that Moves) Sorted() []entity.Move {
	sorted := make([]entity.Move, 0, len(that))
	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			move := entity.Move{Row: row, Col: col}
			if _, ok := that[move]; ok {
				sorted = append(sorted, move)
			}
		}
	}

	return sorted
}
