package policy

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/rocketscienceinc/tictactoe-learner/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-learner/internal/config"
	"github.com/rocketscienceinc/tictactoe-learner/internal/entity"
	"github.com/rocketscienceinc/tictactoe-learner/internal/qtable"
	"github.com/rocketscienceinc/tictactoe-learner/internal/tictactoe"
)

const shiftMargin = 0.1

// Boltzmann sharpens the table with a power law and picks the extreme
// weighted move. It does not sample.
type Boltzmann struct {
	player *entity.Player
	hp     *config.Hyperparameters
}

func NewBoltzmann(player *entity.Player, hp *config.Hyperparameters) *Boltzmann {
	return &Boltzmann{
		player: player,
		hp:     hp,
	}
}

func (that *Boltzmann) ChooseMove(board *tictactoe.Board, store *qtable.QTable) (entity.Move, error) {
	key := board.Current.Key(that.player.ID)

	moves, err := store.Get(key)
	if err != nil {
		return entity.Move{}, err
	}

	if len(moves) == 0 {
		return entity.Move{}, fmt.Errorf("%w: %s", apperror.ErrNoAvailableMoves, key)
	}

	weights := Weigh(moves, that.hp.K)
	best := weights.Sorted()[0]
	for _, move := range weights.Sorted()[1:] {
		if that.player.Role == entity.Minimizer && weights[move] < weights[best] ||
			that.player.Role == entity.Maximizer && weights[move] > weights[best] {
			best = move
		}
	}

	return best, nil
}

// Shift lifts every value by |min|+0.1 when the minimum is negative, so that
// the power law is applied to non-negative values only.
func Shift(moves qtable.Moves) qtable.Moves {
	shifted := moves.Clone()

	lowest := moves.Min()
	if lowest < 0 {
		constant := math32.Abs(lowest) + shiftMargin
		for move := range shifted {
			shifted[move] += constant
		}
	}

	return shifted
}

// Weigh shifts the table and returns v^k / Σ v^k for every move.
func Weigh(moves qtable.Moves, k float32) qtable.Moves {
	weights := Shift(moves)

	var sum float32
	for move, value := range weights {
		weights[move] = math32.Pow(value, k)
		sum += weights[move]
	}

	if sum == 0 {
		for move := range weights {
			weights[move] = 1 / float32(len(weights))
		}

		return weights
	}

	for move := range weights {
		weights[move] /= sum
	}

	return weights
}
