package policy

import (
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-learner/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-learner/internal/entity"
	"github.com/rocketscienceinc/tictactoe-learner/internal/qtable"
	"github.com/rocketscienceinc/tictactoe-learner/internal/tictactoe"
)

type Random struct {
	rng *rand.Rand
}

func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (that *Random) ChooseMove(board *tictactoe.Board, _ *qtable.QTable) (entity.Move, error) {
	return randomMove(board.Current, that.rng)
}

func randomMove(state entity.State, rng *rand.Rand) (entity.Move, error) {
	availableCells := state.AvailableMoves()
	if len(availableCells) == 0 {
		return entity.Move{}, apperror.ErrNoAvailableMoves
	}

	return availableCells[rng.Intn(len(availableCells))], nil
}

func NewRandomPlayer(id string, role entity.Role, rng *rand.Rand) *Participant {
	random := NewRandom(rng)

	return NewParticipant(&entity.Player{ID: id, Role: role}, random, nil)
}
