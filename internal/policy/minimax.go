package policy

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-learner/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-learner/internal/entity"
	"github.com/rocketscienceinc/tictactoe-learner/internal/qtable"
	"github.com/rocketscienceinc/tictactoe-learner/internal/tictactoe"
)

const winScore = 10

// Minimax is an exact solver. Root scores are memoised in its own cache,
// keyed like the value store, so a position is only ever searched once.
type Minimax struct {
	player *entity.Player
	cache  *qtable.QTable
}

func NewMinimax(player *entity.Player, cache *qtable.QTable) *Minimax {
	return &Minimax{
		player: player,
		cache:  cache,
	}
}

func (that *Minimax) Cache() *qtable.QTable {
	return that.cache
}

func (that *Minimax) ChooseMove(board *tictactoe.Board, _ *qtable.QTable) (entity.Move, error) {
	mark := that.player.Mark
	if mark != entity.Cross && mark != entity.Nought {
		return entity.Move{}, apperror.ErrUnassignedMark
	}

	key := board.Current.Key(that.player.ID)
	if that.cache.Contains(key) {
		return that.cache.SelectMax(key)
	}

	candidates := board.Current.AvailableMoves()
	if len(candidates) == 0 {
		return entity.Move{}, fmt.Errorf("%w: %s", apperror.ErrNoAvailableMoves, key)
	}

	scores := qtable.NewSentinelMoves(candidates)
	for _, move := range candidates {
		successor, err := board.Current.Place(move, mark)
		if err != nil {
			return entity.Move{}, err
		}
		scores[move] = float32(Value(successor, mark.Other(), 0, false))
	}
	that.cache.Set(key, scores)

	return that.cache.SelectMax(key)
}

// Value scores state with mark to move, from the solver's point of view.
// A win for the side that just moved is worth -10+depth when it is the
// solver's turn and 10-depth otherwise, so faster wins and slower losses
// are preferred. Every branch searches its own copy of the state.
func Value(state entity.State, mark entity.Mark, depth int, maximizing bool) int {
	switch state.Outcome(mark.Other()) {
	case entity.Win:
		if maximizing {
			return -winScore + depth
		}
		return winScore - depth
	case entity.Drawn:
		return 0
	}

	best := winScore + 1
	if maximizing {
		best = -best
	}

	for _, move := range state.AvailableMoves() {
		successor := state
		successor[move.Row][move.Col] = mark

		score := Value(successor, mark.Other(), depth+1, !maximizing)
		if maximizing && score > best || !maximizing && score < best {
			best = score
		}
	}

	return best
}

func NewSolver(id string, role entity.Role, cache *qtable.QTable) *Participant {
	player := &entity.Player{ID: id, Role: role}
	solver := NewMinimax(player, cache)

	return NewParticipant(player, solver, solver)
}
