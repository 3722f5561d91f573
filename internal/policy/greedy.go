package policy

import (
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-learner/internal/config"
	"github.com/rocketscienceinc/tictactoe-learner/internal/entity"
	"github.com/rocketscienceinc/tictactoe-learner/internal/qtable"
	"github.com/rocketscienceinc/tictactoe-learner/internal/tictactoe"
)

// EpsilonGreedy explores with probability ε, or whenever the state is
// unknown, and otherwise exploits the table in the direction of its role.
type EpsilonGreedy struct {
	player *entity.Player
	hp     *config.Hyperparameters
	rng    *rand.Rand
}

func NewEpsilonGreedy(player *entity.Player, hp *config.Hyperparameters, rng *rand.Rand) *EpsilonGreedy {
	return &EpsilonGreedy{
		player: player,
		hp:     hp,
		rng:    rng,
	}
}

func (that *EpsilonGreedy) ChooseMove(board *tictactoe.Board, store *qtable.QTable) (entity.Move, error) {
	key := board.Current.Key(that.player.ID)

	if !store.Contains(key) || that.rng.Float32() < that.hp.Exploration {
		return randomMove(board.Current, that.rng)
	}

	if that.player.Role == entity.Minimizer {
		return store.SelectMin(key)
	}

	return store.SelectMax(key)
}

// NewLearner builds a q-learning participant: ε-greedy early, Boltzmann once refined.
func NewLearner(id string, role entity.Role, hp *config.Hyperparameters, rng *rand.Rand) *Participant {
	player := &entity.Player{ID: id, Role: role}

	return NewParticipant(player, NewEpsilonGreedy(player, hp, rng), NewBoltzmann(player, hp))
}
