package policy

import (
	"github.com/rocketscienceinc/tictactoe-learner/internal/entity"
	"github.com/rocketscienceinc/tictactoe-learner/internal/qtable"
	"github.com/rocketscienceinc/tictactoe-learner/internal/tictactoe"
)

const (
	LearnerMax = "RLmax"
	LearnerMin = "RLmin"
	SolverID   = "minimax"
)

// Policy selects a move from board.Current.
type Policy interface {
	ChooseMove(board *tictactoe.Board, store *qtable.QTable) (entity.Move, error)
}

// Participant is one side of a game: an identity with a mark and a role, a
// plain policy and an optional refined policy used late in training.
type Participant struct {
	player  *entity.Player
	plain   Policy
	refined Policy
}

func NewParticipant(player *entity.Player, plain, refined Policy) *Participant {
	return &Participant{
		player:  player,
		plain:   plain,
		refined: refined,
	}
}

func (that *Participant) Name() string           { return that.player.ID }
func (that *Participant) Mark() entity.Mark      { return that.player.Mark }
func (that *Participant) SetMark(m entity.Mark)  { that.player.Mark = m }
func (that *Participant) Role() entity.Role      { return that.player.Role }
func (that *Participant) Player() *entity.Player { return that.player }

// ChooseMove asks the refined policy when refined is set and one exists,
// the plain policy otherwise.
func (that *Participant) ChooseMove(board *tictactoe.Board, store *qtable.QTable, refined bool) (entity.Move, error) {
	if refined && that.refined != nil {
		return that.refined.ChooseMove(board, store)
	}

	return that.plain.ChooseMove(board, store)
}

func (that *Participant) MakeMove(board *tictactoe.Board, move entity.Move) error {
	return tictactoe.MakeTurn(board, that.player.Mark, move)
}
