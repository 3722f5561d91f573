package usecase

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-learner/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-learner/internal/config"
	"github.com/rocketscienceinc/tictactoe-learner/internal/entity"
	"github.com/rocketscienceinc/tictactoe-learner/internal/policy"
	"github.com/rocketscienceinc/tictactoe-learner/internal/qtable"
	"github.com/rocketscienceinc/tictactoe-learner/internal/tictactoe"
)

// scripted plays a fixed sequence of moves.
type scripted struct {
	moves []entity.Move
}

func (that *scripted) ChooseMove(_ *tictactoe.Board, _ *qtable.QTable) (entity.Move, error) {
	if len(that.moves) == 0 {
		return entity.Move{}, apperror.ErrNoAvailableMoves
	}

	move := that.moves[0]
	that.moves = that.moves[1:]

	return move, nil
}

func newScripted(id string, mark entity.Mark, moves ...entity.Move) *policy.Participant {
	player := &entity.Player{ID: id, Mark: mark, Role: entity.Maximizer}

	return policy.NewParticipant(player, &scripted{moves: moves}, nil)
}

func newMatchStore() *qtable.QTable {
	hp := config.DefaultHyperparameters()

	return qtable.New(&hp, rand.New(rand.NewSource(1)))
}

func TestNewMatch(t *testing.T) {
	t.Run("Cross moves first regardless of the argument order", func(t *testing.T) {
		nought := newScripted("alice", entity.Nought)
		cross := newScripted("bob", entity.Cross)

		match, err := NewMatch(discardLogger(), io.Discard, newMatchStore(), nought, cross)

		require.NoError(t, err)
		assert.Equal(t, "bob", match.current.Name())
	})

	t.Run("Unassigned marks are rejected", func(t *testing.T) {
		a := newScripted("alice", entity.Empty)
		b := newScripted("bob", entity.Cross)

		_, err := NewMatch(discardLogger(), io.Discard, newMatchStore(), a, b)

		assert.ErrorIs(t, err, apperror.ErrUnassignedMark)
	})

	t.Run("Equal marks are rejected", func(t *testing.T) {
		a := newScripted("alice", entity.Cross)
		b := newScripted("bob", entity.Cross)

		_, err := NewMatch(discardLogger(), io.Discard, newMatchStore(), a, b)

		assert.ErrorIs(t, err, apperror.ErrUnassignedMark)
	})
}

func TestMatch_Play(t *testing.T) {
	t.Run("The first row wins", func(t *testing.T) {
		// Given: X takes the top row while O plays the middle row
		cross := newScripted("alice", entity.Cross, entity.Move{Row: 0, Col: 0}, entity.Move{Row: 0, Col: 1}, entity.Move{Row: 0, Col: 2})
		nought := newScripted("bob", entity.Nought, entity.Move{Row: 1, Col: 0}, entity.Move{Row: 1, Col: 1})
		out := &bytes.Buffer{}

		match, err := NewMatch(discardLogger(), out, newMatchStore(), cross, nought)
		require.NoError(t, err)

		// When: the match is played
		result, err := match.Play(context.Background())

		// Then: X wins on the fifth ply
		require.NoError(t, err)
		assert.Equal(t, entity.Win, result.Outcome)
		assert.Equal(t, "alice", result.Winner)
		assert.Equal(t, 5, result.Plies)
		assert.Contains(t, out.String(), "alice (X) has won!")
	})

	t.Run("A full board without a line is a draw", func(t *testing.T) {
		// X O X
		// X O O
		// O X X
		cross := newScripted("alice", entity.Cross,
			entity.Move{Row: 0, Col: 0}, entity.Move{Row: 0, Col: 2}, entity.Move{Row: 1, Col: 0}, entity.Move{Row: 2, Col: 1}, entity.Move{Row: 2, Col: 2})
		nought := newScripted("bob", entity.Nought,
			entity.Move{Row: 0, Col: 1}, entity.Move{Row: 1, Col: 1}, entity.Move{Row: 2, Col: 0}, entity.Move{Row: 1, Col: 2})
		out := &bytes.Buffer{}

		match, err := NewMatch(discardLogger(), out, newMatchStore(), cross, nought)
		require.NoError(t, err)

		result, err := match.Play(context.Background())

		require.NoError(t, err)
		assert.Equal(t, entity.Drawn, result.Outcome)
		assert.Empty(t, result.Winner)
		assert.Equal(t, 9, result.Plies)
		assert.Contains(t, out.String(), "draw")
	})

	t.Run("An illegal move aborts the match", func(t *testing.T) {
		cross := newScripted("alice", entity.Cross, entity.Move{Row: 0, Col: 0})
		nought := newScripted("bob", entity.Nought, entity.Move{Row: 0, Col: 0})

		match, err := NewMatch(discardLogger(), io.Discard, newMatchStore(), cross, nought)
		require.NoError(t, err)

		_, err = match.Play(context.Background())

		assert.ErrorIs(t, err, apperror.ErrInvalidMove)
	})

	t.Run("A human who keeps mistyping is asked again", func(t *testing.T) {
		// Given: a human whose first three lines are garbage
		input := strings.NewReader("a\nb\nc\n1 1\n1 2\n1 3\n")
		out := &bytes.Buffer{}
		human, _ := policy.NewHumanPlayer("alice", entity.Maximizer, input, out)
		human.SetMark(entity.Cross)
		nought := newScripted("bob", entity.Nought, entity.Move{Row: 1, Col: 0}, entity.Move{Row: 1, Col: 1})

		match, err := NewMatch(discardLogger(), out, newMatchStore(), human, nought)
		require.NoError(t, err)

		// When: the match is played
		result, err := match.Play(context.Background())

		// Then: the prompt is repeated and the human eventually wins
		require.NoError(t, err)
		assert.Equal(t, "alice", result.Winner)
		assert.Contains(t, out.String(), "Please, try choosing your move again.")
	})

	t.Run("Running out of input aborts the match", func(t *testing.T) {
		human, _ := policy.NewHumanPlayer("alice", entity.Maximizer, strings.NewReader(""), io.Discard)
		human.SetMark(entity.Cross)
		nought := newScripted("bob", entity.Nought)

		match, err := NewMatch(discardLogger(), io.Discard, newMatchStore(), human, nought)
		require.NoError(t, err)

		_, err = match.Play(context.Background())

		assert.ErrorIs(t, err, io.EOF)
	})
}

func TestAssignMarks(t *testing.T) {
	a := newScripted("alice", entity.Empty)
	b := newScripted("bob", entity.Empty)

	AssignMarks(a, b, entity.Nought)

	assert.Equal(t, entity.Nought, a.Mark())
	assert.Equal(t, entity.Cross, b.Mark())
}
