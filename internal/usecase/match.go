package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-learner/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-learner/internal/entity"
	"github.com/rocketscienceinc/tictactoe-learner/internal/policy"
	"github.com/rocketscienceinc/tictactoe-learner/internal/qtable"
	"github.com/rocketscienceinc/tictactoe-learner/internal/tictactoe"
)

// Match plays a single game without learning.
type Match struct {
	logger *slog.Logger
	out    io.Writer
	store  *qtable.QTable

	current *policy.Participant
	other   *policy.Participant
	board   *tictactoe.Board
}

// NewMatch expects both marks to be assigned already. Whoever holds X moves first.
func NewMatch(logger *slog.Logger, out io.Writer, store *qtable.QTable, a, b *policy.Participant) (*Match, error) {
	if a.Mark() == entity.Nought {
		a, b = b, a
	}

	if a.Mark() != entity.Cross || b.Mark() != entity.Nought {
		return nil, fmt.Errorf("cannot start a match: %w", apperror.ErrUnassignedMark)
	}

	return &Match{
		logger:  logger.With("component", "match"),
		out:     out,
		store:   store,
		current: a,
		other:   b,
		board:   tictactoe.NewBoard(),
	}, nil
}

// AssignMarks gives mark to first and the opposing mark to second.
func AssignMarks(first, second *policy.Participant, mark entity.Mark) {
	first.SetMark(mark)
	second.SetMark(mark.Other())
}

func (that *Match) Board() *tictactoe.Board { return that.board }

// Play runs the game to completion. A participant that exhausts its input
// attempts is asked again for the whole move.
func (that *Match) Play(ctx context.Context) (Result, error) {
	for plies := 1; ; {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("match interrupted: %w", err)
		}

		move, err := that.current.ChooseMove(that.board, that.store, false)
		if errors.Is(err, apperror.ErrRepeatedInvalidInput) {
			fmt.Fprintln(that.out, "Please, try choosing your move again.")
			continue
		}

		if err != nil {
			return Result{}, fmt.Errorf("%s failed to choose a move: %w", that.current.Name(), err)
		}

		if err = that.current.MakeMove(that.board, move); err != nil {
			return Result{}, fmt.Errorf("%s failed to make a move: %w", that.current.Name(), err)
		}

		that.logger.Debug("move", "player", that.current.Name(), "mark", that.current.Mark(), "move", move.String())

		switch outcome := that.board.Outcome(that.current.Mark()); outcome {
		case entity.InPlay:
			that.current, that.other = that.other, that.current
			that.board.Rotate()
			plies++
		case entity.Drawn:
			fmt.Fprint(that.out, that.board.Next.Render())
			fmt.Fprintln(that.out, "The game ended in a draw.")

			return Result{Outcome: outcome, Plies: plies}, nil
		case entity.Win:
			fmt.Fprint(that.out, that.board.Next.Render())
			fmt.Fprintf(that.out, "%s (%s) has won!\n", that.current.Name(), that.current.Mark())

			return Result{Outcome: outcome, Winner: that.current.Name(), Plies: plies}, nil
		}
	}
}
