package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-learner/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-learner/internal/config"
	"github.com/rocketscienceinc/tictactoe-learner/internal/entity"
	"github.com/rocketscienceinc/tictactoe-learner/internal/policy"
	"github.com/rocketscienceinc/tictactoe-learner/internal/qtable"
	"github.com/rocketscienceinc/tictactoe-learner/internal/tictactoe"
)

const (
	winReward  = 1
	lossReward = -1
)

type Result struct {
	Outcome entity.Outcome
	Winner  string
	Plies   int
}

// Trainer plays episodes between two participants and writes a TD update into
// the store after every ply.
type Trainer struct {
	logger *slog.Logger
	runID  string

	store    *qtable.QTable
	hp       *config.Hyperparameters
	schedule config.Schedule
	rng      *rand.Rand

	current *policy.Participant
	other   *policy.Participant
	board   *tictactoe.Board

	episode int
	draws   int
}

func NewTrainer(
	logger *slog.Logger,
	store *qtable.QTable,
	hp *config.Hyperparameters,
	schedule config.Schedule,
	a, b *policy.Participant,
	rng *rand.Rand,
) *Trainer {
	runID := uuid.NewString()

	return &Trainer{
		logger: logger.With("component", "trainer", "run", runID),
		runID:  runID,

		store:    store,
		hp:       hp,
		schedule: schedule,
		rng:      rng,

		current: a,
		other:   b,
		board:   tictactoe.NewBoard(),
	}
}

func (that *Trainer) RunID() string { return that.runID }
func (that *Trainer) Episode() int  { return that.episode }
func (that *Trainer) Draws() int    { return that.draws }

// Run plays episodes until the schedule is exhausted or ctx is done.
func (that *Trainer) Run(ctx context.Context) error {
	that.logger.Info("training started",
		"episodes", that.schedule.Episodes,
		"participants", []string{that.current.Name(), that.other.Name()})

	for that.episode < that.schedule.Episodes {
		if err := ctx.Err(); err != nil {
			that.logger.Info("training interrupted", "episode", that.episode)
			return fmt.Errorf("training interrupted: %w", err)
		}

		if that.hp.Decay(that.episode, that.schedule) {
			that.logger.Debug("hyperparameters decayed",
				"episode", that.episode, "exploration", that.hp.Exploration, "k", that.hp.K)
		}

		if that.schedule.LogEvery > 0 && that.episode%that.schedule.LogEvery == 0 {
			that.logger.Info("training progress",
				"episode", that.episode,
				"draws", that.draws,
				"exploration", that.hp.Exploration,
				"k", that.hp.K,
				"entries", that.store.Len())
		}

		if _, err := that.RunEpisode(); err != nil {
			return fmt.Errorf("episode %d failed: %w", that.episode, err)
		}
	}

	that.logger.Info("training finished",
		"episodes", that.episode, "draws", that.draws, "entries", that.store.Len())

	return nil
}

// RunEpisode plays one game to completion.
func (that *Trainer) RunEpisode() (Result, error) {
	that.board = tictactoe.NewBoard()
	if err := that.assignMarks(); err != nil {
		return Result{}, err
	}

	refined := that.episode > that.schedule.RefineAfter
	sampled := that.schedule.LogEvery > 0 && that.episode%that.schedule.LogEvery == 0

	for plies := 1; ; plies++ {
		currentKey := that.board.Current.Key(that.current.Name())
		that.store.Ensure(currentKey, that.board.Current.AvailableMoves())

		move, err := that.current.ChooseMove(that.board, that.store, refined)
		if err != nil {
			return Result{}, fmt.Errorf("%s failed to choose a move: %w", that.current.Name(), err)
		}

		if sampled {
			that.logger.Debug("ply",
				"episode", that.episode,
				"state", that.board.Current.String(),
				"player", that.current.Name(),
				"mark", that.current.Mark(),
				"move", move.String())
		}

		if err = that.current.MakeMove(that.board, move); err != nil {
			return Result{}, fmt.Errorf("%s failed to make a move: %w", that.current.Name(), err)
		}

		nextKey := that.board.Next.Key(that.other.Name())
		that.store.Ensure(nextKey, that.board.Next.AvailableMoves())

		role := that.current.Role()
		switch outcome := that.board.Outcome(that.current.Mark()); outcome {
		case entity.InPlay:
			if err = that.store.Update(currentKey, nextKey, move, role, 0, false); err != nil {
				return Result{}, err
			}

			that.current, that.other = that.other, that.current
			that.board.Rotate()
		case entity.Drawn:
			if err = that.store.Update(currentKey, nextKey, move, role, 0, true); err != nil {
				return Result{}, err
			}

			that.draws++
			that.episode++

			return Result{Outcome: outcome, Plies: plies}, nil
		case entity.Win:
			var reward float32 = lossReward
			if role == entity.Maximizer {
				reward = winReward
			}

			if err = that.store.Update(currentKey, nextKey, move, role, reward, true); err != nil {
				return Result{}, err
			}

			that.episode++

			return Result{Outcome: outcome, Winner: that.current.Name(), Plies: plies}, nil
		}
	}
}

// assignMarks deals the marks at random. Cross moves first.
func (that *Trainer) assignMarks() error {
	mark := entity.Cross
	if that.rng.Intn(2) == 0 { //nolint: gosec // it's ok
		mark = entity.Nought
	}

	that.current.SetMark(mark)
	that.other.SetMark(mark.Other())

	if that.current.Mark() == entity.Nought {
		that.current, that.other = that.other, that.current
	}

	if that.current.Mark() != entity.Cross || that.other.Mark() != entity.Nought {
		return apperror.ErrUnassignedMark
	}

	return nil
}
