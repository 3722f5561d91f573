package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-learner/internal/config"
	"github.com/rocketscienceinc/tictactoe-learner/internal/entity"
	"github.com/rocketscienceinc/tictactoe-learner/internal/policy"
	"github.com/rocketscienceinc/tictactoe-learner/internal/qtable"
	"golang.org/x/sync/errgroup"
)

// Tally counts results from the learner's point of view.
type Tally struct {
	Wins   int `json:"wins"`
	Draws  int `json:"draws"`
	Losses int `json:"losses"`
}

func (that Tally) Games() int { return that.Wins + that.Draws + that.Losses }

func (that *Tally) add(other Tally) {
	that.Wins += other.Wins
	that.Draws += other.Draws
	that.Losses += other.Losses
}

// Arena pits the greedy learner against the minimax solver. The store is only
// read; each worker owns its participants, solver cache and generator.
type Arena struct {
	logger  *slog.Logger
	store   *qtable.QTable
	workers int
	seed    int64
}

func NewArena(logger *slog.Logger, store *qtable.QTable, workers int, seed int64) *Arena {
	if workers < 1 {
		workers = 1
	}

	return &Arena{
		logger:  logger.With("component", "arena"),
		store:   store,
		workers: workers,
		seed:    seed,
	}
}

func (that *Arena) Evaluate(ctx context.Context, games int) (Tally, error) {
	tallies := make([]Tally, that.workers)
	group, ctx := errgroup.WithContext(ctx)

	for worker := 0; worker < that.workers; worker++ {
		worker := worker
		share := games / that.workers
		if worker < games%that.workers {
			share++
		}

		group.Go(func() error {
			tally, err := that.play(ctx, worker, share)
			tallies[worker] = tally

			return err
		})
	}

	if err := group.Wait(); err != nil {
		return Tally{}, fmt.Errorf("evaluation failed: %w", err)
	}

	var total Tally
	for _, tally := range tallies {
		total.add(tally)
	}

	that.logger.Info("evaluation finished",
		"games", total.Games(), "wins", total.Wins, "draws", total.Draws, "losses", total.Losses)

	return total, nil
}

func (that *Arena) play(ctx context.Context, worker, games int) (Tally, error) {
	rng := rand.New(rand.NewSource(that.seed + int64(worker))) //nolint: gosec // it's ok

	hp := config.DefaultHyperparameters()
	hp.Exploration = 0

	learner := policy.NewLearner(policy.LearnerMax, entity.Maximizer, &hp, rng)
	solver := policy.NewSolver(policy.SolverID, entity.Minimizer, qtable.New(&hp, rng))

	var tally Tally
	for game := 0; game < games; game++ {
		mark := entity.Cross
		if rng.Intn(2) == 0 { //nolint: gosec // it's ok
			mark = entity.Nought
		}
		AssignMarks(learner, solver, mark)

		match, err := NewMatch(that.logger, io.Discard, that.store, learner, solver)
		if err != nil {
			return tally, err
		}

		result, err := match.Play(ctx)
		if err != nil {
			return tally, err
		}

		switch {
		case result.Outcome == entity.Drawn:
			tally.Draws++
		case result.Winner == learner.Name():
			tally.Wins++
		default:
			tally.Losses++
		}
	}

	return tally, nil
}
