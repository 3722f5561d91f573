package usecase

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-learner/internal/config"
	"github.com/rocketscienceinc/tictactoe-learner/internal/qtable"
)

func TestArena_Evaluate(t *testing.T) {
	t.Run("Every game is counted exactly once", func(t *testing.T) {
		// Given: an untrained store and three workers
		hp := config.DefaultHyperparameters()
		store := qtable.New(&hp, rand.New(rand.NewSource(5)))
		arena := NewArena(discardLogger(), store, 3, 11)

		// When: evaluating an uneven number of games
		tally, err := arena.Evaluate(context.Background(), 20)

		// Then: the tallies add up and the solver never loses
		require.NoError(t, err)
		assert.Equal(t, 20, tally.Games())
		assert.Zero(t, tally.Wins)
		assert.Zero(t, store.Len())
	})

	t.Run("A cancelled context fails the evaluation", func(t *testing.T) {
		hp := config.DefaultHyperparameters()
		arena := NewArena(discardLogger(), qtable.New(&hp, rand.New(rand.NewSource(5))), 2, 1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := arena.Evaluate(ctx, 4)

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Workers are clamped to at least one", func(t *testing.T) {
		hp := config.DefaultHyperparameters()
		arena := NewArena(discardLogger(), qtable.New(&hp, rand.New(rand.NewSource(5))), 0, 1)

		tally, err := arena.Evaluate(context.Background(), 2)

		require.NoError(t, err)
		assert.Equal(t, 2, tally.Games())
	})
}
