package repository

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-learner/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-learner/internal/config"
	"github.com/rocketscienceinc/tictactoe-learner/internal/entity"
	"github.com/rocketscienceinc/tictactoe-learner/internal/qtable"
	"github.com/rocketscienceinc/tictactoe-learner/testing/suite"
)

func TestRedisRepository_Save(t *testing.T) {
	ctx, st := suite.New(t)
	hp := config.DefaultHyperparameters()
	repo := NewRedisRepository(st.Storage, &hp, rand.New(rand.NewSource(1)))

	// Given: a populated table
	table := sampleTable(t, &hp)

	// When: Save is called
	err := repo.Save(ctx, "qtable", table)

	// Then: one hash field per state key is stored along with the meta
	require.NoError(t, err)

	fields, err := st.Storage.HLen(ctx, "qtable:qtable").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), fields)

	meta, err := repo.Meta(ctx, "qtable")
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Entries)
	assert.NotEmpty(t, meta.Snapshot)
	assert.WithinDuration(t, time.Now(), meta.SavedAt, time.Minute)
}

func TestRedisRepository_Load(t *testing.T) {
	t.Run("Load_Success", func(t *testing.T) {
		ctx, st := suite.New(t)
		hp := config.DefaultHyperparameters()
		repo := NewRedisRepository(st.Storage, &hp, rand.New(rand.NewSource(1)))

		// Given: a saved table
		table := sampleTable(t, &hp)
		require.NoError(t, repo.Save(ctx, "qtable", table))

		// When: Load is called
		loaded, err := repo.Load(ctx, "qtable")

		// Then: the loaded table matches the saved one
		require.NoError(t, err)
		assert.True(t, table.Equal(loaded))
	})

	t.Run("Load_Overwritten", func(t *testing.T) {
		ctx, st := suite.New(t)
		hp := config.DefaultHyperparameters()
		repo := NewRedisRepository(st.Storage, &hp, rand.New(rand.NewSource(1)))

		require.NoError(t, repo.Save(ctx, "qtable", sampleTable(t, &hp)))

		// Given: a smaller table saved over a bigger one
		smaller := qtable.New(&hp, rand.New(rand.NewSource(2)))
		empty := entity.NewState()
		smaller.Ensure(empty.Key("RLmin"), empty.AvailableMoves())
		require.NoError(t, repo.Save(ctx, "qtable", smaller))

		// When: Load is called
		loaded, err := repo.Load(ctx, "qtable")

		// Then: no stale entries survive
		require.NoError(t, err)
		assert.True(t, smaller.Equal(loaded))
		assert.Equal(t, 1, loaded.Len())
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)
		hp := config.DefaultHyperparameters()
		repo := NewRedisRepository(st.Storage, &hp, rand.New(rand.NewSource(1)))

		_, err := repo.Load(ctx, "missing")

		require.ErrorIs(t, err, ErrQTableNotFound)
	})

	t.Run("Load_Malformed", func(t *testing.T) {
		ctx, st := suite.New(t)
		hp := config.DefaultHyperparameters()
		repo := NewRedisRepository(st.Storage, &hp, rand.New(rand.NewSource(1)))

		require.NoError(t, st.Storage.HSet(ctx, "qtable:qtable", "---------RLmax", `{"(9, 9)":1}`).Err())

		_, err := repo.Load(ctx, "qtable")

		require.ErrorIs(t, err, apperror.ErrPersistence)
	})
}
