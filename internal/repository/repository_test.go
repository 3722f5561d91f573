package repository

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-learner/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-learner/internal/config"
	"github.com/rocketscienceinc/tictactoe-learner/internal/entity"
	"github.com/rocketscienceinc/tictactoe-learner/internal/qtable"
)

type mockRepository struct {
	mock.Mock
}

func (that *mockRepository) Save(ctx context.Context, name string, table *qtable.QTable) error {
	args := that.Called(ctx, name, table)
	return args.Error(0)
}

func (that *mockRepository) Load(ctx context.Context, name string) (*qtable.QTable, error) {
	args := that.Called(ctx, name)

	table, _ := args.Get(0).(*qtable.QTable)

	return table, args.Error(1)
}

func sampleTable(t *testing.T, hp *config.Hyperparameters) *qtable.QTable {
	t.Helper()

	table := qtable.New(hp, rand.New(rand.NewSource(9)))

	empty := entity.NewState()
	table.Ensure(empty.Key("RLmax"), empty.AvailableMoves())

	state, err := entity.ParseState("XO-------")
	require.NoError(t, err)
	table.Set(state.Key("RLmin"), qtable.Moves{{Row: 0, Col: 2}: 0.125, {Row: 1, Col: 1}: -0.731, {Row: 2, Col: 2}: 1})

	return table
}

func TestFileRepository(t *testing.T) {
	hp := config.DefaultHyperparameters()
	rng := rand.New(rand.NewSource(1))

	t.Run("Save then Load restores the same table", func(t *testing.T) {
		// Given: a populated table and an empty archive directory
		dir := filepath.Join(t.TempDir(), "archive")
		repo := NewFileRepository(dir, &hp, rng)
		table := sampleTable(t, &hp)

		// When: it is saved and loaded back
		require.NoError(t, repo.Save(context.Background(), "qtable", table))
		loaded, err := repo.Load(context.Background(), "qtable")

		// Then: every value survives exactly and a yaml dump is written alongside
		require.NoError(t, err)
		assert.True(t, table.Equal(loaded))
		assert.FileExists(t, filepath.Join(dir, "qtable.yaml"))
	})

	t.Run("Saving again replaces the previous snapshot", func(t *testing.T) {
		dir := t.TempDir()
		repo := NewFileRepository(dir, &hp, rng)

		require.NoError(t, repo.Save(context.Background(), "qtable", sampleTable(t, &hp)))
		require.NoError(t, repo.Save(context.Background(), "qtable", qtable.New(&hp, rng)))

		loaded, err := repo.Load(context.Background(), "qtable")
		require.NoError(t, err)
		assert.Zero(t, loaded.Len())

		files, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})

	t.Run("Missing table", func(t *testing.T) {
		repo := NewFileRepository(t.TempDir(), &hp, rng)

		_, err := repo.Load(context.Background(), "qtable")

		assert.ErrorIs(t, err, ErrQTableNotFound)
	})

	t.Run("Malformed snapshot", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "qtable.json"), []byte(`{"XO":{"(0, 0)":1}}`), 0o600))
		repo := NewFileRepository(dir, &hp, rng)

		_, err := repo.Load(context.Background(), "qtable")

		assert.ErrorIs(t, err, apperror.ErrPersistence)
	})
}

func TestLoadOrEmpty(t *testing.T) {
	ctx := context.Background()
	hp := config.DefaultHyperparameters()
	rng := rand.New(rand.NewSource(1))

	t.Run("Returns the stored table", func(t *testing.T) {
		// Given: a repository holding a table
		repo := &mockRepository{}
		table := sampleTable(t, &hp)
		repo.On("Load", mock.Anything, "qtable").Return(table, nil).Once()

		// When: loading it
		loaded, err := LoadOrEmpty(ctx, repo, "qtable", false, &hp, rng)

		// Then: the very same table comes back
		require.NoError(t, err)
		assert.Same(t, table, loaded)
		repo.AssertExpectations(t)
	})

	t.Run("A missing table is empty only when allowed", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("Load", mock.Anything, "qtable").Return(nil, ErrQTableNotFound).Twice()

		loaded, err := LoadOrEmpty(ctx, repo, "qtable", true, &hp, rng)
		require.NoError(t, err)
		assert.Zero(t, loaded.Len())

		_, err = LoadOrEmpty(ctx, repo, "qtable", false, &hp, rng)
		require.ErrorIs(t, err, apperror.ErrPersistence)
		require.ErrorIs(t, err, ErrQTableNotFound)
		repo.AssertExpectations(t)
	})

	t.Run("Other failures are persistence errors", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("Load", mock.Anything, "qtable").Return(nil, context.DeadlineExceeded).Once()

		_, err := LoadOrEmpty(ctx, repo, "qtable", true, &hp, rng)

		require.ErrorIs(t, err, apperror.ErrPersistence)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
