package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-learner/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-learner/internal/config"
	"github.com/rocketscienceinc/tictactoe-learner/internal/qtable"
)

var ErrQTableNotFound = errors.New("q-table not found")

type QTableRepository interface {
	Save(ctx context.Context, name string, table *qtable.QTable) error
	Load(ctx context.Context, name string) (*qtable.QTable, error)
}

// LoadOrEmpty loads name from repo. A missing table yields a fresh store only
// when allowEmpty is set; every other failure is a persistence error.
func LoadOrEmpty(
	ctx context.Context,
	repo QTableRepository,
	name string,
	allowEmpty bool,
	hp *config.Hyperparameters,
	rng *rand.Rand,
) (*qtable.QTable, error) {
	table, err := repo.Load(ctx, name)

	switch {
	case err == nil:
		return table, nil
	case errors.Is(err, ErrQTableNotFound) && allowEmpty:
		return qtable.New(hp, rng), nil
	case errors.Is(err, apperror.ErrPersistence):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %w", apperror.ErrPersistence, err)
	}
}
