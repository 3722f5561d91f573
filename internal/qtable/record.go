package qtable

import (
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-learner/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-learner/internal/config"
	"github.com/rocketscienceinc/tictactoe-learner/internal/entity"
)

// MovesRecord is the persisted form of a moves table: "(r, c)" -> value.
type MovesRecord map[string]float32

// Record is the persisted form of a q-table: state key -> moves record.
type Record map[string]MovesRecord

func (that Moves) Record() MovesRecord {
	record := make(MovesRecord, len(that))
	for move, value := range that {
		record[move.String()] = value
	}

	return record
}

func ParseMovesRecord(record MovesRecord) (Moves, error) {
	moves := make(Moves, len(record))
	for coord, value := range record {
		move, err := entity.ParseMove(coord)
		if err != nil {
			return nil, err
		}
		moves[move] = value
	}

	return moves, nil
}

func (that *QTable) Record() Record {
	that.mu.RLock()
	defer that.mu.RUnlock()

	record := make(Record, len(that.entries))
	for key, moves := range that.entries {
		record[key.String()] = moves.Record()
	}

	return record
}

// FromRecord rebuilds a q-table from its persisted form.
func FromRecord(record Record, hp *config.Hyperparameters, rng *rand.Rand) (*QTable, error) {
	table := New(hp, rng)
	for rawKey, rawMoves := range record {
		key, err := entity.ParseStateKey(rawKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperror.ErrPersistence, err)
		}

		moves, err := ParseMovesRecord(rawMoves)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %w", apperror.ErrPersistence, rawKey, err)
		}

		table.entries[key] = moves
	}

	return table, nil
}
