package qtable

import (
	"fmt"
	"maps"
	"math/rand"
	"sync"

	"github.com/rocketscienceinc/tictactoe-learner/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-learner/internal/config"
	"github.com/rocketscienceinc/tictactoe-learner/internal/entity"
)

const initialCapacity = 11000

// QTable maps a state key to the values of the moves available from it. A key
// is present iff its (state, participant) pair has been visited.
//
// Training uses a single writer. Readers may run concurrently with each other.
type QTable struct {
	mu      sync.RWMutex
	entries map[entity.StateKey]Moves

	hp  *config.Hyperparameters
	rng *rand.Rand
}

func New(hp *config.Hyperparameters, rng *rand.Rand) *QTable {
	return &QTable{
		entries: make(map[entity.StateKey]Moves, initialCapacity),
		hp:      hp,
		rng:     rng,
	}
}

// Ensure seeds key with jittered values for candidates if it is absent.
func (that *QTable) Ensure(key entity.StateKey, candidates []entity.Move) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.entries[key]; !ok {
		that.entries[key] = NewMoves(candidates, that.rng)
	}
}

// EnsureSentinel seeds key with sentinel values for candidates if it is absent.
func (that *QTable) EnsureSentinel(key entity.StateKey, candidates []entity.Move) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.entries[key]; !ok {
		that.entries[key] = NewSentinelMoves(candidates)
	}
}

// Update applies one temporal-difference step to current[move]. The target of
// a non-terminal step looks one ply ahead through the opponent's lens: a
// minimizing mover is judged by the maximum of the next table, a maximizing
// mover by its minimum.
func (that *QTable) Update(current, next entity.StateKey, move entity.Move, role entity.Role, reward float32, terminal bool) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	moves, ok := that.entries[current]
	if !ok {
		return fmt.Errorf("%w: current %s", apperror.ErrMissingEntry, current)
	}

	old, ok := moves[move]
	if !ok {
		return fmt.Errorf("%w: move %s not in %s", apperror.ErrInvalidMove, move, current)
	}

	nextMoves, ok := that.entries[next]
	if !ok {
		return fmt.Errorf("%w: next %s", apperror.ErrMissingEntry, next)
	}

	target := reward
	if !terminal {
		if len(nextMoves) == 0 {
			return fmt.Errorf("%w: non-terminal update towards %s", apperror.ErrNoAvailableMoves, next)
		}

		if role == entity.Minimizer {
			target = that.hp.Discount * nextMoves.Max()
		} else {
			target = that.hp.Discount * nextMoves.Min()
		}
	}

	moves[move] = (1-that.hp.Learning)*old + that.hp.Learning*target

	return nil
}

func (that *QTable) SelectMax(key entity.StateKey) (entity.Move, error) {
	return that.selectMove(key, Moves.SelectMax)
}

func (that *QTable) SelectMin(key entity.StateKey) (entity.Move, error) {
	return that.selectMove(key, Moves.SelectMin)
}

func (that *QTable) selectMove(key entity.StateKey, pick func(Moves, *rand.Rand) (entity.Move, bool)) (entity.Move, error) {
	// the generator is shared, so selection takes the write lock
	that.mu.Lock()
	defer that.mu.Unlock()

	moves, ok := that.entries[key]
	if !ok {
		return entity.Move{}, fmt.Errorf("%w: %s", apperror.ErrMissingEntry, key)
	}

	move, ok := pick(moves, that.rng)
	if !ok {
		return entity.Move{}, fmt.Errorf("%w: %s", apperror.ErrNoAvailableMoves, key)
	}

	return move, nil
}

// Get returns a copy of the moves stored under key.
func (that *QTable) Get(key entity.StateKey) (Moves, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	moves, ok := that.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrMissingEntry, key)
	}

	return moves.Clone(), nil
}

// Set replaces the moves stored under key.
func (that *QTable) Set(key entity.StateKey, moves Moves) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.entries[key] = moves.Clone()
}

func (that *QTable) Contains(key entity.StateKey) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	_, ok := that.entries[key]

	return ok
}

func (that *QTable) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.entries)
}

// Snapshot returns a deep copy of every entry.
func (that *QTable) Snapshot() map[entity.StateKey]Moves {
	that.mu.RLock()
	defer that.mu.RUnlock()

	snapshot := make(map[entity.StateKey]Moves, len(that.entries))
	for key, moves := range that.entries {
		snapshot[key] = moves.Clone()
	}

	return snapshot
}

// Equal reports whether both tables hold the same keys with identical values.
func (that *QTable) Equal(other *QTable) bool {
	if that == other {
		return true
	}

	that.mu.RLock()
	defer that.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()

	return maps.EqualFunc(that.entries, other.entries, func(a, b Moves) bool {
		return maps.Equal(a, b)
	})
}
