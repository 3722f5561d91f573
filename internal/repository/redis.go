package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-learner/internal/config"
	"github.com/rocketscienceinc/tictactoe-learner/internal/qtable"
)

// Meta describes the last snapshot saved under a name.
type Meta struct {
	Snapshot string
	Entries  int
	SavedAt  time.Time
}

type RedisRepository struct {
	client *redis.Client
	hp     *config.Hyperparameters
	rng    *rand.Rand
}

// NewRedisRepository keeps every table as the hash qtable:<name>, one field
// per state key holding the JSON of its moves.
func NewRedisRepository(client *redis.Client, hp *config.Hyperparameters, rng *rand.Rand) *RedisRepository {
	return &RedisRepository{
		client: client,
		hp:     hp,
		rng:    rng,
	}
}

func tableKey(name string) string { return "qtable:" + name }
func metaKey(name string) string  { return "qtable:" + name + ":meta" }

func (that *RedisRepository) Save(ctx context.Context, name string, table *qtable.QTable) error {
	record := table.Record()

	fields := make(map[string]interface{}, len(record))
	for key, moves := range record {
		movesJSON, err := json.Marshal(moves)
		if err != nil {
			return fmt.Errorf("could not marshal moves of %s: %w", key, err)
		}
		fields[key] = movesJSON
	}

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, tableKey(name))
		if len(fields) > 0 {
			pipe.HSet(ctx, tableKey(name), fields)
		}
		pipe.HSet(ctx, metaKey(name), map[string]interface{}{
			"snapshot": uuid.NewString(),
			"entries":  len(record),
			"saved_at": time.Now().UTC().Format(time.RFC3339),
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save q-table: %w", err)
	}

	return nil
}

func (that *RedisRepository) Load(ctx context.Context, name string) (*qtable.QTable, error) {
	response, err := that.client.HGetAll(ctx, tableKey(name)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get q-table: %w", err)
	}

	if len(response) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrQTableNotFound, name)
	}

	record := make(qtable.Record, len(response))
	for key, movesJSON := range response {
		var moves qtable.MovesRecord
		if err = json.Unmarshal([]byte(movesJSON), &moves); err != nil {
			return nil, fmt.Errorf("failed to unmarshal moves of %s: %w", key, err)
		}
		record[key] = moves
	}

	return qtable.FromRecord(record, that.hp, that.rng)
}

func (that *RedisRepository) Meta(ctx context.Context, name string) (Meta, error) {
	response, err := that.client.HGetAll(ctx, metaKey(name)).Result()
	if err != nil {
		return Meta{}, fmt.Errorf("failed to get q-table meta: %w", err)
	}

	if len(response) == 0 {
		return Meta{}, fmt.Errorf("%w: %s", ErrQTableNotFound, name)
	}

	entries, err := strconv.Atoi(response["entries"])
	if err != nil {
		return Meta{}, fmt.Errorf("malformed entry count: %w", err)
	}

	savedAt, err := time.Parse(time.RFC3339, response["saved_at"])
	if err != nil {
		return Meta{}, fmt.Errorf("malformed save time: %w", err)
	}

	return Meta{Snapshot: response["snapshot"], Entries: entries, SavedAt: savedAt}, nil
}
