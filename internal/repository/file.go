package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rocketscienceinc/tictactoe-learner/internal/config"
	"github.com/rocketscienceinc/tictactoe-learner/internal/qtable"
)

const filePerm = 0o750

type fileRepository struct {
	dir string
	hp  *config.Hyperparameters
	rng *rand.Rand
}

// NewFileRepository keeps every table as <dir>/<name>.json, next to a
// <dir>/<name>.yaml dump meant for people.
func NewFileRepository(dir string, hp *config.Hyperparameters, rng *rand.Rand) QTableRepository {
	return &fileRepository{
		dir: dir,
		hp:  hp,
		rng: rng,
	}
}

func (that *fileRepository) Save(_ context.Context, name string, table *qtable.QTable) error {
	if err := os.MkdirAll(that.dir, filePerm); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	record := table.Record()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal q-table: %w", err)
	}

	if err = that.writeAtomically(name+".json", data); err != nil {
		return err
	}

	dump, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal q-table dump: %w", err)
	}

	return that.writeAtomically(name+".yaml", dump)
}

func (that *fileRepository) Load(_ context.Context, name string) (*qtable.QTable, error) {
	data, err := os.ReadFile(filepath.Join(that.dir, name+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrQTableNotFound, name)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read q-table: %w", err)
	}

	var record qtable.Record
	if err = json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal q-table: %w", err)
	}

	return qtable.FromRecord(record, that.hp, that.rng)
}

// writeAtomically replaces file only once data is fully on disk.
func (that *fileRepository) writeAtomically(file string, data []byte) error {
	tmp, err := os.CreateTemp(that.dir, file+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint: errcheck // gone after a successful rename

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", file, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", file, err)
	}

	if err = os.Rename(tmp.Name(), filepath.Join(that.dir, file)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", file, err)
	}

	return nil
}
