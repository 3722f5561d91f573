package entity

import (
	"errors"
	"fmt"
)

var ErrInvalidStateKey = errors.New("invalid state key")

// StateKey identifies a value-table entry: a position together with the
// participant about to move from it.
type StateKey struct {
	State  State
	Player string
}

// String concatenates the 9-character grid with the player identity. The grid
// prefix has a fixed width, so the identity never bleeds into it.
func (that StateKey) String() string {
	return that.State.String() + that.Player
}

func ParseStateKey(s string) (StateKey, error) {
	cells := BoardSize * BoardSize
	if len(s) <= cells {
		return StateKey{}, fmt.Errorf("%w: %q has no player identity", ErrInvalidStateKey, s)
	}

	state, err := ParseState(s[:cells])
	if err != nil {
		return StateKey{}, fmt.Errorf("%w: %w", ErrInvalidStateKey, err)
	}

	return StateKey{State: state, Player: s[cells:]}, nil
}
