package entity

import "fmt"

// Role is the fixed optimisation direction of a participant over the shared value scale.
type Role int

const (
	Maximizer Role = iota
	Minimizer
)

func (that Role) String() string {
	switch that {
	case Maximizer:
		return "max"
	case Minimizer:
		return "min"
	default:
		return fmt.Sprintf("role(%d)", int(that))
	}
}

type Player struct {
	ID   string `json:"id"`
	Mark Mark   `json:"mark,omitempty"`
	Role Role   `json:"role"`
}
