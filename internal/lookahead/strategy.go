package lookahead

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStrategy is returned for strategy names ParseStrategy does not know.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategy decides how the costs of a guess's possible outcomes are combined.
type Strategy uint8

const (
	// Aggressive minimizes the expected number of guesses.
	Aggressive Strategy = iota + 1
	// Safe minimizes the worst case.
	Safe
	// Balanced blends the expected and worst-case costs.
	Balanced
)

// Balanced weights: 0.6 of the expected cost plus 0.4 of the worst case.
const (
	balancedAverageWeight = 0.6
	balancedWorstWeight   = 0.4
)

// Strategies lists every strategy in a stable order.
var Strategies = []Strategy{Aggressive, Safe, Balanced}

// ParseStrategy accepts a strategy name in any case.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "aggressive":
		return Aggressive, nil
	case "safe":
		return Safe, nil
	case "balanced":
		return Balanced, nil
	}
	return 0, fmt.Errorf("%w: %q (want aggressive, safe or balanced)", ErrUnknownStrategy, s)
}

func (s Strategy) String() string {
	switch s {
	case Aggressive:
		return "aggressive"
	case Safe:
		return "safe"
	case Balanced:
		return "balanced"
	}
	return fmt.Sprintf("strategy(%d)", uint8(s))
}

// Description is a one-line explanation for help text.
func (s Strategy) Description() string {
	switch s {
	case Aggressive:
		return "Minimize average guess count (risk worst-case)"
	case Safe:
		return "Minimize worst-case scenarios (conservative)"
	case Balanced:
		return "Balance average and worst-case (recommended)"
	}
	return ""
}

// Valid reports whether s is one of the defined strategies.
func (s Strategy) Valid() bool { return s >= Aggressive && s <= Balanced }

func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(b []byte) error {
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// outcome is one possible result of a guess: its probability and the total
// guesses it costs.
type outcome struct {
	p    float64
	cost float64
}

// aggregate folds outcome costs into one number.
func (s Strategy) aggregate(outs []outcome) float64 {
	if len(outs) == 0 {
		return 0
	}
	avg, worst := 0.0, outs[0].cost
	for _, o := range outs {
		avg += o.p * o.cost
		if o.cost > worst {
			worst = o.cost
		}
	}
	switch s {
	case Aggressive:
		return avg
	case Safe:
		return worst
	default:
		return balancedAverageWeight*avg + balancedWorstWeight*worst
	}
}
