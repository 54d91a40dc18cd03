package pages

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoStrategySucceeded is returned by TryInOrder when every strategy failed.
var ErrNoStrategySucceeded = errors.New("no strategy succeeded")

// Strategy is one named way of getting something done in the UI, e.g.
// "click the search button" or "press Enter in the search box".
type Strategy struct {
	Name string
	Try  func() error
}

// Outcome records which strategy won and what the earlier ones reported.
type Outcome struct {
	Strategy string
	Index    int
	Failures []error
}

// Fallback reports whether anything other than the preferred strategy won.
func (o Outcome) Fallback() bool {
	return o.Index > 0
}

func (o Outcome) String() string {
	if o.Strategy == "" {
		return "none"
	}
	if len(o.Failures) == 0 {
		return o.Strategy
	}
	return fmt.Sprintf("%s (after %d failed)", o.Strategy, len(o.Failures))
}

// TryInOrder runs strategies until one returns nil. When all of them fail the
// error wraps ErrNoStrategySucceeded together with each attempt's error.
func TryInOrder(strategies ...Strategy) (Outcome, error) {
	var out Outcome
	for i, s := range strategies {
		err := s.Try()
		if err == nil {
			out.Strategy = s.Name
			out.Index = i
			return out, nil
		}
		out.Failures = append(out.Failures, fmt.Errorf("%s: %w", s.Name, err))
	}

	out.Index = -1
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.Name
	}
	return out, fmt.Errorf("%w [%s]: %w", ErrNoStrategySucceeded, strings.Join(names, ", "), errors.Join(out.Failures...))
}
