package alarm

import (
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/greenhouse-monitor/internal/domain/greenhouse"
)

// TransitionKind tells whether a sweep raised or cleared a condition.
type TransitionKind int

// Transition kinds.
const (
	Triggered TransitionKind = iota + 1
	Cleared
)

// String implements fmt.Stringer.
func (k TransitionKind) String() string {
	switch k {
	case Triggered:
		return "triggered"
	case Cleared:
		return "cleared"
	default:
		return fmt.Sprintf("TransitionKind(%d)", int(k))
	}
}

// Transition is a change of one condition during a sweep.
type Transition struct {
	Kind      TransitionKind
	Condition Condition
	// At is the reading timestamp of the sweep that caused the change.
	At time.Time
	// Value is the measurement at the time of the change.
	Value float64
}

// Evaluate sweeps all six conditions against the reading and sets or clears
// each in the registry. The returned transitions list the conditions newly
// raised or cleared by this sweep, in condition order.
//
// In practice the only error is ErrNilRegistry. The sweep covers concrete
// conditions only, so Set cannot reject one; should that change, every
// condition is still checked and the failures are returned joined.
func Evaluate(r *Registry, reading greenhouse.Reading, limits Limits) ([]Transition, error) {
	if r == nil {
		return nil, ErrNilRegistry
	}

	var (
		transitions []Transition
		errs        []error
	)

	for _, c := range Conditions() {
		value, _ := Measure(c, reading)

		if !limits.Breached(c, value) {
			if r.Clear(c) {
				transitions = append(transitions, Transition{
					Kind:      Cleared,
					Condition: c,
					At:        reading.Timestamp,
					Value:     value,
				})
			}

			continue
		}

		inserted, err := r.Set(c, reading.Timestamp, value)
		if err != nil {
			errs = append(errs, fmt.Errorf("evaluate %s: %w", c.Code(), err))
			continue
		}

		if inserted {
			transitions = append(transitions, Transition{
				Kind:      Triggered,
				Condition: c,
				At:        reading.Timestamp,
				Value:     value,
			})
		}
	}

	return transitions, errors.Join(errs...)
}
