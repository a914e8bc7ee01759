package alarm

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"
)

var (
	// ErrInvalidCondition is returned for codes outside the six concrete conditions.
	ErrInvalidCondition = errors.New("invalid alarm condition")
	// ErrNilRegistry is returned when a mutation is attempted on a nil registry.
	ErrNilRegistry = errors.New("alarm registry is not set")
)

// Record is one active alarm.
type Record struct {
	// Condition is the alarm kind, never NoAlarm.
	Condition Condition
	// TriggeredAt is when the condition was first seen breached.
	TriggeredAt time.Time
	// Value is the measurement that tripped the condition.
	Value float64
}

// Registry is the set of active alarms, keyed by condition.
// The zero value is an empty registry ready for use.
type Registry struct {
	// slots holds the record for each concrete condition, indexed by code-1.
	slots [conditionCount]Record
	// active marks which slots hold a record.
	active [conditionCount]bool
	// order lists active conditions in the order they were set.
	order []Condition
}

// NewRegistry returns a registry seeded with the provided records.
// Later duplicates of a condition are ignored.
func NewRegistry(initial ...Record) (*Registry, error) {
	r := new(Registry)

	for _, rec := range initial {
		if _, err := r.Set(rec.Condition, rec.TriggeredAt, rec.Value); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Set records condition c as active. If c is already active the call changes
// nothing and reports false; the first trigger time and value are kept.
// A failed call leaves the registry untouched.
func (r *Registry) Set(c Condition, triggeredAt time.Time, value float64) (bool, error) {
	idx, ok := c.slot()
	if !ok {
		return false, fmt.Errorf("set %d: %w", int(c), ErrInvalidCondition)
	}

	if r == nil {
		return false, ErrNilRegistry
	}

	if r.active[idx] {
		return false, nil
	}

	r.slots[idx] = Record{
		Condition:   c,
		TriggeredAt: triggeredAt,
		Value:       value,
	}
	r.active[idx] = true
	r.order = append(r.order, c)

	return true, nil
}

// Clear removes condition c and reports whether it was active.
// Clearing an absent condition, NoAlarm, or a nil registry is a no-op.
func (r *Registry) Clear(c Condition) bool {
	idx, ok := c.slot()
	if !ok || r == nil || !r.active[idx] {
		return false
	}

	r.slots[idx] = Record{}
	r.active[idx] = false
	r.order = slices.DeleteFunc(r.order, func(active Condition) bool {
		return active == c
	})

	return true
}

// IsActive reports whether condition c is currently active.
func (r *Registry) IsActive(c Condition) bool {
	idx, ok := c.slot()
	if !ok || r == nil {
		return false
	}

	return r.active[idx]
}

// Get returns the record for condition c if it is active.
func (r *Registry) Get(c Condition) (Record, bool) {
	if !r.IsActive(c) {
		return Record{}, false
	}

	idx, _ := c.slot()

	return r.slots[idx], true
}

// Len returns the number of active alarms.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}

	return len(r.order)
}

// Empty reports whether no alarm is active.
func (r *Registry) Empty() bool {
	return r.Len() == 0
}

// Records returns a copy of the active records in the order they were set.
func (r *Registry) Records() []Record {
	if r.Empty() {
		return nil
	}

	result := make([]Record, 0, len(r.order))
	for rec := range r.all() {
		result = append(result, rec)
	}

	return result
}

// Render yields the display name and trigger time of every active alarm in
// the order they were set. The sequence is empty when nothing is active and
// may be ranged over again to observe later changes.
func (r *Registry) Render() iter.Seq2[string, time.Time] {
	return func(yield func(string, time.Time) bool) {
		for rec := range r.all() {
			if !yield(rec.Condition.Name(), rec.TriggeredAt) {
				return
			}
		}
	}
}

// all iterates active records over a snapshot of the order index, so a
// consumer that mutates the registry mid-range cannot loop forever.
func (r *Registry) all() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		if r == nil {
			return
		}

		for _, c := range slices.Clone(r.order) {
			rec, ok := r.Get(c)
			if !ok {
				continue
			}

			if !yield(rec) {
				return
			}
		}
	}
}
