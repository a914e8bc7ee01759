package readings

import (
	"context"
	"errors"

	"github.com/oshokin/greenhouse-monitor/internal/domain/greenhouse"
)

// Sink stores readings.
type Sink interface {
	Append(ctx context.Context, reading greenhouse.Reading) error
	Close() error
}

// Multi appends to every sink and reports all failures.
type Multi []Sink

// Append writes the reading to each sink even if an earlier one fails.
func (m Multi) Append(ctx context.Context, reading greenhouse.Reading) error {
	var errs []error

	for _, sink := range m {
		if err := sink.Append(ctx, reading); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Close closes every sink.
func (m Multi) Close() error {
	var errs []error

	for _, sink := range m {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
