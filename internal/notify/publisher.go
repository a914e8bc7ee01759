package notify

import (
	"context"
	"errors"

	"github.com/oshokin/greenhouse-monitor/internal/logger"
)

// Publisher delivers alarm events.
type Publisher interface {
	Publish(ctx context.Context, events []Event) error
	Close() error
}

// LogPublisher writes events to the context logger.
type LogPublisher struct{}

// Publish logs each event at warning level when triggered, info when cleared.
func (LogPublisher) Publish(ctx context.Context, events []Event) error {
	for _, e := range events {
		kvs := []any{
			"condition", e.Condition,
			"value", e.Value,
			"threshold", e.Threshold,
			"at", e.At,
			"event_id", e.ID,
		}

		if e.Type == TypeTriggered {
			logger.WarnKV(ctx, "Alarm triggered: "+e.Name, kvs...)
			continue
		}

		logger.InfoKV(ctx, "Alarm cleared: "+e.Name, kvs...)
	}

	return nil
}

// Close is a no-op.
func (LogPublisher) Close() error {
	return nil
}

// Multi publishes to every publisher and reports all failures.
type Multi []Publisher

// Publish sends events to each publisher even if an earlier one fails.
func (m Multi) Publish(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	var errs []error

	for _, p := range m {
		if err := p.Publish(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Close closes every publisher.
func (m Multi) Close() error {
	var errs []error

	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
