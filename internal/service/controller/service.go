package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/greenhouse-monitor/internal/api/grpc/monitor"
	"github.com/oshokin/greenhouse-monitor/internal/display"
	"github.com/oshokin/greenhouse-monitor/internal/domain/alarm"
	"github.com/oshokin/greenhouse-monitor/internal/domain/greenhouse"
	"github.com/oshokin/greenhouse-monitor/internal/logger"
	"github.com/oshokin/greenhouse-monitor/internal/metrics"
	"github.com/oshokin/greenhouse-monitor/internal/notify"
	"github.com/oshokin/greenhouse-monitor/internal/repository/readings"
	"github.com/oshokin/greenhouse-monitor/internal/repository/setpoints"
	"github.com/oshokin/greenhouse-monitor/internal/sensor"
)

// AlarmMirror keeps an external copy of the active alarms.
type AlarmMirror interface {
	Sync(ctx context.Context, records []alarm.Record) error
	Load(ctx context.Context) ([]alarm.Record, error)
	Close() error
}

// dependencies are the collaborators of one control loop.
type dependencies struct {
	unit   string
	limits alarm.Limits
	// timeout bounds each storage and publish call; zero leaves them unbounded.
	timeout   time.Duration
	source    sensor.Source
	setpoints setpoints.Repository
	sink      readings.Sink
	publisher notify.Publisher
	// mirror is optional.
	mirror  AlarmMirror
	metrics *metrics.Metrics
	// console is optional.
	console *display.Console
}

// service owns the alarm registry and the latest cycle state.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	deps dependencies
	// target holds the setpoints loaded at startup.
	target greenhouse.Setpoints

	// mu guards registry, last and ready. The registry itself is not safe
	// for concurrent use and status requests arrive between sweeps.
	mu       sync.RWMutex
	registry *alarm.Registry
	last     monitor.Snapshot
	ready    bool
}

// errReadingFailed wraps sensor failures so the loop can tell them apart.
var errReadingFailed = errors.New("reading failed")

// newService loads the setpoints and restores mirrored alarms.
func newService(ctx context.Context, deps dependencies) (*service, error) {
	target, err := setpoints.LoadOrInit(ctx, deps.setpoints)
	if err != nil {
		return nil, fmt.Errorf("load setpoints: %w", err)
	}

	s := &service{
		deps:     deps,
		target:   target,
		registry: new(alarm.Registry),
	}

	if deps.mirror == nil {
		return s, nil
	}

	records, err := deps.mirror.Load(ctx)
	if err != nil {
		logger.Warn(ctx, "Unable to restore mirrored alarms, starting empty: ", err)

		return s, nil
	}

	registry, err := alarm.NewRegistry(records...)
	if err != nil {
		logger.Warn(ctx, "Ignoring invalid mirrored alarms: ", err)

		return s, nil
	}

	if !registry.Empty() {
		logger.InfoKV(ctx, "Restored mirrored alarms", "count", registry.Len())
	}

	s.registry = registry

	return s, nil
}

// cycle runs one acquire, control, evaluate and publish step.
// The registry is updated before any external call so that a slow sink
// or broker cannot hold back the alarm state.
func (s *service) cycle(ctx context.Context) error {
	reading, err := s.deps.source.Read(ctx)
	if err != nil {
		s.deps.metrics.ObserveCycle(err)

		return fmt.Errorf("%w: %w", errReadingFailed, err)
	}

	controls := greenhouse.DecideControls(s.target, reading)

	s.mu.Lock()
	transitions, evalErr := alarm.Evaluate(s.registry, reading, s.deps.limits)
	records := s.registry.Records()
	s.last = monitor.Snapshot{
		Unit:     s.deps.unit,
		Reading:  reading,
		Target:   s.target,
		Controls: controls,
		Alarms:   records,
	}
	s.ready = true
	s.mu.Unlock()

	if evalErr != nil {
		logger.Errorf(ctx, "Alarm sweep incomplete: %v", evalErr)
	}

	s.deps.metrics.ObserveReading(reading, s.target, controls)
	s.deps.metrics.ObserveAlarms(records, transitions)
	s.deps.metrics.ObserveCycle(evalErr)

	if err = s.bounded(ctx, func(ctx context.Context) error {
		return s.deps.sink.Append(ctx, reading)
	}); err != nil {
		logger.Errorf(ctx, "Failed to store reading: %v", err)
	}

	events := notify.NewEvents(s.deps.unit, s.deps.limits, transitions)
	if err = s.bounded(ctx, func(ctx context.Context) error {
		return s.deps.publisher.Publish(ctx, events)
	}); err != nil {
		logger.Errorf(ctx, "Failed to publish alarm events: %v", err)
	}

	if s.deps.mirror != nil {
		if err = s.bounded(ctx, func(ctx context.Context) error {
			return s.deps.mirror.Sync(ctx, records)
		}); err != nil {
			logger.Errorf(ctx, "Failed to mirror alarms: %v", err)
		}
	}

	logger.DebugKV(ctx, "Cycle complete",
		"reading", reading.String(),
		"controls", controls.String(),
		"active_alarms", len(records),
		"transitions", len(transitions),
	)

	if s.deps.console != nil {
		s.present(ctx, reading, controls)
	}

	return evalErr
}

// bounded runs call under the configured timeout.
func (s *service) bounded(ctx context.Context, call func(context.Context) error) error {
	if s.deps.timeout <= 0 {
		return call(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, s.deps.timeout)
	defer cancel()

	return call(ctx)
}

// present prints the cycle while holding the read lock, since the console
// ranges over the live registry.
func (s *service) present(ctx context.Context, reading greenhouse.Reading, controls greenhouse.Controls) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err := s.deps.console.Frame(display.Frame{
		Unit:     s.deps.unit,
		Reading:  reading,
		Target:   s.target,
		Controls: controls,
		Alarms:   s.registry.Render(),
	})
	if err != nil {
		logger.Errorf(ctx, "Failed to print cycle: %v", err)
	}
}

// Alarms returns the active records in the order they were set.
func (s *service) Alarms(_ context.Context) []alarm.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.registry.Records()
}

// Snapshot returns the latest cycle state.
func (s *service) Snapshot(_ context.Context) (monitor.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.last, s.ready
}
