package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/greenhouse-monitor/internal/domain/alarm"
	"github.com/oshokin/greenhouse-monitor/internal/domain/greenhouse"
	"github.com/oshokin/greenhouse-monitor/internal/logger"
)

const (
	metricPrefix = "greenhouse_"

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Metrics holds the controller collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	reading     *prometheus.GaugeVec
	setpoint    *prometheus.GaugeVec
	actuator    *prometheus.GaugeVec
	alarmActive *prometheus.GaugeVec
	transitions *prometheus.CounterVec
	cycles      *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reading: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "reading",
				Help: "Latest sensor reading by quantity",
			},
			[]string{"quantity"},
		),
		setpoint: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "setpoint",
				Help: "Target value by quantity",
			},
			[]string{"quantity"},
		),
		actuator: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "actuator_on",
				Help: "Actuator state (1=ON, 0=OFF)",
			},
			[]string{"actuator"},
		),
		alarmActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "alarm_active",
				Help: "Alarm condition state (1=active, 0=clear)",
			},
			[]string{"condition"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alarm_transitions_total",
				Help: "Total alarm transitions by condition and kind",
			},
			[]string{"condition", "kind"},
		),
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cycles_total",
				Help: "Total control cycles by result",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.reading,
		m.setpoint,
		m.actuator,
		m.alarmActive,
		m.transitions,
		m.cycles,
	)

	// Every condition is exported from the start, not only after its first trigger.
	for _, c := range alarm.Conditions() {
		m.alarmActive.WithLabelValues(c.Code()).Set(0)
	}

	return m
}

// ObserveReading records the reading, targets and actuator decisions of a cycle.
func (m *Metrics) ObserveReading(r greenhouse.Reading, target greenhouse.Setpoints, controls greenhouse.Controls) {
	m.reading.WithLabelValues("temperature").Set(r.Temperature)
	m.reading.WithLabelValues("humidity").Set(r.Humidity)
	m.reading.WithLabelValues("pressure").Set(r.Pressure)

	m.setpoint.WithLabelValues("temperature").Set(target.Temperature)
	m.setpoint.WithLabelValues("humidity").Set(target.Humidity)

	m.actuator.WithLabelValues("heater").Set(boolToFloat(controls.Heater))
	m.actuator.WithLabelValues("humidifier").Set(boolToFloat(controls.Humidifier))
}

// ObserveAlarms records the active set and counts the transitions of a sweep.
func (m *Metrics) ObserveAlarms(active []alarm.Record, transitions []alarm.Transition) {
	for _, c := range alarm.Conditions() {
		m.alarmActive.WithLabelValues(c.Code()).Set(0)
	}

	for _, rec := range active {
		m.alarmActive.WithLabelValues(rec.Condition.Code()).Set(1)
	}

	for _, tr := range transitions {
		m.transitions.WithLabelValues(tr.Condition.Code(), tr.Kind.String()).Inc()
	}
}

// ObserveCycle counts a finished cycle.
func (m *Metrics) ObserveCycle(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}

	m.cycles.WithLabelValues(result).Inc()
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf(ctx, "Failed to stop metrics server: %v", err)
		}
	}()

	logger.Infof(ctx, "Serving metrics on %s", addr)

	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}

	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}

	return 0
}
