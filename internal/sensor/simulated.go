package sensor

import (
	"context"
	"math/rand/v2"
	"sync"
)

// Simulation ranges, lower bound inclusive and upper bound exclusive.
const (
	SimulatedTemperatureLow  = -10
	SimulatedTemperatureHigh = 50
	SimulatedHumidityLow     = 0
	SimulatedHumidityHigh    = 100
	SimulatedPressureLow     = 975
	SimulatedPressureHigh    = 1016
)

// Simulator draws whole-number readings uniformly within fixed ranges.
type Simulator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulator creates a simulator. A nil rnd uses a randomly seeded generator.
func NewSimulator(rnd *rand.Rand) *Simulator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // Simulation only.
	}

	return &Simulator{rnd: rnd}
}

// Temperature returns a value in [SimulatedTemperatureLow, SimulatedTemperatureHigh).
func (s *Simulator) Temperature(context.Context) (float64, error) {
	return s.between(SimulatedTemperatureLow, SimulatedTemperatureHigh), nil
}

// Humidity returns a value in [SimulatedHumidityLow, SimulatedHumidityHigh).
func (s *Simulator) Humidity(context.Context) (float64, error) {
	return s.between(SimulatedHumidityLow, SimulatedHumidityHigh), nil
}

// Pressure returns a value in [SimulatedPressureLow, SimulatedPressureHigh).
func (s *Simulator) Pressure(context.Context) (float64, error) {
	return s.between(SimulatedPressureLow, SimulatedPressureHigh), nil
}

func (s *Simulator) between(low, high int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return float64(s.rnd.IntN(high-low) + low)
}
