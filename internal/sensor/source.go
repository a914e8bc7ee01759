package sensor

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/greenhouse-monitor/internal/config"
	"github.com/oshokin/greenhouse-monitor/internal/domain/greenhouse"
)

// Source produces one reading per call.
type Source interface {
	Read(ctx context.Context) (greenhouse.Reading, error)
}

// Quantity reads a single measured value.
type Quantity func(ctx context.Context) (float64, error)

// Composite assembles a reading from one Quantity per measurement.
type Composite struct {
	Temperature Quantity
	Humidity    Quantity
	Pressure    Quantity
	// Now stamps the reading; time.Now when nil.
	Now func() time.Time
}

// Read samples every quantity and stamps the result.
func (c *Composite) Read(ctx context.Context) (greenhouse.Reading, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	temperature, err := c.Temperature(ctx)
	if err != nil {
		return greenhouse.Reading{}, fmt.Errorf("read temperature: %w", err)
	}

	humidity, err := c.Humidity(ctx)
	if err != nil {
		return greenhouse.Reading{}, fmt.Errorf("read humidity: %w", err)
	}

	pressure, err := c.Pressure(ctx)
	if err != nil {
		return greenhouse.Reading{}, fmt.Errorf("read pressure: %w", err)
	}

	return greenhouse.Reading{
		Timestamp:   now(),
		Temperature: temperature,
		Humidity:    humidity,
		Pressure:    pressure,
	}, nil
}

// New builds the source described by the sensor settings.
func New(cfg config.SensorConfig) (*Composite, error) {
	sim := NewSimulator(nil)

	source := &Composite{
		Temperature: sim.Temperature,
		Humidity:    sim.Humidity,
		Pressure:    sim.Pressure,
	}

	switch cfg.Driver {
	case config.SensorSimulated, "":
		return source, nil
	case config.SensorIIO:
	default:
		return nil, fmt.Errorf("unsupported sensor driver %q", cfg.Driver)
	}

	if !cfg.SimulateTemperature {
		source.Temperature = NewIIOChannel(cfg.HumidityDevice, ChannelTemperature).Read
	}

	if !cfg.SimulateHumidity {
		source.Humidity = NewIIOChannel(cfg.HumidityDevice, ChannelHumidity).Read
	}

	if !cfg.SimulatePressure {
		source.Pressure = NewIIOChannel(cfg.PressureDevice, ChannelPressure).Read
	}

	return source, nil
}
