package sensor

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/greenhouse-monitor/internal/config"
)

var errTestQuantity = errors.New("test quantity error")

// writeAttributes creates sysfs-like attribute files in dir.
func writeAttributes(t *testing.T, dir string, attributes map[string]string) {
	t.Helper()

	for name, value := range attributes {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0o600))
	}
}

// TestSimulator_Ranges draws many values and checks the bounds.
func TestSimulator_Ranges(t *testing.T) {
	t.Parallel()

	var (
		ctx = context.Background()
		sim = NewSimulator(rand.New(rand.NewPCG(1, 2)))
	)

	for range 1000 {
		temperature, err := sim.Temperature(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, temperature, float64(SimulatedTemperatureLow))
		require.Less(t, temperature, float64(SimulatedTemperatureHigh))

		humidity, err := sim.Humidity(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, humidity, float64(SimulatedHumidityLow))
		require.Less(t, humidity, float64(SimulatedHumidityHigh))

		pressure, err := sim.Pressure(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, pressure, float64(SimulatedPressureLow))
		require.Less(t, pressure, float64(SimulatedPressureHigh))
	}
}

// TestIIOChannel_Processed reads the _input attribute.
func TestIIOChannel_Processed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeAttributes(t, dir, map[string]string{
		"in_temp_input":             "23450",
		"in_humidityrelative_input": "48125",
		"in_pressure_input":         "100.325",
	})

	ctx := context.Background()

	temperature, err := NewIIOChannel(dir, ChannelTemperature).Read(ctx)
	require.NoError(t, err)
	require.InDelta(t, 23.45, temperature, 1e-9)

	humidity, err := NewIIOChannel(dir, ChannelHumidity).Read(ctx)
	require.NoError(t, err)
	require.InDelta(t, 48.125, humidity, 1e-9)

	pressure, err := NewIIOChannel(dir, ChannelPressure).Read(ctx)
	require.NoError(t, err)
	require.InDelta(t, 1003.25, pressure, 1e-9)
}

// TestIIOChannel_RawOffsetScale falls back to raw values.
func TestIIOChannel_RawOffsetScale(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeAttributes(t, dir, map[string]string{
		"in_temp_raw":     "-100",
		"in_temp_offset":  "500",
		"in_temp_scale":   "50",
		"in_pressure_raw": "4096000",
		// No scale file: scale defaults to 1, offset to 0.
	})

	ctx := context.Background()

	temperature, err := NewIIOChannel(dir, ChannelTemperature).Read(ctx)
	require.NoError(t, err)
	require.InDelta(t, 20.0, temperature, 1e-9)

	pressure, err := NewIIOChannel(dir, ChannelPressure).Read(ctx)
	require.NoError(t, err)
	require.InDelta(t, 40960000.0, pressure, 1e-6)

	_, err = NewIIOChannel(dir, ChannelHumidity).Read(ctx)
	require.ErrorIs(t, err, errNoChannel)
}

// TestIIOChannel_Garbage reports unparsable values.
func TestIIOChannel_Garbage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeAttributes(t, dir, map[string]string{"in_temp_input": "warm"})

	_, err := NewIIOChannel(dir, ChannelTemperature).Read(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, errNoChannel)
}

// TestComposite_Read stamps the reading and wraps quantity errors.
func TestComposite_Read(t *testing.T) {
	t.Parallel()

	var (
		ts    = time.Unix(1700000000, 0)
		fixed = func(v float64) Quantity {
			return func(context.Context) (float64, error) { return v, nil }
		}
	)

	source := &Composite{
		Temperature: fixed(21),
		Humidity:    fixed(45),
		Pressure:    fixed(1001),
		Now:         func() time.Time { return ts },
	}

	reading, err := source.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, ts, reading.Timestamp)
	require.InDelta(t, 21.0, reading.Temperature, 0)
	require.InDelta(t, 45.0, reading.Humidity, 0)
	require.InDelta(t, 1001.0, reading.Pressure, 0)

	source.Humidity = func(context.Context) (float64, error) { return 0, errTestQuantity }

	_, err = source.Read(context.Background())
	require.ErrorIs(t, err, errTestQuantity)
}

// TestNew_MixesSimulatedAndHardware simulates only the pressure.
func TestNew_MixesSimulatedAndHardware(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeAttributes(t, dir, map[string]string{
		"in_temp_input":             "19000",
		"in_humidityrelative_input": "61000",
	})

	source, err := New(config.SensorConfig{
		Driver:           config.SensorIIO,
		HumidityDevice:   dir,
		SimulatePressure: true,
	})
	require.NoError(t, err)

	reading, err := source.Read(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 19.0, reading.Temperature, 1e-9)
	require.InDelta(t, 61.0, reading.Humidity, 1e-9)
	require.GreaterOrEqual(t, reading.Pressure, float64(SimulatedPressureLow))

	_, err = New(config.SensorConfig{Driver: "spi"})
	require.Error(t, err)
}
