package status

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/greenhouse-monitor/internal/api/grpc/monitor"
	"github.com/oshokin/greenhouse-monitor/internal/config"
	"github.com/oshokin/greenhouse-monitor/internal/domain/alarm"
	"github.com/oshokin/greenhouse-monitor/internal/domain/greenhouse"
	"github.com/oshokin/greenhouse-monitor/internal/logger"
)

// fakeService implements monitor.Service with fixed state.
type fakeService struct {
	snapshot monitor.Snapshot
	ready    bool
}

func (f *fakeService) Alarms(context.Context) []alarm.Record {
	return f.snapshot.Alarms
}

func (f *fakeService) Snapshot(context.Context) (monitor.Snapshot, bool) {
	return f.snapshot, f.ready
}

// startServer serves svc on a loopback port and returns its address.
func startServer(t *testing.T, svc monitor.Service) string {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := grpc.NewServer()
	monitor.Register(server, monitor.NewServer(svc))

	go func() {
		_ = server.Serve(lis) //nolint:errcheck // Stopped by cleanup.
	}()

	t.Cleanup(server.Stop)

	return lis.Addr().String()
}

// sampleService returns a ready controller with one alarm.
func sampleService() *fakeService {
	at := time.Date(2024, 3, 28, 10, 0, 0, 0, time.UTC)

	return &fakeService{
		ready: true,
		snapshot: monitor.Snapshot{
			Unit:     "north",
			Reading:  greenhouse.Reading{Timestamp: at, Temperature: 5, Humidity: 60, Pressure: 1000},
			Target:   greenhouse.DefaultSetpoints(),
			Controls: greenhouse.Controls{Heater: true},
			Alarms: []alarm.Record{
				{Condition: alarm.LowTemperature, TriggeredAt: at, Value: 5},
			},
		},
	}
}

// runOnce queries addr with opts and returns what was printed.
func runOnce(t *testing.T, addr string, opts Options) (string, error) {
	t.Helper()

	var out bytes.Buffer

	opts.ConfigPath = filepath.Join(t.TempDir(), "absent.yaml")
	opts.ServerAddress = addr
	opts.Output = &out

	err := Run(context.Background(), &opts)

	return out.String(), err
}

// TestRun_Status prints the full console frame.
func TestRun_Status(t *testing.T) {
	t.Parallel()

	addr := startServer(t, sampleService())

	out, err := runOnce(t, addr, Options{})
	require.NoError(t, err)
	require.Contains(t, out, "Unit: north ")
	require.Contains(t, out, "Setpoints\tT:  25.0C\tH:  55.0%\n")
	require.Contains(t, out, "Controls\tHeater: ON\tHumidifier: OFF\n")
	require.Contains(t, out, "\nAlarms\nLow Temperature ")
}

// TestRun_AlarmsOnly prints only the alarm list.
func TestRun_AlarmsOnly(t *testing.T) {
	t.Parallel()

	addr := startServer(t, &fakeService{})

	out, err := runOnce(t, addr, Options{AlarmsOnly: true})
	require.NoError(t, err)
	require.Equal(t, "\nAlarms\nNo Alarms\n", out)
}

// TestRun_JSON prints the raw documents.
func TestRun_JSON(t *testing.T) {
	t.Parallel()

	addr := startServer(t, sampleService())

	out, err := runOnce(t, addr, Options{JSON: true, AlarmsOnly: true})
	require.NoError(t, err)

	var doc struct {
		Alarms []struct {
			Condition   string  `json:"condition"`
			Name        string  `json:"name"`
			TriggeredAt string  `json:"triggered_at"`
			Value       float64 `json:"value"`
		} `json:"alarms"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Alarms, 1)
	require.Equal(t, "LOW_TEMPERATURE", doc.Alarms[0].Condition)
	require.Equal(t, "Low Temperature", doc.Alarms[0].Name)
	require.Equal(t, "2024-03-28T10:00:00Z", doc.Alarms[0].TriggeredAt)
	require.InDelta(t, 5.0, doc.Alarms[0].Value, 0)

	out, err = runOnce(t, addr, Options{JSON: true})
	require.NoError(t, err)

	var full map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &full))
	require.Equal(t, "north", full["unit"])
}

// TestRun_NotReady surfaces FailedPrecondition before the first cycle.
func TestRun_NotReady(t *testing.T) {
	t.Parallel()

	addr := startServer(t, &fakeService{})

	_, err := runOnce(t, addr, Options{})
	require.Equal(t, codes.FailedPrecondition, status.Code(err))
}

// TestRun_Watch polls until canceled.
func TestRun_Watch(t *testing.T) {
	t.Parallel()

	addr := startServer(t, sampleService())

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	var out bytes.Buffer

	err := Run(ctx, &Options{
		ConfigPath:    filepath.Join(t.TempDir(), "absent.yaml"),
		ServerAddress: addr,
		AlarmsOnly:    true,
		Watch:         50 * time.Millisecond,
		Output:        &out,
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, bytes.Count(out.Bytes(), []byte("\nAlarms\n")), 2)
}

// TestRun_NoAddress requires settings when no address is given.
func TestRun_NoAddress(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	require.Error(t, err)
}

// TestRun_LogLevel follows the flag, then the environment, then the settings file.
func TestRun_LogLevel(t *testing.T) {
	previous := logger.Level()
	t.Cleanup(func() { logger.SetLevel(previous) })

	addr := startServer(t, sampleService())

	configPath := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := config.Default()
	cfg.ServerAddress = addr
	cfg.LogLevel = "error"
	require.NoError(t, config.Save(configPath, cfg))

	run := func(override string) error {
		var out bytes.Buffer

		return Run(context.Background(), &Options{ConfigPath: configPath, LogLevel: override, Output: &out})
	}

	require.NoError(t, run(""))
	require.Equal(t, zapcore.ErrorLevel, logger.Level())

	t.Setenv(config.EnvLogLevel, "debug")

	require.NoError(t, run(""))
	require.Equal(t, zapcore.DebugLevel, logger.Level())

	require.NoError(t, run("info"))
	require.Equal(t, zapcore.InfoLevel, logger.Level())

	require.ErrorIs(t, run("loud"), logger.ErrUnknownLevel)
}

// TestRun_DefaultLogLevel keeps the client at warn without settings.
func TestRun_DefaultLogLevel(t *testing.T) {
	previous := logger.Level()
	t.Cleanup(func() { logger.SetLevel(previous) })

	addr := startServer(t, sampleService())

	_, err := runOnce(t, addr, Options{})
	require.NoError(t, err)
	require.Equal(t, zapcore.WarnLevel, logger.Level())
}
