package status

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"time"

	"google.golang.org/protobuf/encoding/protojson"

	"github.com/oshokin/greenhouse-monitor/internal/config"
	"github.com/oshokin/greenhouse-monitor/internal/display"
	"github.com/oshokin/greenhouse-monitor/internal/domain/alarm"
	"github.com/oshokin/greenhouse-monitor/internal/logger"
	"github.com/oshokin/greenhouse-monitor/internal/service/common"
)

// Options configures the ghc-status client.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// AlarmsOnly prints just the alarm list instead of the full status.
	AlarmsOnly bool
	// JSON prints the response documents as JSON.
	JSON bool
	// Watch repeats the query at this interval until canceled. Zero queries once.
	Watch time.Duration
	// LogLevel overrides the configured log level when specified.
	LogLevel string
	// Output receives the rendered state. Defaults to stdout.
	Output io.Writer
}

// querier fetches and prints one response.
type querier struct {
	client *common.Client
	opts   *Options
	out    io.Writer
}

// Run queries the controller once, or repeatedly with Watch.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "ghc-status")

	cfg, loadErr := config.Load(opts.ConfigPath)
	if loadErr != nil {
		// An explicit address is enough to run without a settings file.
		if opts.ServerAddress == "" {
			return loadErr
		}

		cfg = config.Default()
	}

	// The client stays quiet unless asked otherwise.
	if err := logger.ApplyLevel(opts.LogLevel, cfg.LogLevel, "warn"); err != nil {
		return err
	}

	if loadErr != nil {
		logger.Debug(ctx, "Using defaults, settings not loaded: ", loadErr)
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	clientOptions := []common.Option{common.WithCallTimeout(cfg.Timeout)}

	if actor, actorErr := common.DetectActor(); actorErr == nil {
		clientOptions = append(clientOptions, common.WithActor(actor))
	}

	client, err := common.Dial(ctx, serverAddress, clientOptions...)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	q := &querier{
		client: client,
		opts:   opts,
		out:    out,
	}

	if opts.Watch <= 0 {
		return q.query(ctx)
	}

	logger.DebugKV(ctx, "Watching controller", "server_address", serverAddress, "interval", opts.Watch)

	ticker := time.NewTicker(opts.Watch)
	defer ticker.Stop()

	for {
		if err = q.query(ctx); err != nil {
			// Keep watching through controller restarts.
			logger.ErrorKV(ctx, "Status query failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// query fetches and prints one response.
func (q *querier) query(ctx context.Context) error {
	if q.opts.JSON {
		return q.printJSON(ctx)
	}

	console := display.NewConsole(q.out)

	if q.opts.AlarmsOnly {
		records, err := q.client.GetAlarms(ctx)
		if err != nil {
			return err
		}

		return console.Alarms(render(records))
	}

	snapshot, err := q.client.GetStatus(ctx)
	if err != nil {
		return err
	}

	reading := snapshot.Reading
	reading.Timestamp = reading.Timestamp.Local()

	return console.Frame(display.Frame{
		Unit:     snapshot.Unit,
		Reading:  reading,
		Target:   snapshot.Target,
		Controls: snapshot.Controls,
		Alarms:   render(snapshot.Alarms),
	})
}

// printJSON writes the raw response document.
func (q *querier) printJSON(ctx context.Context) error {
	fetch := q.client.GetStatusRaw
	if q.opts.AlarmsOnly {
		fetch = q.client.GetAlarmsRaw
	}

	doc, err := fetch(ctx)
	if err != nil {
		return err
	}

	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	_, err = fmt.Fprintln(q.out, string(data))

	return err
}

// render yields records the way Registry.Render does.
func render(records []alarm.Record) iter.Seq2[string, time.Time] {
	return func(yield func(string, time.Time) bool) {
		for _, rec := range records {
			if !yield(rec.Condition.Name(), rec.TriggeredAt.Local()) {
				return
			}
		}
	}
}
