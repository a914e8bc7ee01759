package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/oshokin/greenhouse-monitor/internal/api/grpc/monitor"
	"github.com/oshokin/greenhouse-monitor/internal/config"
	"github.com/oshokin/greenhouse-monitor/internal/display"
	"github.com/oshokin/greenhouse-monitor/internal/logger"
	"github.com/oshokin/greenhouse-monitor/internal/metrics"
	"github.com/oshokin/greenhouse-monitor/internal/notify"
	"github.com/oshokin/greenhouse-monitor/internal/repository/alarmcache"
	"github.com/oshokin/greenhouse-monitor/internal/repository/readings"
	"github.com/oshokin/greenhouse-monitor/internal/repository/setpoints"
	"github.com/oshokin/greenhouse-monitor/internal/sensor"
	"github.com/oshokin/greenhouse-monitor/internal/service/instance"
	"github.com/oshokin/greenhouse-monitor/internal/version"
)

// Options controls the ghc-controller process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress overrides the configured gRPC listen address.
	ListenAddress string
	// LogLevel overrides the configured log level.
	LogLevel string
	// Once runs a single cycle and exits.
	Once bool
	// Output receives the console display. Defaults to stdout.
	Output io.Writer
}

// Run executes the control loop until ctx is canceled, or once if requested.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "ghc-controller")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err = logger.ApplyLevel(opts.LogLevel, settings.LogLevel, "info"); err != nil {
		return err
	}

	ctx = logger.WithKV(ctx, "unit", settings.Unit)

	logger.InfoKV(ctx, "Starting controller", "version", version.Short())

	guard, err := instance.NewGuard()
	if err != nil {
		return err
	}

	if err = guard.Check(); err != nil {
		return err
	}

	for _, overlap := range settings.Limits.Overlapping() {
		logger.WarnKV(ctx, "Alarm limits overlap, both alarms will be raised together", "conditions", overlap)
	}

	deps, err := buildDependencies(ctx, settings, opts)
	if err != nil {
		return err
	}

	defer closeDependencies(ctx, deps)

	svc, err := newService(ctx, deps)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	if err = deps.console.Banner(settings.Unit); err != nil {
		return fmt.Errorf("print banner: %w", err)
	}

	if opts.Once {
		return svc.cycle(ctx)
	}

	if settings.MetricsAddress != "" {
		go func() {
			if serveErr := deps.metrics.Serve(ctx, settings.MetricsAddress); serveErr != nil {
				logger.Errorf(ctx, "Metrics server stopped: %v", serveErr)
			}
		}()
	}

	listenAddress := resolveListenAddress(settings.ListenAddress, opts.ListenAddress)
	if listenAddress != "" {
		stop, serveErr := serveStatus(ctx, listenAddress, svc)
		if serveErr != nil {
			return serveErr
		}

		defer stop()
	}

	return loop(ctx, svc, settings.UpdateInterval)
}

// loop runs a cycle immediately and then once per interval.
func loop(ctx context.Context, svc *service, interval time.Duration) error {
	logger.InfoKV(ctx, "Control loop started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := svc.cycle(ctx); err != nil {
			logger.Errorf(ctx, "Cycle failed: %v", err)
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Control loop stopped")

			return nil
		case <-ticker.C:
		}
	}
}

// buildDependencies wires the configured integrations.
//
//nolint:funlen // Straight-line wiring of optional integrations.
func buildDependencies(ctx context.Context, settings *config.Config, opts *Options) (dependencies, error) {
	source, err := sensor.New(settings.Sensor)
	if err != nil {
		return dependencies{}, fmt.Errorf("init sensor: %w", err)
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	deps := dependencies{
		unit:      settings.Unit,
		limits:    settings.Limits,
		timeout:   settings.Timeout,
		source:    source,
		setpoints: setpoints.NewFileRepository(settings.SetpointsFile),
		metrics:   metrics.New(),
		console:   display.NewConsole(output),
	}

	sinks := readings.Multi{readings.NewFileLog(settings.ReadingsLog)}
	publishers := notify.Multi{notify.LogPublisher{}}

	// From here on partially built dependencies must be released on failure.
	deps.sink = sinks
	deps.publisher = publishers

	connectCtx, cancel := context.WithTimeout(ctx, settings.Timeout)
	defer cancel()

	if settings.Postgres.DSN != "" {
		var db *readings.Postgres

		db, err = readings.ConnectPostgres(connectCtx, settings.Postgres.DSN, settings.Unit)
		if err != nil {
			closeDependencies(ctx, deps)

			return dependencies{}, fmt.Errorf("connect readings database: %w", err)
		}

		sinks = append(sinks, db)
		deps.sink = sinks

		logger.Info(ctx, "Readings are stored in Postgres")
	}

	if len(settings.Kafka.Brokers) > 0 {
		publishers = append(publishers,
			notify.NewKafkaPublisher(settings.Kafka.Brokers, settings.Kafka.Topic, settings.Timeout))
		deps.publisher = publishers

		logger.InfoKV(ctx, "Alarm events are published to Kafka",
			"brokers", settings.Kafka.Brokers, "topic", settings.Kafka.Topic)
	}

	if settings.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:         settings.Redis.Addr,
			Password:     settings.Redis.Password,
			DB:           settings.Redis.DB,
			DialTimeout:  settings.Timeout,
			ReadTimeout:  settings.Timeout,
			WriteTimeout: settings.Timeout,
		})

		if err = client.Ping(connectCtx).Err(); err != nil {
			_ = client.Close()

			closeDependencies(ctx, deps)

			return dependencies{}, fmt.Errorf("connect redis: %w", err)
		}

		deps.mirror = alarmcache.NewRedisMirror(client, settings.Unit, settings.Redis.TTL)

		logger.InfoKV(ctx, "Active alarms are mirrored to Redis", "key", alarmcache.Key(settings.Unit))
	}

	return deps, nil
}

// closeDependencies releases every integration, logging failures.
func closeDependencies(ctx context.Context, deps dependencies) {
	var errs []error

	if deps.sink != nil {
		errs = append(errs, deps.sink.Close())
	}

	if deps.publisher != nil {
		errs = append(errs, deps.publisher.Close())
	}

	if deps.mirror != nil {
		errs = append(errs, deps.mirror.Close())
	}

	if err := errors.Join(errs...); err != nil {
		logger.Errorf(ctx, "Failed to release resources: %v", err)
	}
}

// serveStatus starts the gRPC status API and returns a function that stops
// it gracefully.
func serveStatus(ctx context.Context, listenAddress string, svc monitor.Service) (func(), error) {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(monitor.LoggingInterceptor))
	monitor.Register(grpcServer, monitor.NewServer(svc))

	logger.InfoKV(ctx, "Status API listening", "listen_address", lis.Addr().String())

	// Done channel is closed once Serve returns so stop blocks until the
	// server fully stops.
	done := make(chan struct{})

	go func() {
		defer close(done)

		if serveErr := grpcServer.Serve(lis); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
			logger.Errorf(ctx, "Status API stopped: %v", serveErr)
		}
	}()

	return func() {
		logger.Info(ctx, "Shutting down status API")
		grpcServer.GracefulStop()
		<-done
		logger.Info(ctx, "Status API stopped")
	}, nil
}

// resolveListenAddress returns the override if provided, otherwise the
// configured address. Empty disables the status API.
func resolveListenAddress(configAddr, override string) string {
	if override != "" {
		return override
	}

	return configAddr
}
