package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/greenhouse-monitor/internal/domain/alarm"
)

// Config holds the controller and status client settings.
type Config struct {
	// Unit names this greenhouse in logs, metrics and notifications.
	Unit string `yaml:"unit"`
	// ListenAddress is where the controller serves the gRPC status API. Empty disables it.
	ListenAddress string `yaml:"listen_addr"`
	// ServerAddress is the status API address the ghc-status client dials.
	ServerAddress string `yaml:"server_addr"`
	// MetricsAddress is where Prometheus metrics are served. Empty disables it.
	MetricsAddress string `yaml:"metrics_addr"`
	// UpdateInterval is the pause between control cycles.
	UpdateInterval time.Duration `yaml:"update_interval"`
	// Timeout bounds network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// SetpointsFile stores the heater/humidifier targets.
	SetpointsFile string `yaml:"setpoints_file"`
	// ReadingsLog is the file every reading is appended to.
	ReadingsLog string `yaml:"readings_log"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// Limits are the alarm thresholds.
	Limits alarm.Limits `yaml:"limits"`
	// Sensor selects how readings are acquired.
	Sensor SensorConfig `yaml:"sensor"`
	// Kafka configures alarm notifications.
	Kafka KafkaConfig `yaml:"kafka"`
	// Redis configures the active alarm mirror.
	Redis RedisConfig `yaml:"redis"`
	// Postgres configures the readings database sink.
	Postgres PostgresConfig `yaml:"postgres"`
}

// SensorConfig selects the reading source.
type SensorConfig struct {
	// Driver is "simulated" or "iio".
	Driver string `yaml:"driver"`
	// HumidityDevice is the IIO device directory of the humidity/temperature sensor.
	HumidityDevice string `yaml:"humidity_device"`
	// PressureDevice is the IIO device directory of the pressure sensor.
	PressureDevice string `yaml:"pressure_device"`
	// SimulateTemperature replaces the hardware temperature with random values.
	SimulateTemperature bool `yaml:"simulate_temperature"`
	// SimulateHumidity replaces the hardware humidity with random values.
	SimulateHumidity bool `yaml:"simulate_humidity"`
	// SimulatePressure replaces the hardware pressure with random values.
	SimulatePressure bool `yaml:"simulate_pressure"`
}

// KafkaConfig configures the alarm notification producer.
type KafkaConfig struct {
	// Brokers lists bootstrap brokers. Empty disables notifications over Kafka.
	Brokers []string `yaml:"brokers"`
	// Topic receives triggered/cleared events.
	Topic string `yaml:"topic"`
}

// RedisConfig configures the active alarm mirror.
type RedisConfig struct {
	// Addr is the Redis address. Empty disables the mirror.
	Addr string `yaml:"addr"`
	// Password authenticates to Redis.
	Password string `yaml:"password"`
	// DB selects the logical database.
	DB int `yaml:"db"`
	// TTL expires the mirror if the controller stops refreshing it.
	TTL time.Duration `yaml:"ttl"`
}

// PostgresConfig configures the readings database sink.
type PostgresConfig struct {
	// DSN is the lib/pq connection string. Empty disables the sink.
	DSN string `yaml:"dsn"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "greenhouse-settings.yaml"

	// DefaultSetpointsFilename is the default filename for stored setpoints.
	DefaultSetpointsFilename = "setpoints.yaml"

	// DefaultReadingsLogFilename is the default readings log.
	DefaultReadingsLogFilename = "ghdata.txt"

	// DefaultListenAddress is where the controller serves the monitor API.
	DefaultListenAddress = ":50061"

	// DefaultServerAddress is where ghc-status finds the controller.
	DefaultServerAddress = "127.0.0.1:50061"

	// DefaultMetricsAddress serves the Prometheus endpoint.
	DefaultMetricsAddress = ":9106"

	// DefaultUnit names the greenhouse when nothing is configured.
	DefaultUnit = "greenhouse"

	// DefaultUpdateInterval is the pause between control cycles.
	DefaultUpdateInterval = 2 * time.Second

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultKafkaTopic receives alarm notifications.
	DefaultKafkaTopic = "greenhouse.alarms"

	// DefaultRedisTTL is how long the alarm mirror survives without refresh.
	DefaultRedisTTL = time.Minute

	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o600

	// SensorSimulated draws random readings.
	SensorSimulated = "simulated"
	// SensorIIO reads Linux industrial-I/O sysfs devices.
	SensorIIO = "iio"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownSensorDriver is returned for an unsupported sensor driver.
	errUnknownSensorDriver = errors.New("unknown sensor driver")
	// errSensorDeviceRequired is returned when the iio driver misses a device path.
	errSensorDeviceRequired = errors.New("sensor device directory must be provided")
)

// Default returns settings with every default applied. Unlike Validate it
// also fills the network addresses, so a file written from it serves the
// monitor API and metrics while a hand-written file may leave them empty.
func Default() *Config {
	cfg := &Config{
		ListenAddress:  DefaultListenAddress,
		ServerAddress:  DefaultServerAddress,
		MetricsAddress: DefaultMetricsAddress,
		Limits:         alarm.DefaultLimits(),
	}

	//nolint:errcheck // Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path, applies environment
// overrides and validates it. Thresholds missing from the file keep their
// reference values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	path = filepath.Clean(path)

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := &Config{
		Limits: alarm.DefaultLimits(),
	}

	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	applyEnv(cfg)

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults.
//
//nolint:cyclop // A flat list of defaults reads better than helpers.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Unit == "" {
		cfg.Unit = DefaultUnit
	}

	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = DefaultUpdateInterval
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.SetpointsFile == "" {
		cfg.SetpointsFile = DefaultSetpointsFilename
	}

	if cfg.ReadingsLog == "" {
		cfg.ReadingsLog = DefaultReadingsLogFilename
	}

	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}

	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = DefaultRedisTTL
	}

	for name, address := range map[string]string{
		"listen address":  cfg.ListenAddress,
		"server address":  cfg.ServerAddress,
		"metrics address": cfg.MetricsAddress,
	} {
		if address == "" {
			continue
		}

		if _, err := net.ResolveTCPAddr("tcp", address); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, address, err)
		}
	}

	return validateSensor(&cfg.Sensor)
}

// validateSensor checks the driver and the devices it needs.
func validateSensor(sensor *SensorConfig) error {
	switch sensor.Driver {
	case "":
		sensor.Driver = SensorSimulated
	case SensorSimulated:
	case SensorIIO:
		if !sensor.SimulateTemperature || !sensor.SimulateHumidity {
			if sensor.HumidityDevice == "" {
				return fmt.Errorf("humidity device: %w", errSensorDeviceRequired)
			}
		}

		if !sensor.SimulatePressure && sensor.PressureDevice == "" {
			return fmt.Errorf("pressure device: %w", errSensorDeviceRequired)
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownSensorDriver, sensor.Driver)
	}

	return nil
}
