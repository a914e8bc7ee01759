package greenhouse

const (
	// DefaultTemperature is the target temperature used when none was stored.
	DefaultTemperature = 25.0
	// DefaultHumidity is the target humidity used when none was stored.
	DefaultHumidity = 55.0
)

// Setpoints are the target values the actuators steer towards.
type Setpoints struct {
	Temperature float64 `yaml:"temperature"`
	Humidity    float64 `yaml:"humidity"`
}

// DefaultSetpoints returns the factory targets.
func DefaultSetpoints() Setpoints {
	return Setpoints{
		Temperature: DefaultTemperature,
		Humidity:    DefaultHumidity,
	}
}

// IsZero reports whether the setpoints were never initialised.
// A zero temperature target is treated as unset.
func (s Setpoints) IsZero() bool {
	return s.Temperature == 0
}
