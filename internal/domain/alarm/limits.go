package alarm

import "github.com/oshokin/greenhouse-monitor/internal/domain/greenhouse"

// Reference thresholds used when configuration does not override them.
const (
	DefaultHighTemperature = 30.0
	DefaultLowTemperature  = 10.0
	DefaultHighHumidity    = 70.0
	DefaultLowHumidity     = 25.0
	DefaultHighPressure    = 1016.0
	DefaultLowPressure     = 985.0
)

// Limits are the six alarm thresholds. A high limit is breached at or above
// its value, a low limit at or below it.
type Limits struct {
	HighTemperature float64 `yaml:"hight"`
	LowTemperature  float64 `yaml:"lowt"`
	HighHumidity    float64 `yaml:"highh"`
	LowHumidity     float64 `yaml:"lowh"`
	HighPressure    float64 `yaml:"highp"`
	LowPressure     float64 `yaml:"lowp"`
}

// DefaultLimits returns the reference thresholds.
func DefaultLimits() Limits {
	return Limits{
		HighTemperature: DefaultHighTemperature,
		LowTemperature:  DefaultLowTemperature,
		HighHumidity:    DefaultHighHumidity,
		LowHumidity:     DefaultLowHumidity,
		HighPressure:    DefaultHighPressure,
		LowPressure:     DefaultLowPressure,
	}
}

// Threshold returns the limit that applies to condition c.
func (l Limits) Threshold(c Condition) (float64, bool) {
	switch c {
	case HighTemperature:
		return l.HighTemperature, true
	case LowTemperature:
		return l.LowTemperature, true
	case HighHumidity:
		return l.HighHumidity, true
	case LowHumidity:
		return l.LowHumidity, true
	case HighPressure:
		return l.HighPressure, true
	case LowPressure:
		return l.LowPressure, true
	case NoAlarm:
	}

	return 0, false
}

// Overlapping lists the quantities whose low limit is not below the high
// limit; a value on or between them raises both alarms at once.
func (l Limits) Overlapping() []string {
	var quantities []string

	if l.LowTemperature >= l.HighTemperature {
		quantities = append(quantities, "temperature")
	}

	if l.LowHumidity >= l.HighHumidity {
		quantities = append(quantities, "humidity")
	}

	if l.LowPressure >= l.HighPressure {
		quantities = append(quantities, "pressure")
	}

	return quantities
}

// Measure returns the reading quantity condition c watches.
func Measure(c Condition, r greenhouse.Reading) (float64, bool) {
	switch c {
	case HighTemperature, LowTemperature:
		return r.Temperature, true
	case HighHumidity, LowHumidity:
		return r.Humidity, true
	case HighPressure, LowPressure:
		return r.Pressure, true
	case NoAlarm:
	}

	return 0, false
}

// Breached reports whether value trips condition c under these limits.
// Comparison is inclusive in both directions.
func (l Limits) Breached(c Condition, value float64) bool {
	threshold, ok := l.Threshold(c)
	if !ok {
		return false
	}

	switch c {
	case HighTemperature, HighHumidity, HighPressure:
		return value >= threshold
	case LowTemperature, LowHumidity, LowPressure:
		return value <= threshold
	case NoAlarm:
	}

	return false
}
