package alarm

import (
	"fmt"
	"strings"
)

// Condition identifies an alarm kind.
type Condition int

// Condition codes. NoAlarm is a sentinel and is never stored in a Registry.
const (
	NoAlarm Condition = iota
	HighTemperature
	LowTemperature
	HighHumidity
	LowHumidity
	HighPressure
	LowPressure
)

// conditionCount is the number of concrete conditions.
const conditionCount = int(LowPressure)

//nolint:gochecknoglobals // Read-only lookup tables indexed by Condition.
var (
	conditionNames = [...]string{
		NoAlarm:         "No Alarms",
		HighTemperature: "High Temperature",
		LowTemperature:  "Low Temperature",
		HighHumidity:    "High Humidity",
		LowHumidity:     "Low Humidity",
		HighPressure:    "High Pressure",
		LowPressure:     "Low Pressure",
	}

	conditionCodes = [...]string{
		NoAlarm:         "NO_ALARM",
		HighTemperature: "HIGH_TEMPERATURE",
		LowTemperature:  "LOW_TEMPERATURE",
		HighHumidity:    "HIGH_HUMIDITY",
		LowHumidity:     "LOW_HUMIDITY",
		HighPressure:    "HIGH_PRESSURE",
		LowPressure:     "LOW_PRESSURE",
	}
)

// Conditions returns the six concrete conditions in code order.
func Conditions() []Condition {
	return []Condition{
		HighTemperature,
		LowTemperature,
		HighHumidity,
		LowHumidity,
		HighPressure,
		LowPressure,
	}
}

// Valid reports whether c is one of the six concrete conditions.
func (c Condition) Valid() bool {
	return c > NoAlarm && c <= LowPressure
}

// Name returns the human-readable display name, e.g. "High Temperature".
func (c Condition) Name() string {
	if c < NoAlarm || int(c) >= len(conditionNames) {
		return fmt.Sprintf("Condition(%d)", int(c))
	}

	return conditionNames[c]
}

// Code returns the stable machine identifier, e.g. "HIGH_TEMPERATURE".
func (c Condition) Code() string {
	if c < NoAlarm || int(c) >= len(conditionCodes) {
		return fmt.Sprintf("CONDITION_%d", int(c))
	}

	return conditionCodes[c]
}

// String implements fmt.Stringer.
func (c Condition) String() string {
	return c.Name()
}

// ParseCondition resolves a code produced by Code back to a Condition.
func ParseCondition(code string) (Condition, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	for i, known := range conditionCodes {
		if known == code {
			return Condition(i), nil
		}
	}

	return NoAlarm, fmt.Errorf("%w: %q", ErrInvalidCondition, code)
}

// slot maps a concrete condition to its registry slot.
func (c Condition) slot() (int, bool) {
	if !c.Valid() {
		return 0, false
	}

	return int(c) - 1, true
}
