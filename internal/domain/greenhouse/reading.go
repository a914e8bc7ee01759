package greenhouse

import (
	"fmt"
	"time"
)

// Reading is one snapshot of the environment taken per control cycle.
type Reading struct {
	// Timestamp is when the values were sampled.
	Timestamp time.Time
	// Temperature in degrees Celsius.
	Temperature float64
	// Humidity in percent relative humidity.
	Humidity float64
	// Pressure in millibars.
	Pressure float64
}

// String renders the reading the way the console display prints it.
func (r Reading) String() string {
	return fmt.Sprintf("T: %5.1fC\tH: %5.1f%%\tP: %6.1fmb", r.Temperature, r.Humidity, r.Pressure)
}
