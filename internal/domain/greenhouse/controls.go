package greenhouse

// Controls holds the binary actuator signals for one cycle.
type Controls struct {
	Heater     bool
	Humidifier bool
}

// DecideControls switches the heater on below the temperature target and the
// humidifier on below the humidity target. Reaching the target turns them off.
func DecideControls(target Setpoints, r Reading) Controls {
	return Controls{
		Heater:     r.Temperature < target.Temperature,
		Humidifier: r.Humidity < target.Humidity,
	}
}

// onOff renders a signal for display.
func onOff(on bool) string {
	if on {
		return "ON"
	}

	return "OFF"
}

// String renders the controls the way the console display prints them.
func (c Controls) String() string {
	return "Heater: " + onOff(c.Heater) + "\tHumidifier: " + onOff(c.Humidifier)
}
