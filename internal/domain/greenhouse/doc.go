// Package greenhouse holds the measured and target values of the greenhouse
// environment and the heater/humidifier decision derived from them.
package greenhouse
