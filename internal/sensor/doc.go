// Package sensor acquires environment readings, either from Linux
// industrial-I/O sysfs devices (HTS221 humidity/temperature, LPS25H pressure)
// or from a random simulation.
package sensor
