// Package metrics exports the controller's readings, actuator states and alarm
// activity in Prometheus format.
package metrics
