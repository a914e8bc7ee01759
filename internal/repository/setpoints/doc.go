// Package setpoints persists the heater and humidifier targets.
//
// The FileRepository stores them as YAML on disk and exposes a Repository
// interface the controller depends on.
package setpoints
