// Package controller runs the greenhouse control loop.
//
// Every cycle acquires a reading, stores it, decides the heater and humidifier
// states from the setpoints, sweeps the alarm limits and publishes the result
// to the console, the metrics registry, the notification publishers and the
// alarm mirror. The latest state is served read-only over the gRPC status API.
package controller
