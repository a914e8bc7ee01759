// Package instance keeps a single controller process per host, since two
// controllers would drive the same heater and humidifier.
package instance
