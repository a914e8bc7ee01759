package sensor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Channel names an IIO sysfs channel together with the factor converting its
// processed value into the unit a Reading uses.
type Channel struct {
	Name   string
	Factor float64
}

// Channels of the HTS221 and LPS25H drivers. IIO reports temperature in
// milli-degrees Celsius, relative humidity in milli-percent and pressure in
// kilopascal; readings use degrees, percent and millibar.
//
//nolint:gochecknoglobals // Fixed channel descriptions.
var (
	ChannelTemperature = Channel{Name: "in_temp", Factor: 0.001}
	ChannelHumidity    = Channel{Name: "in_humidityrelative", Factor: 0.001}
	ChannelPressure    = Channel{Name: "in_pressure", Factor: 10}
)

// errNoChannel is returned when a device exposes neither processed nor raw values.
var errNoChannel = errors.New("channel not available")

// IIOChannel reads one channel of a device directory such as
// /sys/bus/iio/devices/iio:device0.
type IIOChannel struct {
	dir     string
	channel Channel
}

// NewIIOChannel creates a reader for channel in the device directory dir.
func NewIIOChannel(dir string, channel Channel) *IIOChannel {
	return &IIOChannel{
		dir:     filepath.Clean(dir),
		channel: channel,
	}
}

// Read returns the current channel value converted to reading units.
// It prefers <channel>_input and falls back to (raw + offset) * scale.
func (c *IIOChannel) Read(_ context.Context) (float64, error) {
	processed, err := c.readAttribute("input")
	if err == nil {
		return processed * c.channel.Factor, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return 0, err
	}

	raw, err := c.readAttribute("raw")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%s in %s: %w", c.channel.Name, c.dir, errNoChannel)
		}

		return 0, err
	}

	offset, err := c.optionalAttribute("offset", 0)
	if err != nil {
		return 0, err
	}

	scale, err := c.optionalAttribute("scale", 1)
	if err != nil {
		return 0, err
	}

	return (raw + offset) * scale * c.channel.Factor, nil
}

// optionalAttribute reads an attribute or returns fallback if it is absent.
func (c *IIOChannel) optionalAttribute(suffix string, fallback float64) (float64, error) {
	value, err := c.readAttribute(suffix)
	if errors.Is(err, os.ErrNotExist) {
		return fallback, nil
	}

	return value, err
}

// readAttribute parses <dir>/<channel>_<suffix> as a float.
func (c *IIOChannel) readAttribute(suffix string) (float64, error) {
	path := filepath.Join(c.dir, c.channel.Name+"_"+suffix)

	contents, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(string(contents)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	return value, nil
}
