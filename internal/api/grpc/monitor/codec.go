package monitor

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/greenhouse-monitor/internal/domain/alarm"
	"github.com/oshokin/greenhouse-monitor/internal/domain/greenhouse"
)

// Document field names.
const (
	fieldAlarms      = "alarms"
	fieldCondition   = "condition"
	fieldName        = "name"
	fieldTriggeredAt = "triggered_at"
	fieldValue       = "value"
	fieldUnit        = "unit"
	fieldReading     = "reading"
	fieldTimestamp   = "timestamp"
	fieldTemperature = "temperature"
	fieldHumidity    = "humidity"
	fieldPressure    = "pressure"
	fieldSetpoints   = "setpoints"
	fieldControls    = "controls"
	fieldHeater      = "heater"
	fieldHumidifier  = "humidifier"
)

// ErrMalformedDocument is returned when a response lacks a required field
// or carries a field of the wrong type.
var ErrMalformedDocument = errors.New("malformed status document")

// Snapshot is the controller state after the latest cycle.
type Snapshot struct {
	Unit     string
	Reading  greenhouse.Reading
	Target   greenhouse.Setpoints
	Controls greenhouse.Controls
	// Alarms are the active records in the order they were set.
	Alarms []alarm.Record
}

// AlarmsToStruct encodes the alarm list document.
func AlarmsToStruct(records []alarm.Record) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldAlarms: alarmsToList(records),
	})
}

// SnapshotToStruct encodes the status document.
func SnapshotToStruct(s Snapshot) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldUnit: s.Unit,
		fieldReading: map[string]any{
			fieldTimestamp:   formatTime(s.Reading.Timestamp),
			fieldTemperature: s.Reading.Temperature,
			fieldHumidity:    s.Reading.Humidity,
			fieldPressure:    s.Reading.Pressure,
		},
		fieldSetpoints: map[string]any{
			fieldTemperature: s.Target.Temperature,
			fieldHumidity:    s.Target.Humidity,
		},
		fieldControls: map[string]any{
			fieldHeater:     s.Controls.Heater,
			fieldHumidifier: s.Controls.Humidifier,
		},
		fieldAlarms: alarmsToList(s.Alarms),
	})
}

// AlarmsFromStruct decodes the alarm list document.
func AlarmsFromStruct(doc *structpb.Struct) ([]alarm.Record, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedDocument)
	}

	return alarmsFromValue(doc.GetFields()[fieldAlarms])
}

// SnapshotFromStruct decodes the status document.
func SnapshotFromStruct(doc *structpb.Struct) (Snapshot, error) {
	if doc == nil {
		return Snapshot{}, fmt.Errorf("%w: empty response", ErrMalformedDocument)
	}

	fields := doc.GetFields()

	reading, err := object(fields, fieldReading)
	if err != nil {
		return Snapshot{}, err
	}

	setpoints, err := object(fields, fieldSetpoints)
	if err != nil {
		return Snapshot{}, err
	}

	controls, err := object(fields, fieldControls)
	if err != nil {
		return Snapshot{}, err
	}

	timestamp, err := parseTime(reading[fieldTimestamp].GetStringValue())
	if err != nil {
		return Snapshot{}, err
	}

	records, err := alarmsFromValue(fields[fieldAlarms])
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Unit: fields[fieldUnit].GetStringValue(),
		Reading: greenhouse.Reading{
			Timestamp:   timestamp,
			Temperature: reading[fieldTemperature].GetNumberValue(),
			Humidity:    reading[fieldHumidity].GetNumberValue(),
			Pressure:    reading[fieldPressure].GetNumberValue(),
		},
		Target: greenhouse.Setpoints{
			Temperature: setpoints[fieldTemperature].GetNumberValue(),
			Humidity:    setpoints[fieldHumidity].GetNumberValue(),
		},
		Controls: greenhouse.Controls{
			Heater:     controls[fieldHeater].GetBoolValue(),
			Humidifier: controls[fieldHumidifier].GetBoolValue(),
		},
		Alarms: records,
	}, nil
}

func alarmsToList(records []alarm.Record) []any {
	list := make([]any, 0, len(records))

	for _, rec := range records {
		list = append(list, map[string]any{
			fieldCondition:   rec.Condition.Code(),
			fieldName:        rec.Condition.Name(),
			fieldTriggeredAt: formatTime(rec.TriggeredAt),
			fieldValue:       rec.Value,
		})
	}

	return list
}

func alarmsFromValue(value *structpb.Value) ([]alarm.Record, error) {
	list := value.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: %q is not a list", ErrMalformedDocument, fieldAlarms)
	}

	records := make([]alarm.Record, 0, len(list.GetValues()))

	for i, item := range list.GetValues() {
		fields := item.GetStructValue().GetFields()
		if fields == nil {
			return nil, fmt.Errorf("%w: alarm %d is not an object", ErrMalformedDocument, i)
		}

		condition, err := alarm.ParseCondition(fields[fieldCondition].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("alarm %d: %w", i, err)
		}

		if !condition.Valid() {
			return nil, fmt.Errorf("alarm %d: %w: %s", i, alarm.ErrInvalidCondition, condition.Code())
		}

		triggeredAt, err := parseTime(fields[fieldTriggeredAt].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("alarm %d: %w", i, err)
		}

		records = append(records, alarm.Record{
			Condition:   condition,
			TriggeredAt: triggeredAt,
			Value:       fields[fieldValue].GetNumberValue(),
		})
	}

	return records, nil
}

func object(fields map[string]*structpb.Value, key string) (map[string]*structpb.Value, error) {
	nested := fields[key].GetStructValue()
	if nested == nil {
		return nil, fmt.Errorf("%w: %q is not an object", ErrMalformedDocument, key)
	}

	return nested.GetFields(), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad time %q", ErrMalformedDocument, value)
	}

	return t, nil
}
