package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/greenhouse-monitor/internal/domain/alarm"
)

// Event types.
const (
	TypeTriggered = "ALARM_TRIGGERED"
	TypeCleared   = "ALARM_CLEARED"
)

// Event is the notification payload for one alarm transition.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Unit      string    `json:"unit"`
	Condition string    `json:"condition"`
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	At        time.Time `json:"at"`
}

// NewEvents converts the transitions of one sweep into events.
func NewEvents(unit string, limits alarm.Limits, transitions []alarm.Transition) []Event {
	events := make([]Event, 0, len(transitions))

	for _, tr := range transitions {
		threshold, _ := limits.Threshold(tr.Condition)

		eventType := TypeTriggered
		if tr.Kind == alarm.Cleared {
			eventType = TypeCleared
		}

		events = append(events, Event{
			ID:        uuid.NewString(),
			Type:      eventType,
			Unit:      unit,
			Condition: tr.Condition.Code(),
			Name:      tr.Condition.Name(),
			Value:     tr.Value,
			Threshold: threshold,
			At:        tr.At,
		})
	}

	return events
}

// Key partitions events so each condition of a unit stays ordered.
func (e Event) Key() string {
	return fmt.Sprintf("%s-%s", e.Unit, e.Condition)
}

// Encode returns the JSON form of the event.
func (e Event) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", e.ID, err)
	}

	return data, nil
}
