package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oshokin/greenhouse-monitor/internal/domain/alarm"
	"github.com/oshokin/greenhouse-monitor/internal/logger"
)

var errTestWrite = errors.New("test write error")

// fakeWriter captures Kafka messages.
type fakeWriter struct {
	// messages holds everything written.
	messages []kafka.Message
	// err is returned from WriteMessages.
	err error
	// closed is set by Close.
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)

	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true

	return nil
}

// sampleTransitions returns one trigger and one clear.
func sampleTransitions() []alarm.Transition {
	at := time.Date(2024, 3, 28, 10, 0, 0, 0, time.UTC)

	return []alarm.Transition{
		{Kind: alarm.Triggered, Condition: alarm.HighTemperature, At: at, Value: 35},
		{Kind: alarm.Cleared, Condition: alarm.LowHumidity, At: at, Value: 40},
	}
}

// TestNewEvents maps transitions to events with thresholds and IDs.
func TestNewEvents(t *testing.T) {
	t.Parallel()

	events := NewEvents("north", alarm.DefaultLimits(), sampleTransitions())
	require.Len(t, events, 2)

	require.Equal(t, TypeTriggered, events[0].Type)
	require.Equal(t, "HIGH_TEMPERATURE", events[0].Condition)
	require.Equal(t, "High Temperature", events[0].Name)
	require.InDelta(t, 30.0, events[0].Threshold, 0)
	require.Equal(t, "north-HIGH_TEMPERATURE", events[0].Key())

	require.Equal(t, TypeCleared, events[1].Type)
	require.InDelta(t, 25.0, events[1].Threshold, 0)

	_, err := uuid.Parse(events[0].ID)
	require.NoError(t, err)
	require.NotEqual(t, events[0].ID, events[1].ID)

	require.Empty(t, NewEvents("north", alarm.DefaultLimits(), nil))
}

// TestKafkaPublisher_Publish writes keyed JSON messages in one batch.
func TestKafkaPublisher_Publish(t *testing.T) {
	t.Parallel()

	writer := new(fakeWriter)
	publisher := &KafkaPublisher{writer: writer}

	events := NewEvents("north", alarm.DefaultLimits(), sampleTransitions())
	require.NoError(t, publisher.Publish(context.Background(), events))
	require.Len(t, writer.messages, 2)
	require.Equal(t, "north-LOW_HUMIDITY", string(writer.messages[1].Key))

	var decoded Event
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &decoded))
	require.Equal(t, events[0], decoded)

	// Nothing to send, nothing written.
	require.NoError(t, publisher.Publish(context.Background(), nil))
	require.Len(t, writer.messages, 2)

	writer.err = errTestWrite
	require.ErrorIs(t, publisher.Publish(context.Background(), events), errTestWrite)

	require.NoError(t, publisher.Close())
	require.True(t, writer.closed)
}

// TestLogPublisher logs triggers as warnings and clears as info.
func TestLogPublisher(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core).Sugar())

	events := NewEvents("north", alarm.DefaultLimits(), sampleTransitions())
	require.NoError(t, Multi{LogPublisher{}}.Publish(ctx, events))

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Equal(t, "Alarm triggered: High Temperature", entries[0].Message)
	require.Equal(t, zapcore.InfoLevel, entries[1].Level)
	require.Equal(t, "Alarm cleared: Low Humidity", entries[1].Message)
}

// TestMulti_JoinsErrors keeps publishing after a failure.
func TestMulti_JoinsErrors(t *testing.T) {
	t.Parallel()

	failing := &KafkaPublisher{writer: &fakeWriter{err: errTestWrite}}
	healthy := new(fakeWriter)

	multi := Multi{failing, &KafkaPublisher{writer: healthy}}
	events := NewEvents("north", alarm.DefaultLimits(), sampleTransitions())

	require.ErrorIs(t, multi.Publish(context.Background(), events), errTestWrite)
	require.Len(t, healthy.messages, 2)
	require.NoError(t, multi.Close())
	require.True(t, healthy.closed)
}
