package alarmcache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/greenhouse-monitor/internal/domain/alarm"
)

// TestEncodeDecode converts records to hash fields and back.
func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 28, 12, 0, 0, 0, time.UTC)
	records := []alarm.Record{
		{Condition: alarm.HighTemperature, TriggeredAt: ts, Value: 35},
		{Condition: alarm.LowPressure, TriggeredAt: ts.Add(time.Minute), Value: 980},
	}

	fields, err := encode(records)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	require.Contains(t, fields, "HIGH_TEMPERATURE")
	require.Contains(t, fields["LOW_PRESSURE"], `"name":"Low Pressure"`)

	raw := make(map[string]string, len(fields))
	for k, v := range fields {
		raw[k] = v.(string)
	}

	raw["NO_ALARM"] = `{}`
	raw["SOMETHING_ELSE"] = `{}`

	decoded, err := decode(raw)
	require.NoError(t, err)
	require.Equal(t, records, decoded)

	_, err = decode(map[string]string{"HIGH_HUMIDITY": "{"})
	require.Error(t, err)
}

// TestKey pins the key layout.
func TestKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ghc:alarms:north", Key("north"))
}

// TestSync_Unreachable reports a connection failure.
func TestSync_Unreachable(t *testing.T) {
	t.Parallel()

	// Reserve a port and close it so nothing listens there.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})

	mirror := NewRedisMirror(client, "test", time.Minute)
	defer func() {
		_ = mirror.Close()
	}()

	err = mirror.Sync(context.Background(), []alarm.Record{{Condition: alarm.HighHumidity, TriggeredAt: time.Now()}})
	require.Error(t, err)
}
