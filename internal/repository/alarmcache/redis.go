package alarmcache

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oshokin/greenhouse-monitor/internal/domain/alarm"
)

// keyPrefix namespaces the mirror keys.
const keyPrefix = "ghc:alarms:"

// entry is the JSON value stored per active condition.
type entry struct {
	Name        string    `json:"name"`
	TriggeredAt time.Time `json:"triggered_at"`
	Value       float64   `json:"value"`
}

// RedisMirror keeps a Redis hash of the active alarms of one unit, keyed by
// condition code. The whole hash is replaced on every sync.
type RedisMirror struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisMirror creates a mirror for the unit. A zero ttl keeps the key forever.
func NewRedisMirror(client *redis.Client, unit string, ttl time.Duration) *RedisMirror {
	return &RedisMirror{
		client: client,
		key:    Key(unit),
		ttl:    ttl,
	}
}

// Key returns the Redis key holding the alarms of unit.
func Key(unit string) string {
	return keyPrefix + unit
}

// Sync replaces the mirrored alarms with records in one transaction.
func (m *RedisMirror) Sync(ctx context.Context, records []alarm.Record) error {
	fields, err := encode(records)
	if err != nil {
		return err
	}

	_, err = m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, m.key)

		if len(fields) == 0 {
			return nil
		}

		pipe.HSet(ctx, m.key, fields)

		if m.ttl > 0 {
			pipe.Expire(ctx, m.key, m.ttl)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("sync alarms to Redis: %w", err)
	}

	return nil
}

// Load reads the mirrored alarms back, oldest trigger first.
func (m *RedisMirror) Load(ctx context.Context) ([]alarm.Record, error) {
	fields, err := m.client.HGetAll(ctx, m.key).Result()
	if err != nil {
		return nil, fmt.Errorf("get alarms from Redis: %w", err)
	}

	return decode(fields)
}

// Close releases the Redis client.
func (m *RedisMirror) Close() error {
	return m.client.Close()
}

// encode converts records into hash fields.
func encode(records []alarm.Record) (map[string]any, error) {
	fields := make(map[string]any, len(records))

	for _, rec := range records {
		data, err := json.Marshal(entry{
			Name:        rec.Condition.Name(),
			TriggeredAt: rec.TriggeredAt,
			Value:       rec.Value,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal alarm %s: %w", rec.Condition.Code(), err)
		}

		fields[rec.Condition.Code()] = string(data)
	}

	return fields, nil
}

// decode converts hash fields back into records, skipping unknown codes.
func decode(fields map[string]string) ([]alarm.Record, error) {
	records := make([]alarm.Record, 0, len(fields))

	for code, data := range fields {
		condition, err := alarm.ParseCondition(code)
		if err != nil || !condition.Valid() {
			continue
		}

		var e entry
		if err = json.Unmarshal([]byte(data), &e); err != nil {
			return nil, fmt.Errorf("unmarshal alarm %s: %w", code, err)
		}

		records = append(records, alarm.Record{
			Condition:   condition,
			TriggeredAt: e.TriggeredAt,
			Value:       e.Value,
		})
	}

	slices.SortFunc(records, func(a, b alarm.Record) int {
		if c := a.TriggeredAt.Compare(b.TriggeredAt); c != 0 {
			return c
		}

		return cmp.Compare(a.Condition, b.Condition)
	})

	return records, nil
}
