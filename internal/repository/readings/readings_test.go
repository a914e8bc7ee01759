package readings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/greenhouse-monitor/internal/domain/greenhouse"
)

var errTestSink = errors.New("test sink error")

// recordingSink remembers appended readings and can fail on demand.
type recordingSink struct {
	// got collects appended readings.
	got []greenhouse.Reading
	// err is returned from Append and Close.
	err error
	// closed is set by Close.
	closed bool
}

func (s *recordingSink) Append(_ context.Context, r greenhouse.Reading) error {
	s.got = append(s.got, r)

	return s.err
}

func (s *recordingSink) Close() error {
	s.closed = true

	return s.err
}

// TestFileLog_AppendsLines writes two readings and checks the line format.
func TestFileLog_AppendsLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ghdata.txt")
	log := NewFileLog(path)

	ts := time.Date(2024, 3, 7, 9, 5, 1, 0, time.UTC)

	require.NoError(t, log.Append(context.Background(), greenhouse.Reading{
		Timestamp:   ts,
		Temperature: 24.56,
		Humidity:    51,
		Pressure:    1003.04,
	}))
	require.NoError(t, log.Append(context.Background(), greenhouse.Reading{
		Timestamp:   ts.Add(2 * time.Second),
		Temperature: -3,
		Humidity:    99.9,
		Pressure:    980,
	}))
	require.NoError(t, log.Close())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	require.Equal(t, []string{
		"Thu Mar  7 09:05:01 2024, 24.6, 51.0,1003.0",
		"Thu Mar  7 09:05:03 2024, -3.0, 99.9, 980.0",
	}, lines)
}

// TestFileLog_OpenError reports an unwritable path.
func TestFileLog_OpenError(t *testing.T) {
	t.Parallel()

	log := NewFileLog(filepath.Join(t.TempDir(), "missing-dir", "ghdata.txt"))
	require.Error(t, log.Append(context.Background(), greenhouse.Reading{}))
}

// TestMulti_FansOut keeps writing after a failing sink and joins errors.
func TestMulti_FansOut(t *testing.T) {
	t.Parallel()

	var (
		failing = &recordingSink{err: errTestSink}
		healthy = new(recordingSink)
		sinks   = Multi{failing, healthy}
		reading = greenhouse.Reading{Temperature: 20}
	)

	err := sinks.Append(context.Background(), reading)
	require.ErrorIs(t, err, errTestSink)
	require.Equal(t, []greenhouse.Reading{reading}, healthy.got)

	require.ErrorIs(t, sinks.Close(), errTestSink)
	require.True(t, failing.closed)
	require.True(t, healthy.closed)

	require.NoError(t, Multi{}.Append(context.Background(), reading))
}

// TestConnectPostgres_InvalidDSN fails before any network traffic.
func TestConnectPostgres_InvalidDSN(t *testing.T) {
	t.Parallel()

	_, err := ConnectPostgres(context.Background(), "::not a dsn", "unit")
	require.Error(t, err)
}
