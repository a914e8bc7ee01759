package readings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oshokin/greenhouse-monitor/internal/domain/greenhouse"
)

// logFilePermissions lets operators read the log without the controller user.
const logFilePermissions = 0o644

// FileLog appends readings to a text file as
// "Mon Jan _2 15:04:05 2006, TT.T, HH.H,PPPP.P".
type FileLog struct {
	// path is the log file location.
	path string
	// mu serialises appends.
	mu sync.Mutex
}

// NewFileLog creates a log appending to path. The file is created on first append.
func NewFileLog(path string) *FileLog {
	return &FileLog{
		path: filepath.Clean(path),
	}
}

// Append writes one line for the reading.
func (l *FileLog) Append(_ context.Context, reading greenhouse.Reading) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFilePermissions)
	if err != nil {
		return fmt.Errorf("open readings log: %w", err)
	}

	if _, err = file.WriteString(formatLine(reading)); err != nil {
		_ = file.Close()

		return fmt.Errorf("write readings log: %w", err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("close readings log: %w", err)
	}

	return nil
}

// Close is a no-op; the file is opened per append.
func (l *FileLog) Close() error {
	return nil
}

// formatLine renders one log line. Values are right-aligned with one
// decimal place so the columns line up in a text viewer.
func formatLine(reading greenhouse.Reading) string {
	return fmt.Sprintf("%s,%5.1f,%5.1f,%6.1f\n",
		reading.Timestamp.Format(time.ANSIC),
		reading.Temperature,
		reading.Humidity,
		reading.Pressure,
	)
}
