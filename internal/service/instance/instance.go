package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another process runs the same executable.
var ErrAlreadyRunning = errors.New("another instance is already running")

// linuxCommLength is how much of the executable name /proc/<pid>/stat keeps.
const linuxCommLength = 15

// processLister lists running processes.
type processLister func() ([]ps.Process, error)

// Guard detects other running copies of an executable.
type Guard struct {
	executable string
	pid        int
	list       processLister
	// nameLimit truncates names before comparing; zero compares them whole.
	nameLimit int
}

// NewGuard returns a guard for the current process executable.
func NewGuard() (*Guard, error) {
	path, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}

	guard := &Guard{
		executable: filepath.Base(path),
		pid:        os.Getpid(),
		list:       ps.Processes,
	}

	if runtime.GOOS == "linux" {
		guard.nameLimit = linuxCommLength
	}

	return guard, nil
}

// Check fails with ErrAlreadyRunning if a different process has the same
// executable name. It is a startup hint, not a lock: two copies started
// together may both pass.
func (g *Guard) Check() error {
	processList, err := g.list()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	for _, process := range processList {
		if process.Pid() == g.pid {
			continue
		}

		if !sameExecutable(truncate(process.Executable(), g.nameLimit), truncate(g.executable, g.nameLimit)) {
			continue
		}

		return fmt.Errorf("%w: %s (pid %d)", ErrAlreadyRunning, g.executable, process.Pid())
	}

	return nil
}

// sameExecutable compares names, ignoring case on Windows.
func sameExecutable(a, b string) bool {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return strings.EqualFold(a, b)
	}

	return a == b
}

// truncate cuts name to limit bytes, as the kernel does for comm.
func truncate(name string, limit int) string {
	if limit <= 0 || len(name) <= limit {
		return name
	}

	return name[:limit]
}
