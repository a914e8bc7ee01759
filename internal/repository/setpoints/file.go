package setpoints

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/greenhouse-monitor/internal/config"
	"github.com/oshokin/greenhouse-monitor/internal/domain/greenhouse"
)

// Repository defines persistence operations for the setpoints.
type Repository interface {
	Load(ctx context.Context) (greenhouse.Setpoints, error)
	Save(ctx context.Context, setpoints greenhouse.Setpoints) error
}

// FileRepository persists setpoints to a YAML file on disk.
type FileRepository struct {
	// path is the filesystem location of the setpoints file.
	path string
	// mu protects concurrent access to the file.
	mu sync.Mutex
}

// ErrNotFound is returned when the setpoints file does not exist yet.
var ErrNotFound = errors.New("setpoints not found")

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the setpoints from disk.
func (r *FileRepository) Load(_ context.Context) (greenhouse.Setpoints, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result greenhouse.Setpoints

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return result, ErrNotFound
		}

		return result, fmt.Errorf("read setpoints file: %w", err)
	}

	if err = yaml.Unmarshal(contents, &result); err != nil {
		return result, fmt.Errorf("decode setpoints file: %w", err)
	}

	return result, nil
}

// Save writes the setpoints to disk, replacing the previous contents.
func (r *FileRepository) Save(_ context.Context, setpoints greenhouse.Setpoints) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(setpoints)
	if err != nil {
		return fmt.Errorf("encode setpoints: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write setpoints file: %w", err)
	}

	return nil
}

// LoadOrInit returns the stored setpoints. When none are stored, or the
// stored temperature target is zero, the defaults are saved and returned.
func LoadOrInit(ctx context.Context, repo Repository) (greenhouse.Setpoints, error) {
	stored, err := repo.Load(ctx)

	switch {
	case err == nil && !stored.IsZero():
		return stored, nil
	case err == nil, errors.Is(err, ErrNotFound):
		// Fall through to defaults.
	default:
		return greenhouse.Setpoints{}, fmt.Errorf("load setpoints: %w", err)
	}

	defaults := greenhouse.DefaultSetpoints()
	if err = repo.Save(ctx, defaults); err != nil {
		return greenhouse.Setpoints{}, fmt.Errorf("save default setpoints: %w", err)
	}

	return defaults, nil
}
