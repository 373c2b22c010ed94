package marker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/evolution-x/site-metadata/internal/config"
	"github.com/evolution-x/site-metadata/internal/logger"
)

// ErrHeld is returned when a live process already holds the marker.
var ErrHeld = errors.New("another run is in progress")

// Marker is a held lock file.
type Marker struct {
	// path is the lock file location.
	path string
}

// Filename returns the marker name used by tool.
func Filename(tool string) string {
	return "." + tool + ".lock"
}

// Acquire creates the lock file at path, replacing it when its owner is gone.
func Acquire(ctx context.Context, path string) (*Marker, error) {
	path = filepath.Clean(path)

	if err := clearStale(ctx, path); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), config.DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("create marker directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, config.DefaultFilePermissions)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrHeld)
		}

		return nil, fmt.Errorf("create marker: %w", err)
	}

	_, err = file.WriteString(strconv.Itoa(os.Getpid()))
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(path)

		return nil, fmt.Errorf("write marker: %w", err)
	}

	logger.DebugKV(ctx, "Marker acquired", "path", path)

	return &Marker{path: path}, nil
}

// Release removes the lock file.
func (m *Marker) Release() error {
	if m == nil {
		return nil
	}

	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove marker: %w", err)
	}

	return nil
}

// clearStale removes a marker whose recorded process no longer runs.
func clearStale(ctx context.Context, path string) error {
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("read marker: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err == nil && isAlive(pid) {
		return fmt.Errorf("%s (pid %d): %w", path, pid, ErrHeld)
	}

	logger.InfoKV(ctx, "Removing stale marker", "path", path, "pid", strings.TrimSpace(string(contents)))

	if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale marker: %w", err)
	}

	return nil
}

// isAlive reports whether pid belongs to a running process.
func isAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	if pid == os.Getpid() {
		return true
	}

	process, err := ps.FindProcess(pid)

	return err == nil && process != nil
}
