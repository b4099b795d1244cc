package adapter

import (
	"fmt"
	"os"

	m "profbisect.dev/pkg/profbisect/internal/model"
)

// CandidateFSAdapter abstracts the transient files that carry a candidate
// configuration to the decider. It hides direct `os` access so the decider
// logic can be tested without touching the disk.
type CandidateFSAdapter interface {
	// CreateTemp creates an empty file in dir (the OS temp dir when empty)
	// whose name matches pattern, and returns its path.
	CreateTemp(dir, pattern string) (m.Path, error)

	// WriteFile writes content to a file with the given permissions.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// Remove deletes a single file. Removing a missing file is not an error.
	Remove(path m.Path) error
}

// LocalCandidateFSAdapter is the os-backed CandidateFSAdapter.
type LocalCandidateFSAdapter struct{}

// NewLocalCandidateFSAdapter constructs a LocalCandidateFSAdapter.
func NewLocalCandidateFSAdapter() *LocalCandidateFSAdapter {
	return &LocalCandidateFSAdapter{}
}

// CreateTemp creates an empty temp file and closes it.
func (a *LocalCandidateFSAdapter) CreateTemp(dir, pattern string) (m.Path, error) {
	file, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", err
	}

	name := file.Name()
	if err := file.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return m.Path(name), nil
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalCandidateFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	return os.WriteFile(string(path), content, perm)
}

// Remove deletes a single file.
func (a *LocalCandidateFSAdapter) Remove(path m.Path) error {
	err := os.Remove(string(path))
	if err != nil && os.IsNotExist(err) {
		return nil
	}

	return err
}
