// Package sandbox manages the per-user working directories that hold
// downloaded artifacts and the fetch cache. Each user gets one directory
// beneath a common base, named by the user identity.
package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phrazzld/trackbot/internal/domain"
)

const dirMode = 0o755

// ErrEmptyBaseDir is returned when a Sandbox is created without a base directory.
var ErrEmptyBaseDir = errors.New("sandbox base directory cannot be empty")

// Sandbox resolves and manages per-user directories under a base directory.
type Sandbox struct {
	baseDir string
}

// New creates a Sandbox rooted at baseDir. The directory itself is created by Init.
func New(baseDir string) (*Sandbox, error) {
	if baseDir == "" {
		return nil, ErrEmptyBaseDir
	}
	return &Sandbox{baseDir: filepath.Clean(baseDir)}, nil
}

// BaseDir returns the cleaned base directory.
func (s *Sandbox) BaseDir() string {
	return s.baseDir
}

// Init creates the base directory if it does not exist.
func (s *Sandbox) Init() error {
	if err := os.MkdirAll(s.baseDir, dirMode); err != nil {
		return fmt.Errorf("create sandbox base directory: %w", err)
	}
	return nil
}

// Path returns the directory of the given user without touching the disk.
func (s *Sandbox) Path(user domain.UserID) string {
	return filepath.Join(s.baseDir, user.String())
}

// Ensure creates the user's directory if needed and returns its path.
// It is called before every fetch, so a directory removed by the reaper
// while a worker is active is simply recreated.
func (s *Sandbox) Ensure(user domain.UserID) (string, error) {
	if err := user.Validate(); err != nil {
		return "", err
	}

	path := s.Path(user)
	if err := os.MkdirAll(path, dirMode); err != nil {
		return "", fmt.Errorf("create sandbox for user %s: %w", user, err)
	}
	return path, nil
}

// Remove deletes the user's directory and everything in it.
// A missing directory is not an error.
func (s *Sandbox) Remove(user domain.UserID) error {
	if err := user.Validate(); err != nil {
		return err
	}

	if err := os.RemoveAll(s.Path(user)); err != nil {
		return fmt.Errorf("remove sandbox for user %s: %w", user, err)
	}
	return nil
}

// Exists reports whether the user's directory is present on disk.
func (s *Sandbox) Exists(user domain.UserID) bool {
	info, err := os.Stat(s.Path(user))
	return err == nil && info.IsDir()
}
