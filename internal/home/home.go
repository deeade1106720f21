// Package home manages the splitscan home directory layout: uploaded
// originals, split output files, the batch database and the config file.
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the splitscan home directory.
	DefaultDirName = ".splitscan"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// DBFileName is the batch database file name.
	DBFileName = "batches.db"
)

// Dir represents the splitscan home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.splitscan).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}
	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// DBPath returns the path to the batch database file.
func (d *Dir) DBPath() string {
	return filepath.Join(d.path, DBFileName)
}

// UploadsDir returns the directory holding uploaded originals.
func (d *Dir) UploadsDir() string {
	return filepath.Join(d.path, "uploads")
}

// UploadPath returns the stored path for a batch's original document.
func (d *Dir) UploadPath(batchID, filename string) string {
	return filepath.Join(d.UploadsDir(), batchID+"_"+filepath.Base(filename))
}

// SplitsDir returns the directory holding a batch's split output files.
func (d *Dir) SplitsDir(batchID string) string {
	return filepath.Join(d.path, "splits", batchID)
}

// EnsureExists creates the home directory and subdirectories if they
// don't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{d.path, d.UploadsDir(), filepath.Join(d.path, "splits")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// RemoveBatchFiles deletes a batch's stored original and split outputs.
func (d *Dir) RemoveBatchFiles(batchID, sourcePath string) error {
	if sourcePath != "" {
		if err := os.Remove(sourcePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove original: %w", err)
		}
	}
	if err := os.RemoveAll(d.SplitsDir(batchID)); err != nil {
		return fmt.Errorf("failed to remove splits: %w", err)
	}
	return nil
}
