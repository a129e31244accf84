package config

import (
	"os"
	"path/filepath"
)

// WorkspaceDir is the per-workspace directory holding config, logs and the
// session database.
const WorkspaceDir = ".probe"

// FindWorkspaceRoot walks up from the working directory looking for a .probe
// directory. It falls back to the working directory itself.
func FindWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	originalDir := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, WorkspaceDir)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return originalDir, nil
}

// DefaultConfigPath returns <workspace>/.probe/config.yaml.
func DefaultConfigPath(workspace string) string {
	return filepath.Join(workspace, WorkspaceDir, "config.yaml")
}

// ResolvePath makes a relative path absolute against workspace.
func ResolvePath(workspace, path string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workspace, path)
}
