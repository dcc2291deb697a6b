package config

import (
	"os"
	"path/filepath"
)

// FindConfigDir walks up from startDir looking for catalogapi.toml and
// returns the directory holding it. If no ancestor has one, startDir itself
// is returned so .env and relative sources still resolve against it.
func FindConfigDir(startDir string) (string, error) {
	start, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, ConfigFilename)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return start, nil
		}
		dir = parent
	}
}
