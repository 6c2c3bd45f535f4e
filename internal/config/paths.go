package config

import (
	"os"
	"path/filepath"
)

func GetUserConfigDir() (string, error) {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "ser"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ser"), nil
}

// GetProjectDir walks up from the working directory looking for a .ser or
// .git directory, falling back to the working directory itself if
// neither is found.
func GetProjectDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, ".ser")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return wd, nil
		}
		dir = parent
	}
}

func EnsureConfigDirs(userConfigDir, projectDir string) error {
	if err := os.MkdirAll(userConfigDir, 0o755); err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(projectDir, ".ser"), 0o755)
}
