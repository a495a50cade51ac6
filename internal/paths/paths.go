package paths

import (
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/clashctl without creating it. The config
// store is created lazily on first write, so directory creation happens
// at save time, not here.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "clashctl"), nil
}

// ConfigFile returns the default config store path under ConfigDir.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}
