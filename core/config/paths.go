package config

import (
	"os"
	"path/filepath"
)

const AppName = "minledger"

func AppDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "."+AppName)
}

// ArchiveDir is where a node journals sealed blocks unless told otherwise.
func ArchiveDir() string {
	return filepath.Join(AppDir(), "archive")
}
