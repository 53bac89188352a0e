package entities

import (
	"os"
	"path/filepath"
	"strings"
)

// CleanAndExpandPath expands environment variables and a leading ~ in path and cleans the result.
// The approach follows github.com/btcsuite/btcd.
func CleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.Getenv("HOME")
		}

		path = strings.Replace(path, "~", home, 1)
	}

	// os.ExpandEnv only knows POSIX-style $VARIABLE
	return filepath.Clean(os.ExpandEnv(path))
}
