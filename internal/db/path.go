package db

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	// FileName is the database file name on every platform.
	FileName = "city_app.db"
	// AndroidDataDir is the app-private files directory on Android.
	AndroidDataDir = "/data/data/com.example.citymover/files"
)

// DefaultPath returns the database location for the running platform.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return PathFor(runtime.GOOS, home)
}

// PathFor picks the database location for the given GOOS and home directory:
// the app-private directory on Android, a dot-file in the home directory on
// Linux, and a path relative to the working directory elsewhere.
func PathFor(goos, home string) string {
	switch goos {
	case "android":
		return filepath.Join(AndroidDataDir, FileName)
	case "linux":
		if home == "" {
			return FileName
		}
		return filepath.Join(home, "."+FileName)
	default:
		return FileName
	}
}
