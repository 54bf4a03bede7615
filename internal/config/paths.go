// Package config provides XDG path helpers and the profile file layout.
package config

import (
	"os"
	"path/filepath"
)

// Every tracker file lives inside one profile directory, so a profile can be
// carried around or synced as a plain folder.
const (
	stateFileName    = "streaks.json"
	historyFileName  = "history.db"
	logFileName      = "streakbook.log"
	lockFileName     = "streakbook.lock"
	killerFileName   = "killer_streaks.txt"
	survivorFileName = "survivor_streaks.txt"
	mediaDirName     = "media"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "streakbook", "config.toml")
}

// StateFile returns the streaks JSON path inside the profile.
func StateFile(profileDir string) string {
	return filepath.Join(profileDir, stateFileName)
}

// HistoryFile returns the outcome journal path inside the profile.
func HistoryFile(profileDir string) string {
	return filepath.Join(profileDir, historyFileName)
}

// LogFile returns the log path inside the profile.
func LogFile(profileDir string) string {
	return filepath.Join(profileDir, logFileName)
}

// LockFile returns the single-instance lock path inside the profile.
func LockFile(profileDir string) string {
	return filepath.Join(profileDir, lockFileName)
}

// KillerCategoriesFile returns the killer category list path.
func KillerCategoriesFile(profileDir string) string {
	return filepath.Join(profileDir, killerFileName)
}

// SurvivorCategoriesFile returns the survivor category list path.
func SurvivorCategoriesFile(profileDir string) string {
	return filepath.Join(profileDir, survivorFileName)
}

// DefaultMediaDir returns the portrait directory inside the profile.
func DefaultMediaDir(profileDir string) string {
	return filepath.Join(profileDir, mediaDirName)
}
