// Package categories loads streak category lists from plain text files.
package categories

import (
	"bufio"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Built-in category lists used when a file is missing or unusable.
var (
	DefaultKiller   = []string{"4k", "3k", "Perkless 4k", "Perkless 3k"}
	DefaultSurvivor = []string{"Solo escape", "3 out"}
)

// Load reads one category per line from path. Lines are trimmed; empty lines
// and lines starting with '#' are skipped; order and duplicates are kept as
// written. Load never fails: when the file is missing, unreadable, or yields
// no categories, it is rewritten as a commented starter listing the defaults
// and the defaults are returned. Starter write failures are logged only.
func Load(path string, defaults []string, logger *zap.Logger) []string {
	if logger == nil {
		logger = zap.NewNop()
	}
	cats, err := readLines(path)
	if err == nil && len(cats) > 0 {
		return cats
	}
	if err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to read category file",
			zap.String("path", path),
			zap.Error(err))
	}
	if werr := writeStarter(path, defaults); werr != nil {
		logger.Warn("failed to create category file",
			zap.String("path", path),
			zap.Error(werr))
	}
	return append([]string(nil), defaults...)
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only category file.
			_ = cerr
		}
	}()

	var cats []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cats = append(cats, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cats, nil
}

func writeStarter(path string, defaults []string) error {
	var b strings.Builder
	b.WriteString("# Streak Categories Configuration\n")
	b.WriteString("# Each line represents a streak type you want to track.\n")
	b.WriteString("# Lines starting with # are comments and will be ignored.\n")
	b.WriteString("# Empty lines are also ignored.\n")
	b.WriteString("#\n")
	b.WriteString("# Default streak categories:\n")
	for _, cat := range defaults {
		b.WriteString(cat)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
