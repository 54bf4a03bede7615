package roster

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Encode writes the collection as indented JSON. The output is stable for
// equal input, so unchanged state produces byte-identical files. Values are
// written as stored; the codec does not enforce counter invariants.
func Encode(w io.Writer, chars []Character) error {
	if chars == nil {
		chars = []Character{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(chars); err != nil {
		return fmt.Errorf("failed to encode streaks: %w", err)
	}
	return nil
}

// Decode reads a collection previously written by Encode. Anything after
// the top-level array makes the input malformed.
func Decode(r io.Reader) ([]Character, error) {
	dec := json.NewDecoder(r)
	var chars []Character
	if err := dec.Decode(&chars); err != nil {
		return nil, fmt.Errorf("failed to decode streaks: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("failed to decode streaks: trailing data")
	}
	return chars, nil
}

// LoadFile reads the collection at path. A missing file is an empty
// collection and no error; any other failure is returned for the caller to
// degrade on.
func LoadFile(path string) ([]Character, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open streaks file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only streaks file.
			_ = cerr
		}
	}()
	return Decode(file)
}

// SaveFile writes the collection to path via a temp file and rename, so an
// interrupted write leaves the previous state intact.
func SaveFile(path string, chars []Character) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "streaks-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp streaks file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := Encode(tmpFile, chars); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close streaks file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write streaks file: %w", err)
	}
	return nil
}
