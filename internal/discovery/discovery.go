// Package discovery finds trackable characters in a media directory of PNG
// portraits and derives display names from file names.
package discovery

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Entry is one discovered portrait: the derived character name and the
// portrait path exactly as it will be stored.
type Entry struct {
	Name string
	Path string
}

// Scan lists PNG files in mediaDir and returns one entry per file, in
// directory order. Subdirectories, non-PNG files, and files with no stem
// (a bare ".png") are skipped; the extension check is case-insensitive. A
// missing or unreadable directory yields no entries, which is the normal
// state of a fresh profile.
func Scan(mediaDir string) []Entry {
	dirEntries, err := os.ReadDir(mediaDir)
	if err != nil {
		return nil
	}

	var found []Entry
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if !strings.EqualFold(ext, ".png") {
			continue
		}
		stem := strings.TrimSuffix(name, ext)
		if stem == "" {
			continue
		}
		found = append(found, Entry{
			Name: FormatName(stem),
			Path: filepath.Join(mediaDir, name),
		})
	}
	return found
}

// FormatName turns a portrait file stem into a display name: underscores
// become spaces, and a space is inserted before an uppercase rune that
// directly follows a lowercase one, so both The_Trapper and GhostFace come
// out as two words while Oni stays one.
func FormatName(stem string) string {
	spaced := strings.ReplaceAll(stem, "_", " ")

	var b strings.Builder
	b.Grow(len(spaced) + 4)
	var prev rune
	for i, r := range spaced {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(prev) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}
