package roster

import (
	"sort"

	"github.com/arvese/streakbook/internal/discovery"
)

// Reconcile merges discovered portraits into the persisted collection and
// ensures every character carries every configured category for its group.
// Characters and categories are only ever added, never removed, so entries
// that no longer appear in the media directory or the category files keep
// their history. The result is sorted by name, byte-wise ascending. The
// returned flag reports whether anything was added; callers persist on true.
//
// Reconcile does not modify its inputs, and running it again on its own
// output with the same inputs changes nothing.
func Reconcile(persisted []Character, discovered []discovery.Entry, sets CategorySets) ([]Character, bool) {
	chars := CloneAll(persisted)
	changed := false

	known := make(map[string]struct{}, len(chars))
	for _, c := range chars {
		known[c.Name] = struct{}{}
	}
	for _, entry := range discovered {
		if _, ok := known[entry.Name]; ok {
			continue
		}
		known[entry.Name] = struct{}{}
		chars = append(chars, Character{
			Name:      entry.Name,
			ImagePath: entry.Path,
			Streaks:   []Streak{},
		})
		changed = true
	}

	for i := range chars {
		if ensureCategories(&chars[i], sets.categoriesFor(chars[i])) {
			changed = true
		}
	}

	sort.Slice(chars, func(i, j int) bool { return chars[i].Name < chars[j].Name })
	return chars, changed
}

// ensureCategories appends a zeroed streak for every configured category the
// character does not already track, in configured order, after the existing
// streaks. Matching is exact, so renaming a category in the file adds a new
// streak alongside the old one.
func ensureCategories(c *Character, names []string) bool {
	changed := false
	for _, name := range names {
		if c.streakIndex(name) >= 0 {
			continue
		}
		c.Streaks = append(c.Streaks, Streak{Name: name})
		changed = true
	}
	return changed
}
