// Package roster owns the tracked characters and their streak counters: the
// data model, reconciliation against discovered portraits, JSON persistence,
// and the mutating store the UI talks to.
package roster

import "strings"

const (
	// GroupNameSurvivor marks the alternate group. This is the only
	// case-insensitive name match in the package; character identity and
	// category lookups are exact.
	GroupNameSurvivor = "survivor"

	// CategoryFourK and CategoryThreeK are the category pair linked by the
	// best-propagation rule for killer characters.
	CategoryFourK  = "4k"
	CategoryThreeK = "3k"
)

// Streak is one win/loss counter: the running streak and its high-water
// mark. Best never decreases; a loss only resets Current.
type Streak struct {
	Name    string `json:"name"`
	Current int    `json:"current"`
	Best    int    `json:"best"`
}

// Character is a tracked entity with its portrait path and ordered streaks.
type Character struct {
	Name      string   `json:"name"`
	ImagePath string   `json:"image_path"`
	Streaks   []Streak `json:"streaks"`
}

// CategorySets holds the configured category lists for the two groups.
type CategorySets struct {
	Killer   []string
	Survivor []string
}

// IsSurvivor reports whether the character belongs to the survivor group.
func (c Character) IsSurvivor() bool {
	return strings.EqualFold(c.Name, GroupNameSurvivor)
}

// Clone returns a copy sharing no memory with the receiver.
func (c Character) Clone() Character {
	out := c
	out.Streaks = append([]Streak(nil), c.Streaks...)
	return out
}

// CloneAll deep-copies a collection.
func CloneAll(chars []Character) []Character {
	out := make([]Character, len(chars))
	for i, c := range chars {
		out[i] = c.Clone()
	}
	return out
}

func (c Character) streakIndex(name string) int {
	for i, s := range c.Streaks {
		if s.Name == name {
			return i
		}
	}
	return -1
}

func (s CategorySets) categoriesFor(c Character) []string {
	if c.IsSurvivor() {
		return s.Survivor
	}
	return s.Killer
}
