package roster

import (
	"go.uber.org/zap"

	"github.com/arvese/streakbook/internal/discovery"
)

// Options tune store behavior beyond paths.
type Options struct {
	// PropagateBest links killer categories: every recorded 4k win also
	// counts as a 3k result, so the 3k best is floored at the 4k best.
	PropagateBest bool
}

// Store owns the live collection: loading, media reconciliation, selection
// state, outcome recording, and persistence. Selection is process state and
// is never written to disk. The store is single-goroutine; the UI event loop
// is its only caller.
type Store struct {
	statePath string
	mediaDir  string
	sets      CategorySets
	opts      Options
	logger    *zap.Logger

	chars      []Character
	charIdx    int
	streakIdx  int
	saveFailed bool
}

// NewStore builds a store over the given state file and media directory.
// Call Load before anything else.
func NewStore(statePath, mediaDir string, sets CategorySets, opts Options, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		statePath: statePath,
		mediaDir:  mediaDir,
		sets:      sets,
		opts:      opts,
		logger:    logger,
	}
}

// Load reads the persisted collection, merges in the media directory, and
// selects the first character. Load never fails: a malformed state file is
// logged and treated as empty, then rebuilt from discovery.
func (s *Store) Load() {
	chars, err := LoadFile(s.statePath)
	if err != nil {
		s.logger.Warn("failed to load streaks file, starting fresh",
			zap.String("path", s.statePath),
			zap.Error(err))
		chars = nil
	}
	s.chars = chars
	s.charIdx = 0
	s.streakIdx = 0
	s.refresh("")
}

// Rescan re-reads the media directory and reconciles. The current selection
// survives by name when the collection is reshuffled. Reports whether
// anything new was added.
func (s *Store) Rescan() bool {
	var keep string
	if c, ok := s.Selected(); ok {
		keep = c.Name
	}
	return s.refresh(keep)
}

func (s *Store) refresh(keepName string) bool {
	discovered := discovery.Scan(s.mediaDir)
	chars, changed := Reconcile(s.chars, discovered, s.sets)
	s.chars = chars
	if changed {
		s.persist()
	}
	if keepName != "" {
		for i, c := range s.chars {
			if c.Name == keepName {
				s.charIdx = i
				break
			}
		}
	}
	s.clampSelection()
	return changed
}

// Snapshot returns a deep copy of the collection for display.
func (s *Store) Snapshot() []Character {
	return CloneAll(s.chars)
}

// Names lists character names in collection order.
func (s *Store) Names() []string {
	names := make([]string, len(s.chars))
	for i, c := range s.chars {
		names[i] = c.Name
	}
	return names
}

// CategoryNames lists the selected character's streak names in order.
func (s *Store) CategoryNames() []string {
	c, ok := s.Selected()
	if !ok {
		return nil
	}
	names := make([]string, len(c.Streaks))
	for i, st := range c.Streaks {
		names[i] = st.Name
	}
	return names
}

// Select switches to the named character, exact match only, and resets the
// category selection to the first streak. A miss changes nothing.
func (s *Store) Select(name string) bool {
	for i, c := range s.chars {
		if c.Name == name {
			s.charIdx = i
			s.streakIdx = 0
			s.clampSelection()
			return true
		}
	}
	return false
}

// SelectCategory switches to the named streak of the selected character,
// exact match only. A miss changes nothing.
func (s *Store) SelectCategory(name string) bool {
	c, ok := s.Selected()
	if !ok {
		return false
	}
	idx := c.streakIndex(name)
	if idx < 0 {
		return false
	}
	s.streakIdx = idx
	return true
}

// Selected returns a copy of the selected character.
func (s *Store) Selected() (Character, bool) {
	if len(s.chars) == 0 {
		return Character{}, false
	}
	s.clampSelection()
	return s.chars[s.charIdx].Clone(), true
}

// SelectedStreak returns a copy of the selected streak.
func (s *Store) SelectedStreak() (Streak, bool) {
	c, ok := s.Selected()
	if !ok || len(c.Streaks) == 0 {
		return Streak{}, false
	}
	return c.Streaks[s.streakIdx], true
}

// Record applies an outcome to the selected streak: a win bumps Current and
// lifts Best to match, a loss resets Current to zero. Best is a high-water
// mark and never goes down. The collection is persisted afterwards; a write
// failure is logged and the in-memory result stands. With nothing selected
// Record is a no-op. Returns the streak's values after the update.
func (s *Store) Record(win bool) (current, best int) {
	if len(s.chars) == 0 {
		return 0, 0
	}
	s.clampSelection()
	c := &s.chars[s.charIdx]
	if len(c.Streaks) == 0 {
		return 0, 0
	}

	st := &c.Streaks[s.streakIdx]
	if win {
		st.Current++
		if st.Current > st.Best {
			st.Best = st.Current
		}
	} else {
		st.Current = 0
	}
	if win && s.opts.PropagateBest && !c.IsSurvivor() {
		propagateBest(c)
	}
	current, best = st.Current, st.Best

	s.persist()
	return current, best
}

// SaveDegraded reports whether the most recent persistence attempt failed.
func (s *Store) SaveDegraded() bool {
	return s.saveFailed
}

// propagateBest floors the 3k best at the 4k best. Runs on every killer win
// regardless of which category is active; survivors are exempt. Both
// categories must exist by their exact names.
func propagateBest(c *Character) {
	fourIdx := c.streakIndex(CategoryFourK)
	threeIdx := c.streakIndex(CategoryThreeK)
	if fourIdx < 0 || threeIdx < 0 {
		return
	}
	if c.Streaks[fourIdx].Best > c.Streaks[threeIdx].Best {
		c.Streaks[threeIdx].Best = c.Streaks[fourIdx].Best
	}
}

func (s *Store) persist() {
	if err := SaveFile(s.statePath, s.chars); err != nil {
		s.saveFailed = true
		s.logger.Warn("failed to save streaks",
			zap.String("path", s.statePath),
			zap.Error(err))
		return
	}
	s.saveFailed = false
}

func (s *Store) clampSelection() {
	if len(s.chars) == 0 {
		s.charIdx = 0
		s.streakIdx = 0
		return
	}
	if s.charIdx < 0 {
		s.charIdx = 0
	}
	if s.charIdx >= len(s.chars) {
		s.charIdx = len(s.chars) - 1
	}
	n := len(s.chars[s.charIdx].Streaks)
	if n == 0 {
		s.streakIdx = 0
		return
	}
	if s.streakIdx < 0 {
		s.streakIdx = 0
	}
	if s.streakIdx >= n {
		s.streakIdx = n - 1
	}
}
