// Package main provides the CLI entrypoint for streakbook.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/arvese/streakbook/internal/categories"
	"github.com/arvese/streakbook/internal/config"
	"github.com/arvese/streakbook/internal/discovery"
	"github.com/arvese/streakbook/internal/history"
	"github.com/arvese/streakbook/internal/roster"
	"github.com/arvese/streakbook/internal/stats"
	"github.com/arvese/streakbook/internal/tui"
)

const (
	defaultProfileDir  = "."
	defaultLogLevel    = "info"
	defaultTrendWindow = 10
)

var (
	flagProfileDir string
	flagMediaDir   string
	flagLogLevel   string
	flagPropagate  bool
	flagWatchMedia bool

	statsCharacter   string
	statsCategory    string
	statsSince       string
	statsLast        int
	statsTrendWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "streakbook",
		Short:         "Win streak tracker for game characters",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTrackerCmd,
	}

	rootCmd.PersistentFlags().StringVar(&flagProfileDir, "dir", defaultProfileDir, "profile directory holding streaks and category files")
	rootCmd.PersistentFlags().StringVar(&flagMediaDir, "media", "", "portrait directory (default: <dir>/media)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagPropagate, "propagate-best", true, "count every 4k win as a 3k result")
	rootCmd.Flags().BoolVar(&flagWatchMedia, "watch-media", true, "rescan automatically when portraits change")

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newRecordCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newCategoriesCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// settings are the resolved runtime options: flags override config values,
// config values override defaults.
type settings struct {
	profileDir string
	mediaDir   string
	logLevel   string
	propagate  bool
	watchMedia bool
}

func resolveSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "dir", &flagProfileDir, fileCfg.Tracker.ProfileDir)
	applyStringConfig(cmd, "media", &flagMediaDir, fileCfg.Tracker.MediaDir)
	applyStringConfig(cmd, "log-level", &flagLogLevel, fileCfg.Tracker.LogLevel)
	applyBoolConfig(cmd, "propagate-best", &flagPropagate, fileCfg.Tracker.PropagateBest)
	applyBoolConfig(cmd, "watch-media", &flagWatchMedia, fileCfg.Tracker.WatchMedia)

	s := settings{
		profileDir: flagProfileDir,
		mediaDir:   flagMediaDir,
		logLevel:   flagLogLevel,
		propagate:  flagPropagate,
		watchMedia: flagWatchMedia,
	}
	if s.mediaDir == "" {
		s.mediaDir = config.DefaultMediaDir(s.profileDir)
	}
	return s, nil
}

// newLogger builds a zap logger at the given level. With a path it logs to
// that file, otherwise to stderr.
func newLogger(level, path string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	if path != "" {
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func loadSets(s settings, logger *zap.Logger) roster.CategorySets {
	return roster.CategorySets{
		Killer:   categories.Load(config.KillerCategoriesFile(s.profileDir), categories.DefaultKiller, logger),
		Survivor: categories.Load(config.SurvivorCategoriesFile(s.profileDir), categories.DefaultSurvivor, logger),
	}
}

func openStore(s settings, logger *zap.Logger) *roster.Store {
	sets := loadSets(s, logger)
	opts := roster.Options{PropagateBest: s.propagate}
	st := roster.NewStore(config.StateFile(s.profileDir), s.mediaDir, sets, opts, logger)
	st.Load()
	return st
}

func runTrackerCmd(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.profileDir, 0o755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	if err := os.MkdirAll(s.mediaDir, 0o755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}

	lock := flock.New(config.LockFile(s.profileDir))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire profile lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another streakbook instance is already using %s", s.profileDir)
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil {
			logErrf("failed to release profile lock: %v\n", uerr)
		}
	}()

	// The TUI owns the terminal, so logs go to a file in the profile.
	logger, err := newLogger(s.logLevel, config.LogFile(s.profileDir))
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	st := openStore(s, logger)

	var journal *history.Journal
	if j, jerr := history.Open(config.HistoryFile(s.profileDir)); jerr != nil {
		logger.Warn("failed to open history journal, outcomes will not be journaled", zap.Error(jerr))
	} else {
		journal = j
		defer func() {
			if cerr := journal.Close(); cerr != nil {
				logger.Warn("failed to close history journal", zap.Error(cerr))
			}
		}()
	}

	var watcher *discovery.Watcher
	if s.watchMedia {
		w, werr := discovery.NewWatcher(s.mediaDir, logger)
		if werr != nil {
			logger.Warn("failed to watch media directory, live refresh disabled",
				zap.String("dir", s.mediaDir),
				zap.Error(werr))
		} else {
			watcher = w
			watcher.Start()
			defer watcher.Close()
		}
	}

	model := tui.NewModel(st, journal, watcher, s.mediaDir, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the roster with all streaks",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(s.logLevel, "")
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	st := openStore(s, logger)
	chars := st.Snapshot()
	if len(chars) == 0 {
		_, werr := fmt.Fprintf(cmd.OutOrStdout(), "No characters yet. Add PNG portraits to %s\n", s.mediaDir)
		return werr
	}

	headers := []string{"Character", "Category", "Current", "Best"}
	rows := make([][]string, 0, len(chars)*4)
	for _, c := range chars {
		if len(c.Streaks) == 0 {
			rows = append(rows, []string{c.Name, "-", "-", "-"})
			continue
		}
		for i, stk := range c.Streaks {
			name := ""
			if i == 0 {
				name = c.Name
			}
			rows = append(rows, []string{name, stk.Name, strconv.Itoa(stk.Current), strconv.Itoa(stk.Best)})
		}
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newRecordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record <win|loss> <character> [category]",
		Short: "Record an outcome without opening the TUI",
		Long: `Record a single win or loss for a character.

Character and category names are case-sensitive and must match the tracked
names exactly. Without a category the character's first streak is used.
The profile lock is held while the outcome is saved, so record fails while
the tracker is open on the same profile.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: runRecordCmd,
	}
}

func runRecordCmd(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	var win bool
	switch strings.ToLower(args[0]) {
	case "win", "w":
		win = true
	case "loss", "l":
		win = false
	default:
		return fmt.Errorf("outcome must be win or loss, got %q", args[0])
	}

	// Record mutates the same profile a running TUI holds open; both take
	// the profile lock.
	if err := os.MkdirAll(s.profileDir, 0o755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	lock := flock.New(config.LockFile(s.profileDir))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire profile lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another streakbook instance is already using %s", s.profileDir)
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil {
			logErrf("failed to release profile lock: %v\n", uerr)
		}
	}()

	logger, err := newLogger(s.logLevel, "")
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	st := openStore(s, logger)
	name := args[1]
	if !st.Select(name) {
		return fmt.Errorf("unknown character %q (names are case-sensitive, see: streakbook list)", name)
	}
	if len(args) == 3 {
		if !st.SelectCategory(args[2]) {
			return fmt.Errorf("unknown category %q for %s", args[2], name)
		}
	}
	streak, ok := st.SelectedStreak()
	if !ok {
		return fmt.Errorf("%s has no streak categories", name)
	}

	current, best := st.Record(win)
	if st.SaveDegraded() {
		return fmt.Errorf("failed to save streaks for %s", name)
	}
	appendHistory(logger, s, name, streak.Name, win, current, best)

	outcome := "loss"
	if win {
		outcome = "win"
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s (current %d, best %d)\n", name, streak.Name, outcome, current, best); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// appendHistory journals one outcome. History is best-effort: failures are
// logged and the recorded streak stands.
func appendHistory(logger *zap.Logger, s settings, character, category string, win bool, current, best int) {
	j, err := history.Open(config.HistoryFile(s.profileDir))
	if err != nil {
		logger.Warn("failed to open history journal", zap.Error(err))
		return
	}
	defer func() {
		if cerr := j.Close(); cerr != nil {
			logger.Warn("failed to close history journal", zap.Error(cerr))
		}
	}()

	o := history.Outcome{
		RecordedAt: time.Now(),
		SessionID:  uuid.NewString(),
		Character:  character,
		Category:   category,
		Win:        win,
		Current:    current,
		Best:       best,
	}
	if err := j.Append(context.Background(), o); err != nil {
		logger.Warn("failed to append outcome to history", zap.Error(err))
	}
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show outcome statistics from the journal",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsCharacter, "character", "", "character filter (exact name)")
	cmd.Flags().StringVar(&statsCategory, "category", "", "category filter (exact name)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N outcomes")
	cmd.Flags().IntVar(&statsTrendWindow, "trend-window", defaultTrendWindow, "moving win-rate window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, perr := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if perr != nil {
			return fmt.Errorf("invalid --since value: %w", perr)
		}
		sinceTime = &parsed
	}
	if statsTrendWindow <= 0 {
		return fmt.Errorf("--trend-window must be > 0")
	}

	j, err := history.Open(config.HistoryFile(s.profileDir))
	if err != nil {
		return fmt.Errorf("failed to open history journal: %w", err)
	}
	defer func() {
		if cerr := j.Close(); cerr != nil {
			logErrf("failed to close history journal: %v\n", cerr)
		}
	}()

	filter := history.Filter{
		Character: statsCharacter,
		Category:  statsCategory,
		Since:     sinceTime,
		Last:      statsLast,
	}
	report, err := stats.BuildReport(context.Background(), j, filter)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	out := cmd.OutOrStdout()
	useColor := stats.ShouldUseColor(out)
	if err := stats.RenderSummary(out, report.Totals); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(report.Aggregates) > 0 {
		headers := []string{"Character", "Category", "W", "L", "Win rate", "Peak best", "Form"}
		rows := make([][]string, 0, len(report.Aggregates))
		for _, a := range report.Aggregates {
			rows = append(rows, []string{
				a.Character,
				a.Category,
				strconv.Itoa(a.Wins),
				strconv.Itoa(a.Losses),
				fmt.Sprintf("%.1f%%", a.WinRate*100),
				strconv.Itoa(a.PeakBest),
				stats.ColorizeForm(a.Form, useColor),
			})
		}
		aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft}
		if _, err := fmt.Fprintln(out, renderTable(headers, rows, aligns)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if _, err := fmt.Fprintln(out, ""); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if err := stats.RenderTrend(out, report.Outcomes, statsTrendWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories [killer|survivor]",
		Short: "Print configured streak categories",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCategoriesCmd,
	}
}

func runCategoriesCmd(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(s.logLevel, "")
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()
	sets := loadSets(s, logger)

	out := cmd.OutOrStdout()
	printGroup := func(title string, names []string) error {
		if title != "" {
			if _, werr := fmt.Fprintln(out, title+":"); werr != nil {
				return fmt.Errorf("failed to write output: %w", werr)
			}
		}
		for _, name := range names {
			line := name
			if title != "" {
				line = "  " + name
			}
			if _, werr := fmt.Fprintln(out, line); werr != nil {
				return fmt.Errorf("failed to write output: %w", werr)
			}
		}
		return nil
	}

	if len(args) == 0 {
		if err := printGroup("killer", sets.Killer); err != nil {
			return err
		}
		return printGroup("survivor", sets.Survivor)
	}
	switch strings.ToLower(args[0]) {
	case "killer":
		return printGroup("", sets.Killer)
	case "survivor":
		return printGroup("", sets.Survivor)
	default:
		return fmt.Errorf("unknown group %q (use killer or survivor)", args[0])
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# streakbook configuration
# Uncomment a value to enable it. CLI flags override config values.

[tracker]
# profile-dir = %q         # Directory holding streaks.json and category files
# media-dir = ""            # Portrait directory (default: <profile-dir>/media)
# propagate-best = true     # Count every 4k win as a 3k result
# watch-media = true        # Rescan automatically when portraits change
# log-level = %q         # Log level (debug, info, warn, error)
`,
		defaultProfileDir,
		defaultLogLevel,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
