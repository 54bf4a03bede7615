package stats

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/arvese/streakbook/internal/history"
)

const (
	fallbackWidth = 80

	colorReset   = "\x1b[0m"
	colorCyan    = "\x1b[36m"
	colorMagenta = "\x1b[35m"
	colorGreen   = "\x1b[32m"
	colorRed     = "\x1b[31m"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Totals     history.Totals
	Aggregates []CategoryAggregate
	Outcomes   []history.Outcome
}

// BuildReport loads and prepares journal data for rendering.
func BuildReport(ctx context.Context, j *history.Journal, f history.Filter) (Report, error) {
	outcomes, err := j.List(ctx, f)
	if err != nil {
		return Report{}, err
	}
	totals, err := j.TotalsFor(ctx, f)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Totals:     totals,
		Aggregates: Aggregate(outcomes),
		Outcomes:   outcomes,
	}, nil
}

// RenderSummary prints the headline numbers for the filtered journal.
func RenderSummary(w io.Writer, t history.Totals) error {
	if t.Outcomes == 0 {
		_, err := fmt.Fprintln(w, "No outcomes recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Outcomes: %d (%dW/%dL)\n", t.Outcomes, t.Wins, t.Losses); err != nil {
		return err
	}
	rate := float64(t.Wins) / float64(t.Outcomes)
	if _, err := fmt.Fprintf(w, "Win rate: %.1f%%\n", rate*100); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %d\n", t.Sessions); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderTrend prints win-rate and streak sparklines over the filtered
// outcomes, sized to the terminal. Sparklines are colorized when w is a
// terminal and NO_COLOR is unset.
func RenderTrend(w io.Writer, outcomes []history.Outcome, window int) error {
	return renderTrend(w, outcomes, window, false)
}

// RenderTrendWithColor renders the trend with optional forced color output.
func RenderTrendWithColor(w io.Writer, outcomes []history.Outcome, window int, forceColor bool) error {
	return renderTrend(w, outcomes, window, forceColor)
}

func renderTrend(w io.Writer, outcomes []history.Outcome, window int, forceColor bool) error {
	if len(outcomes) < 2 {
		return nil
	}
	width := terminalWidth() - 24
	if width < 10 {
		width = 10
	}

	rates := fitSeries(MovingWinRate(outcomes, window), width)
	streaks := fitSeries(StreakSeries(outcomes), width)

	rateSpark := Sparkline(rates)
	streakSpark := Sparkline(streaks)
	if shouldUseColor(w, forceColor) {
		rateSpark = colorCyan + rateSpark + colorReset
		streakSpark = colorMagenta + streakSpark + colorReset
	}

	if _, err := fmt.Fprintln(w, "Trend"); err != nil {
		return err
	}
	last := rates[len(rates)-1]
	if _, err := fmt.Fprintf(w, "Win rate (window %d): %s %.0f%%\n", window, rateSpark, last*100); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Streak:              %s %d\n", streakSpark, outcomes[len(outcomes)-1].Current); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// fitSeries keeps the newest values when the series is wider than the plot.
func fitSeries(values []float64, width int) []float64 {
	if width > 0 && len(values) > width {
		return values[len(values)-width:]
	}
	return values
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

// ShouldUseColor reports whether output to w may be colorized: w must be a
// terminal and NO_COLOR must be unset.
func ShouldUseColor(w io.Writer) bool {
	return shouldUseColor(w, false)
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// ColorizeForm wraps the W and L markers of a form string in green and red.
// With useColor false the form is returned unchanged.
func ColorizeForm(form string, useColor bool) string {
	if !useColor || form == "" {
		return form
	}
	var b strings.Builder
	for _, r := range form {
		switch r {
		case 'W':
			b.WriteString(colorGreen)
			b.WriteRune(r)
			b.WriteString(colorReset)
		case 'L':
			b.WriteString(colorRed)
			b.WriteRune(r)
			b.WriteString(colorReset)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
