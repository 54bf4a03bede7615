// Package stats aggregates the outcome journal into reports.
package stats

import (
	"math"
	"sort"
	"strings"

	"github.com/arvese/streakbook/internal/history"
)

const sparkChars = " .:-=+*#%@"

// formLength is how many recent outcomes the form string shows.
const formLength = 10

// CategoryAggregate summarizes one character/category pair.
type CategoryAggregate struct {
	Character string
	Category  string
	Wins      int
	Losses    int
	WinRate   float64
	PeakBest  int
	// Form holds the latest outcomes as a W/L string, oldest first.
	Form string
}

// Aggregate groups outcomes by character and category. Input order is
// recording order; output is sorted by character, then category, byte-wise.
func Aggregate(outcomes []history.Outcome) []CategoryAggregate {
	type key struct {
		character string
		category  string
	}
	byPair := map[key]*CategoryAggregate{}
	forms := map[key][]byte{}

	for _, o := range outcomes {
		k := key{o.Character, o.Category}
		agg, ok := byPair[k]
		if !ok {
			agg = &CategoryAggregate{Character: o.Character, Category: o.Category}
			byPair[k] = agg
		}
		if o.Win {
			agg.Wins++
		} else {
			agg.Losses++
		}
		if o.Best > agg.PeakBest {
			agg.PeakBest = o.Best
		}
		mark := byte('L')
		if o.Win {
			mark = 'W'
		}
		forms[k] = append(forms[k], mark)
	}

	result := make([]CategoryAggregate, 0, len(byPair))
	for k, agg := range byPair {
		form := forms[k]
		if len(form) > formLength {
			form = form[len(form)-formLength:]
		}
		agg.Form = string(form)
		total := agg.Wins + agg.Losses
		if total > 0 {
			agg.WinRate = float64(agg.Wins) / float64(total)
		}
		result = append(result, *agg)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Character != result[j].Character {
			return result[i].Character < result[j].Character
		}
		return result[i].Category < result[j].Category
	})
	return result
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// MovingWinRate returns the rolling share of wins over the window, one
// point per outcome in recording order.
func MovingWinRate(outcomes []history.Outcome, window int) []float64 {
	values := make([]float64, len(outcomes))
	for i, o := range outcomes {
		if o.Win {
			values[i] = 1
		}
	}
	return MovingAverage(values, window)
}

// StreakSeries returns the running streak value after each outcome.
func StreakSeries(outcomes []history.Outcome) []float64 {
	values := make([]float64, len(outcomes))
	for i, o := range outcomes {
		values[i] = float64(o.Current)
	}
	return values
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
