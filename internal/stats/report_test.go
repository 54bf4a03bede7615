package stats

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arvese/streakbook/internal/history"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	j, err := history.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() {
		_ = j.Close()
	})

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	rows := []history.Outcome{
		{RecordedAt: base, SessionID: "s1", Character: "Nurse", Category: "4k", Win: true, Current: 1, Best: 1},
		{RecordedAt: base.Add(time.Minute), SessionID: "s1", Character: "Nurse", Category: "4k", Win: false, Current: 0, Best: 1},
		{RecordedAt: base.Add(2 * time.Minute), SessionID: "s2", Character: "Oni", Category: "4k", Win: true, Current: 1, Best: 1},
	}
	for _, o := range rows {
		if err := j.Append(ctx, o); err != nil {
			t.Fatalf("append outcome: %v", err)
		}
	}

	report, err := BuildReport(ctx, j, history.Filter{Character: "Nurse"})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Totals.Outcomes != 2 || report.Totals.Wins != 1 {
		t.Fatalf("unexpected totals: %+v", report.Totals)
	}
	if len(report.Aggregates) != 1 || report.Aggregates[0].Form != "WL" {
		t.Fatalf("unexpected aggregates: %+v", report.Aggregates)
	}
	if len(report.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes in report, got %d", len(report.Outcomes))
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	totals := history.Totals{Outcomes: 4, Wins: 3, Losses: 1, Sessions: 2}
	if err := RenderSummary(&buf, totals); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	for _, segment := range []string{"Outcomes: 4 (3W/1L)", "Win rate: 75.0%", "Sessions: 2"} {
		if !bytes.Contains(buf.Bytes(), []byte(segment)) {
			t.Fatalf("summary missing %q: %s", segment, out)
		}
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, history.Totals{}); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("No outcomes recorded.")) {
		t.Fatalf("expected empty notice, got %s", buf.String())
	}
}

func TestRenderTrend(t *testing.T) {
	outcomes := []history.Outcome{
		{Character: "Nurse", Category: "4k", Win: true, Current: 1, Best: 1},
		{Character: "Nurse", Category: "4k", Win: true, Current: 2, Best: 2},
		{Character: "Nurse", Category: "4k", Win: false, Current: 0, Best: 2},
	}
	var buf bytes.Buffer
	if err := RenderTrend(&buf, outcomes, 2); err != nil {
		t.Fatalf("render trend: %v", err)
	}
	out := buf.String()
	if !bytes.Contains(buf.Bytes(), []byte("Win rate (window 2):")) {
		t.Fatalf("trend missing win-rate line: %s", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Streak:")) {
		t.Fatalf("trend missing streak line: %s", out)
	}
	// A plain writer is not a terminal, so the output stays monochrome.
	if bytes.Contains(buf.Bytes(), []byte("\x1b[")) {
		t.Fatalf("expected monochrome trend for non-terminal writer: %q", out)
	}
}

func TestRenderTrendWithColorWrapsSparklines(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	outcomes := []history.Outcome{
		{Character: "Nurse", Category: "4k", Win: true, Current: 1, Best: 1},
		{Character: "Nurse", Category: "4k", Win: false, Current: 0, Best: 1},
		{Character: "Nurse", Category: "4k", Win: true, Current: 1, Best: 1},
	}
	var buf bytes.Buffer
	if err := RenderTrendWithColor(&buf, outcomes, 2, true); err != nil {
		t.Fatalf("render trend: %v", err)
	}
	out := buf.String()
	for _, code := range []string{colorCyan, colorMagenta, colorReset} {
		if !bytes.Contains(buf.Bytes(), []byte(code)) {
			t.Fatalf("expected colorized sparklines, got %q", out)
		}
	}
}

func TestColorizeForm(t *testing.T) {
	colored := ColorizeForm("WL", true)
	want := colorGreen + "W" + colorReset + colorRed + "L" + colorReset
	if colored != want {
		t.Fatalf("expected %q, got %q", want, colored)
	}
	if plain := ColorizeForm("WL", false); plain != "WL" {
		t.Fatalf("expected unchanged form, got %q", plain)
	}
}

func TestShouldUseColorHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	if shouldUseColor(&buf, true) {
		t.Fatalf("expected NO_COLOR to override forced color")
	}
	if ShouldUseColor(os.Stdout) {
		t.Fatalf("expected NO_COLOR to disable color on stdout")
	}
}
