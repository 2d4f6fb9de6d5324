package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/promptlens/pkg/types"
)

func fixedClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func recordRun(t *testing.T) *Recorder {
	t.Helper()

	start := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	rec := NewRecorder("https://example.com/gallery", "gemini-1.5-flash")
	rec.now = fixedClock(start, start.Add(3*time.Second))

	events := []*types.QueueEvent{
		types.NewRunStartEvent("run-1", 2),
		types.NewProgressEvent("run-1", 0.5),
		types.NewResultEvent("run-1", types.PromptResult{
			Source:     types.ImageRecord{Src: "https://example.com/a.png", MimeType: "image/png"},
			PromptText: "A red fox in snow",
			Model:      "gemini-1.5-flash",
			TokenCount: 5,
		}),
		types.NewUsageUpdateEvent("run-1", types.UsageTotals{Tokens: 5, EstimatedCost: 0.00003}),
		types.NewResultEvent("other-run", types.PromptResult{PromptText: "ignored"}),
		types.NewProgressEvent("run-1", 1),
		types.NewResultEvent("run-1", types.PromptResult{
			Source:      types.ImageRecord{Src: "https://example.com/b.jpg", MimeType: "image/jpeg"},
			PromptText:  "Error generating prompt for model gemini-1.5-flash.",
			Model:       "gemini-1.5-flash",
			Placeholder: true,
		}),
		types.NewUsageUpdateEvent("run-1", types.UsageTotals{Tokens: 5, EstimatedCost: 0.00003}),
		types.NewCompletedEvent("run-1"),
	}
	for _, ev := range events {
		rec.Record(ev)
	}
	return rec
}

func TestRecorder(t *testing.T) {
	summary := recordRun(t).Summary()

	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Processed())
	assert.Equal(t, 1, summary.Placeholders)
	assert.Equal(t, 5, summary.Usage.Tokens)
	assert.Equal(t, 3*time.Second, summary.Duration)
	assert.Equal(t, []string{"A red fox in snow"}, summary.Prompts())
}

func TestRecorderStoppedAndFailed(t *testing.T) {
	rec := NewRecorder("https://example.com", "m")
	rec.Record(types.NewRunStartEvent("run-2", 4))
	rec.Record(types.NewStoppedEvent("run-2"))
	assert.Equal(t, StatusStopped, rec.Summary().Status)

	failed := NewRecorder("https://example.com", "m")
	failed.Fail(errors.New("page unreachable"))
	summary := failed.Summary()
	assert.Equal(t, StatusFailed, summary.Status)
	assert.Equal(t, "page unreachable", summary.Error)
	assert.False(t, summary.StartTime.IsZero())
}

func TestArtifactWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	summary := recordRun(t).Summary()

	require.NoError(t, NewArtifactWriter(dir).WriteAll(summary))

	raw, err := os.ReadFile(filepath.Join(dir, ResultsFile))
	require.NoError(t, err)
	var decoded RunSummary
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Results, 2)
	assert.True(t, decoded.Results[1].Placeholder)

	md, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	require.NoError(t, err)
	content := string(md)
	assert.Contains(t, content, "# Prompt Run Summary")
	assert.Contains(t, content, "**Status:** completed")
	assert.Contains(t, content, "### 1. https://example.com/a.png")
	assert.Contains(t, content, "A red fox in snow")
	assert.Contains(t, content, "⚠ Error generating prompt for model gemini-1.5-flash.")
	assert.Contains(t, content, "- **Images:** 2/2")
	assert.Contains(t, content, "- **Estimated Cost:** $0.000030")
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "12,345", formatNumber(12345))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}

func TestParseVerbosity(t *testing.T) {
	assert.Equal(t, VerbosityQuiet, ParseVerbosity("quiet"))
	assert.Equal(t, VerbosityVerbose, ParseVerbosity("VERBOSE"))
	assert.Equal(t, VerbosityDebug, ParseVerbosity("debug"))
	assert.Equal(t, VerbosityNormal, ParseVerbosity(""))
	assert.Equal(t, VerbosityNormal, ParseVerbosity("loud"))
}

func TestConsoleLevels(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, VerbosityQuiet)

	c.Infof("collected %d images", 3)
	c.Verbosef("hidden detail")
	c.Warningf("slow page")
	c.Errorf("boom")

	out := buf.String()
	assert.NotContains(t, out, "collected")
	assert.NotContains(t, out, "hidden detail")
	assert.Contains(t, out, "⚠ Warning: slow page")
	assert.Contains(t, out, "✗ Error: boom")
}

func TestConsoleResult(t *testing.T) {
	result := types.PromptResult{
		Source:     types.ImageRecord{Src: "https://example.com/a.png"},
		PromptText: "A lighthouse at dusk",
		TokenCount: 5,
	}

	var normal bytes.Buffer
	NewConsole(&normal, VerbosityNormal).Result(1, result)
	assert.Empty(t, normal.String())

	var verbose bytes.Buffer
	NewConsole(&verbose, VerbosityVerbose).Result(1, result)
	assert.Contains(t, verbose.String(), "#1 https://example.com/a.png (5 tokens)")
	assert.Contains(t, verbose.String(), "A lighthouse at dusk")

	var quiet bytes.Buffer
	result.Placeholder = true
	result.PromptText = "Error generating prompt for model m."
	NewConsole(&quiet, VerbosityQuiet).Result(2, result)
	assert.Contains(t, quiet.String(), "Error generating prompt for model m.")
}

func TestConsoleSummary(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, VerbosityQuiet).Summary(recordRun(t).Summary())

	out := buf.String()
	assert.Contains(t, out, "RUN SUMMARY")
	assert.Contains(t, out, "✓ COMPLETED")
	assert.Contains(t, out, "Images: 2/2 (1 failed)")
	assert.Contains(t, out, "Tokens: 5")
	assert.True(t, strings.Contains(out, "Estimated cost: $0.000030"))
}
