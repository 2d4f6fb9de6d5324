package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Artifact file names.
const (
	ResultsFile = "results.json"
	SummaryFile = "summary.md"
)

// ArtifactWriter writes run artifacts into one directory.
type ArtifactWriter struct {
	outputDir string
}

// NewArtifactWriter creates a new artifact writer
func NewArtifactWriter(outputDir string) *ArtifactWriter {
	return &ArtifactWriter{
		outputDir: outputDir,
	}
}

// WriteAll writes every artifact format
func (w *ArtifactWriter) WriteAll(summary *RunSummary) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := w.WriteResultsJSON(summary); err != nil {
		return fmt.Errorf("failed to write results JSON: %w", err)
	}

	if err := w.WriteSummaryMarkdown(summary); err != nil {
		return fmt.Errorf("failed to write summary markdown: %w", err)
	}

	return nil
}

// WriteResultsJSON writes the full run summary as JSON
func (w *ArtifactWriter) WriteResultsJSON(summary *RunSummary) error {
	path := filepath.Join(w.outputDir, ResultsFile)

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	if writeErr := os.WriteFile(path, data, 0600); writeErr != nil {
		return fmt.Errorf("failed to write results JSON: %w", writeErr)
	}

	return nil
}

// WriteSummaryMarkdown writes a human-readable markdown summary
func (w *ArtifactWriter) WriteSummaryMarkdown(summary *RunSummary) error {
	path := filepath.Join(w.outputDir, SummaryFile)

	if writeErr := os.WriteFile(path, []byte(RenderMarkdown(summary)), 0600); writeErr != nil {
		return fmt.Errorf("failed to write summary markdown: %w", writeErr)
	}

	return nil
}

// RenderMarkdown renders the run summary as markdown.
func RenderMarkdown(summary *RunSummary) string {
	var md strings.Builder

	md.WriteString("# Prompt Run Summary\n\n")
	md.WriteString(fmt.Sprintf("**Page:** %s\n\n", summary.PageURL))
	md.WriteString(fmt.Sprintf("**Model:** %s\n\n", summary.Model))
	md.WriteString(fmt.Sprintf("**Status:** %s\n\n", summary.Status))
	if !summary.StartTime.IsZero() {
		md.WriteString(fmt.Sprintf("**Started:** %s\n\n", summary.StartTime.Format(time.RFC3339)))
		md.WriteString(fmt.Sprintf("**Completed:** %s\n\n", summary.EndTime.Format(time.RFC3339)))
		md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", summary.Duration.Round(time.Millisecond)))
	}

	if summary.Error != "" {
		md.WriteString(fmt.Sprintf("❌ **Error:** %s\n\n", summary.Error))
	}

	if len(summary.Results) > 0 {
		md.WriteString("## Prompts\n\n")
		for i, result := range summary.Results {
			md.WriteString(fmt.Sprintf("### %d. %s\n\n", i+1, result.Source.Src))
			if result.Placeholder {
				md.WriteString(fmt.Sprintf("⚠ %s\n\n", result.PromptText))
				continue
			}
			md.WriteString(fmt.Sprintf("%s\n\n", strings.TrimSpace(result.PromptText)))
			md.WriteString(fmt.Sprintf("_%d tokens_\n\n", result.TokenCount))
		}
	}

	md.WriteString("## Usage\n\n")
	md.WriteString(fmt.Sprintf("- **Images:** %d/%d\n", summary.Processed(), summary.Total))
	md.WriteString(fmt.Sprintf("- **Failed:** %d\n", summary.Placeholders))
	md.WriteString(fmt.Sprintf("- **Tokens:** %s\n", formatNumber(summary.Usage.Tokens)))
	md.WriteString(fmt.Sprintf("- **Estimated Cost:** $%.6f\n", summary.Usage.EstimatedCost))

	return md.String()
}

// formatNumber formats large numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%d,%03d,%03d", n/1000000, (n/1000)%1000, n%1000)
}
