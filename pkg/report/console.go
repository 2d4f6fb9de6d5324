package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/promptlens/pkg/types"
)

// Verbosity is the console output level.
type Verbosity int

const (
	// VerbosityQuiet shows only errors, warnings and the final summary
	VerbosityQuiet Verbosity = iota
	// VerbosityNormal shows run progress (default)
	VerbosityNormal
	// VerbosityVerbose also prints every generated prompt
	VerbosityVerbose
	// VerbosityDebug shows internal details
	VerbosityDebug
)

// ParseVerbosity converts a level name to a Verbosity. Unknown names map to
// VerbosityNormal.
func ParseVerbosity(level string) Verbosity {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "quiet":
		return VerbosityQuiet
	case "verbose":
		return VerbosityVerbose
	case "debug":
		return VerbosityDebug
	default:
		return VerbosityNormal
	}
}

var (
	salmonPink  = lipgloss.Color("#FFB3BA")
	mintGreen   = lipgloss.Color("#A8E6CF")
	amber       = lipgloss.Color("#FDE68A")
	mutedGray   = lipgloss.Color("#6B7280")
	brightWhite = lipgloss.Color("#F9FAFB")
)

type consoleStyles struct {
	header  lipgloss.Style
	section lipgloss.Style
	info    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
	prompt  lipgloss.Style
}

func newConsoleStyles(r *lipgloss.Renderer) consoleStyles {
	return consoleStyles{
		header:  r.NewStyle().Foreground(brightWhite).Bold(true),
		section: r.NewStyle().Foreground(salmonPink).Bold(true),
		info:    r.NewStyle().Foreground(salmonPink),
		success: r.NewStyle().Foreground(mintGreen).Bold(true),
		warning: r.NewStyle().Foreground(amber),
		err:     r.NewStyle().Foreground(salmonPink).Bold(true),
		muted:   r.NewStyle().Foreground(mutedGray),
		prompt: r.NewStyle().
			Foreground(brightWhite).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedGray).
			Padding(0, 1),
	}
}

// Console prints styled, level-filtered CLI output.
type Console struct {
	level  Verbosity
	writer io.Writer
	styles consoleStyles
}

// NewConsole creates a console writing to w. Colors are used only when w is
// a terminal.
func NewConsole(w io.Writer, level Verbosity) *Console {
	return &Console{
		level:  level,
		writer: w,
		styles: newConsoleStyles(lipgloss.NewRenderer(w)),
	}
}

// Level returns the console verbosity.
func (c *Console) Level() Verbosity {
	return c.level
}

// Header prints a prominent header message
func (c *Console) Header(message string) {
	if c.level >= VerbosityNormal {
		rule := strings.Repeat("=", 70)
		fmt.Fprintf(c.writer, "\n%s\n", c.styles.header.Render(rule))
		fmt.Fprintf(c.writer, "%s\n", c.styles.header.Render("  "+message))
		fmt.Fprintf(c.writer, "%s\n", c.styles.header.Render(rule))
	}
}

// Section prints a section divider
func (c *Console) Section(title string) {
	if c.level >= VerbosityNormal {
		fmt.Fprintln(c.writer)
		fmt.Fprintln(c.writer, c.styles.section.Render("▶ "+title))
		fmt.Fprintln(c.writer, c.styles.muted.Render(strings.Repeat("─", 50)))
	}
}

// Successf prints a success message with checkmark
func (c *Console) Successf(format string, args ...interface{}) {
	if c.level >= VerbosityNormal {
		fmt.Fprintln(c.writer, c.styles.success.Render("✓ "+fmt.Sprintf(format, args...)))
	}
}

// Infof prints an informational message
func (c *Console) Infof(format string, args ...interface{}) {
	if c.level >= VerbosityNormal {
		fmt.Fprintln(c.writer, c.styles.info.Render(fmt.Sprintf(format, args...)))
	}
}

// Warningf prints a warning message
func (c *Console) Warningf(format string, args ...interface{}) {
	fmt.Fprintln(c.writer, c.styles.warning.Render("⚠ Warning: "+fmt.Sprintf(format, args...)))
}

// Errorf prints an error message
func (c *Console) Errorf(format string, args ...interface{}) {
	fmt.Fprintln(c.writer, c.styles.err.Render("✗ Error: "+fmt.Sprintf(format, args...)))
}

// Verbosef prints detailed information (only in verbose mode)
func (c *Console) Verbosef(format string, args ...interface{}) {
	if c.level >= VerbosityVerbose {
		fmt.Fprintln(c.writer, c.styles.muted.Render("→ "+fmt.Sprintf(format, args...)))
	}
}

// Debugf prints debug information (only in debug mode)
func (c *Console) Debugf(format string, args ...interface{}) {
	if c.level >= VerbosityDebug {
		fmt.Fprintln(c.writer, c.styles.muted.Render("[DEBUG] "+fmt.Sprintf(format, args...)))
	}
}

// Result prints one prompt result. Prompts are shown in verbose mode,
// placeholders always.
func (c *Console) Result(index int, result types.PromptResult) {
	if result.Placeholder {
		c.Warningf("image %d (%s): %s", index, result.Source.Src, result.PromptText)
		return
	}
	if c.level < VerbosityVerbose {
		return
	}
	fmt.Fprintln(c.writer, c.styles.muted.Render(fmt.Sprintf("  #%d %s (%d tokens)", index, result.Source.Src, result.TokenCount)))
	fmt.Fprintln(c.writer, c.styles.prompt.Render(strings.TrimSpace(result.PromptText)))
}

// Summary prints the final run summary. It is shown at every level.
func (c *Console) Summary(summary *RunSummary) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(c.writer)
	fmt.Fprintln(c.writer, c.styles.header.Render(rule))
	fmt.Fprintln(c.writer, c.styles.header.Render("  RUN SUMMARY"))
	fmt.Fprintln(c.writer, c.styles.header.Render(rule))

	fmt.Fprint(c.writer, "  Status: ")
	switch summary.Status {
	case StatusCompleted:
		fmt.Fprintln(c.writer, c.styles.success.Render("✓ COMPLETED"))
	case StatusStopped:
		fmt.Fprintln(c.writer, c.styles.warning.Render("⚠ STOPPED"))
	case StatusFailed:
		fmt.Fprintln(c.writer, c.styles.err.Render("✗ FAILED"))
	default:
		fmt.Fprintln(c.writer, summary.Status)
	}

	fmt.Fprintf(c.writer, "  Page: %s\n", summary.PageURL)
	fmt.Fprintf(c.writer, "  Model: %s\n", summary.Model)
	fmt.Fprintf(c.writer, "  Duration: %s\n", summary.Duration.Round(time.Second))
	fmt.Fprintf(c.writer, "  Images: %d/%d", summary.Processed(), summary.Total)
	if summary.Placeholders > 0 {
		fmt.Fprintf(c.writer, " (%d failed)", summary.Placeholders)
	}
	fmt.Fprintln(c.writer)
	fmt.Fprintf(c.writer, "  Tokens: %s\n", formatNumber(summary.Usage.Tokens))
	fmt.Fprintf(c.writer, "  Estimated cost: $%.6f\n", summary.Usage.EstimatedCost)

	if summary.Error != "" {
		fmt.Fprintln(c.writer)
		fmt.Fprintln(c.writer, c.styles.err.Render("  Error Details:"))
		fmt.Fprintf(c.writer, "    %s\n", summary.Error)
	}

	fmt.Fprintln(c.writer, c.styles.header.Render(rule))
	fmt.Fprintln(c.writer)
}

// Newline adds a blank line (respects log level)
func (c *Console) Newline() {
	if c.level >= VerbosityNormal {
		fmt.Fprintln(c.writer)
	}
}
