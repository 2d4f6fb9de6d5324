package scrape

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/promptlens/pkg/collector"
	"github.com/entrhq/promptlens/pkg/queue"
)

// Config describes one scrape run.
type Config struct {
	// Page to collect images from
	URL string `yaml:"url" json:"url"`

	// Render the page in a headless browser instead of parsing the raw HTML
	Render bool `yaml:"render" json:"render"`

	// Model and prompt override the saved settings when set
	Model  string `yaml:"model" json:"model"`
	Prompt string `yaml:"prompt" json:"prompt"`

	// Collector and queue tuning
	Concurrency int           `yaml:"concurrency" json:"concurrency"`
	Pacing      time.Duration `yaml:"pacing" json:"pacing"`
	ScrapeDelay time.Duration `yaml:"scrape_delay" json:"scrape_delay"`

	// Copy generated prompts to the clipboard when the run ends
	Copy bool `yaml:"copy" json:"copy"`

	Artifacts ArtifactConfig `yaml:"artifacts" json:"artifacts"`
	Logging   LoggingConfig  `yaml:"logging" json:"logging"`
}

// ArtifactConfig defines artifact generation configuration
type ArtifactConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	OutputDir string `yaml:"output_dir" json:"output_dir"`
}

// LoggingConfig defines console output configuration
type LoggingConfig struct {
	// Verbosity controls console output: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`
}

// DefaultConfig returns a configuration with the panel's defaults.
func DefaultConfig() *Config {
	return &Config{
		Concurrency: collector.DefaultConcurrency,
		Pacing:      queue.DefaultPacing,
		ScrapeDelay: collector.DefaultScrapeDelay,
		Artifacts: ArtifactConfig{
			Enabled:   true,
			OutputDir: ".promptlens/runs",
		},
		Logging: LoggingConfig{Verbosity: "normal"},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}

	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid url: %q (must be an absolute http or https URL)", c.URL)
	}

	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency cannot be negative")
	}

	if c.Pacing < 0 {
		return fmt.Errorf("pacing cannot be negative")
	}

	if c.ScrapeDelay < 0 {
		return fmt.Errorf("scrape_delay cannot be negative")
	}

	if c.Artifacts.Enabled && c.Artifacts.OutputDir == "" {
		return fmt.Errorf("artifacts.output_dir is required when artifacts are enabled")
	}

	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}

	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

// LoadConfig reads a YAML run file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}
