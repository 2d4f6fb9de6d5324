package config

import (
	"fmt"
	"strings"
	"sync"
)

const (
	// SectionIDSettings is the identifier for the panel settings section
	SectionIDSettings = "settings"

	// DefaultModel is used until the user picks another model.
	DefaultModel = "gemini-1.5-flash"

	// DefaultPromptTemplate is sent with every image when no custom prompt is set.
	DefaultPromptTemplate = "Generate a text-to-image AI prompt that can recreate it accurately."

	// ToolTabs and ToolPrompts are the views a session can open on.
	ToolTabs    = "tabs"
	ToolPrompts = "prompts"
)

// Persisted key names. These match the keys the panel has always stored.
const (
	keyDarkMode     = "darkMode"
	keyAIModel      = "aiModel"
	keyAPIKey       = "apiKey"
	keyCustomPrompt = "customPrompt"
	keyDefaultTool  = "defaultTool"
)

// SettingsSection holds the user-facing panel settings.
type SettingsSection struct {
	DarkMode     bool
	AIModel      string
	APIKey       string
	CustomPrompt string
	DefaultTool  string
	mu           sync.RWMutex
}

// NewSettingsSection creates a settings section with defaults.
func NewSettingsSection() *SettingsSection {
	return &SettingsSection{
		AIModel:     DefaultModel,
		DefaultTool: ToolTabs,
	}
}

// ID returns the section identifier.
func (s *SettingsSection) ID() string {
	return SectionIDSettings
}

// Title returns the section title.
func (s *SettingsSection) Title() string {
	return "Panel Settings"
}

// Description returns the section description.
func (s *SettingsSection) Description() string {
	return "Appearance, AI model, API key, custom image prompt and the view opened by default."
}

// Data returns the current configuration data.
func (s *SettingsSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		keyDarkMode:     s.DarkMode,
		keyAIModel:      s.AIModel,
		keyAPIKey:       s.APIKey,
		keyCustomPrompt: s.CustomPrompt,
		keyDefaultTool:  s.DefaultTool,
	}
}

// SetData updates the configuration from the provided data.
func (s *SettingsSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case keyDarkMode:
			enabled, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for %s: expected bool, got %T", key, value)
			}
			s.DarkMode = enabled
		case keyAIModel, keyAPIKey, keyCustomPrompt, keyDefaultTool:
			str, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for %s: expected string, got %T", key, value)
			}
			s.setString(key, str)
		default:
			// Ignore unknown keys for forward compatibility
		}
	}

	return nil
}

func (s *SettingsSection) setString(key, value string) {
	switch key {
	case keyAIModel:
		s.AIModel = value
	case keyAPIKey:
		s.APIKey = value
	case keyCustomPrompt:
		s.CustomPrompt = value
	case keyDefaultTool:
		s.DefaultTool = value
	}
}

// Validate validates the current configuration.
// An empty API key is valid here; it is rejected when a run starts.
func (s *SettingsSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if strings.TrimSpace(s.AIModel) == "" {
		return fmt.Errorf("%s must not be empty", keyAIModel)
	}
	if s.DefaultTool != ToolTabs && s.DefaultTool != ToolPrompts {
		return fmt.Errorf("%s must be %q or %q, got %q", keyDefaultTool, ToolTabs, ToolPrompts, s.DefaultTool)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *SettingsSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.DarkMode = false
	s.AIModel = DefaultModel
	s.APIKey = ""
	s.CustomPrompt = ""
	s.DefaultTool = ToolTabs
}

// GetAPIKey returns the configured API key.
func (s *SettingsSection) GetAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.APIKey
}

// GetModel returns the selected model.
func (s *SettingsSection) GetModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.AIModel
}

// PromptTemplate returns the custom prompt, or DefaultPromptTemplate when none is set.
func (s *SettingsSection) PromptTemplate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if strings.TrimSpace(s.CustomPrompt) == "" {
		return DefaultPromptTemplate
	}
	return s.CustomPrompt
}

// GetDefaultTool returns the view to open first.
func (s *SettingsSection) GetDefaultTool() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.DefaultTool
}

// IsDarkMode reports whether dark mode is enabled.
func (s *SettingsSection) IsDarkMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.DarkMode
}

// Set assigns one setting from its string form, as typed on the command line.
func (s *SettingsSection) Set(key, value string) error {
	if key == keyDarkMode {
		switch strings.ToLower(value) {
		case "true", "on", "1", "yes":
			return s.SetData(map[string]any{key: true})
		case "false", "off", "0", "no":
			return s.SetData(map[string]any{key: false})
		default:
			return fmt.Errorf("invalid value for %s: %q", key, value)
		}
	}

	switch key {
	case keyAIModel, keyAPIKey, keyCustomPrompt, keyDefaultTool:
		return s.SetData(map[string]any{key: value})
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
}
