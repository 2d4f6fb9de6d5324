package config

import (
	"os"
	"strings"
)

// Environment variables consulted when a flag is not set.
const (
	EnvAPIKey       = "PROMPTLENS_API_KEY"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvBaseURL      = "PROMPTLENS_BASE_URL"
)

// Overrides carries values given on the command line. Empty fields are unset.
type Overrides struct {
	APIKey         string
	Model          string
	BaseURL        string
	PromptTemplate string
}

// Resolved is the effective configuration of one run.
type Resolved struct {
	APIKey         string
	Model          string
	BaseURL        string
	PromptTemplate string
	SummaryModel   string
	TokenCounter   string
}

// Resolve merges overrides with the environment and the given sections using the
// precedence: CLI flags > environment variables > config file > defaults.
// Either section may be nil. A missing API key is left empty; callers reject it
// when a run starts.
func Resolve(o Overrides, settings *SettingsSection, llm *LLMSection) Resolved {
	if settings == nil {
		settings = NewSettingsSection()
	}
	if llm == nil {
		llm = NewLLMSection()
	}

	r := Resolved{
		APIKey:         firstNonEmpty(o.APIKey, os.Getenv(EnvAPIKey), os.Getenv(EnvGeminiAPIKey), settings.GetAPIKey()),
		Model:          firstNonEmpty(o.Model, settings.GetModel(), DefaultModel),
		BaseURL:        firstNonEmpty(o.BaseURL, os.Getenv(EnvBaseURL), llm.GetBaseURL(), DefaultBaseURL),
		PromptTemplate: firstNonEmpty(o.PromptTemplate, settings.PromptTemplate()),
		TokenCounter:   llm.GetTokenCounter(),
	}
	r.SummaryModel = firstNonEmpty(llm.GetSummaryModel(), DefaultSummaryModel)
	return r
}

// ResolveGlobal resolves against the global configuration, or defaults when it
// has not been initialized.
func ResolveGlobal(o Overrides) Resolved {
	return Resolve(o, GetSettings(), GetLLM())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
