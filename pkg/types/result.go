package types

// PromptResult is the outcome of one drain step.
type PromptResult struct {
	// Source is the image the prompt was generated for.
	Source ImageRecord `json:"source"`

	// PromptText is the generated prompt, or the placeholder text when generation failed.
	PromptText string `json:"prompt_text"`

	// Model is the model identifier used for the call.
	Model string `json:"model"`

	// TokenCount is the locally estimated token count of PromptText (0 for placeholders).
	TokenCount int `json:"token_count"`

	// Placeholder is true when the external call failed and PromptText is synthetic.
	Placeholder bool `json:"placeholder,omitempty"`
}

// UsageTotals accumulates token usage and estimated cost for a run.
type UsageTotals struct {
	Tokens        int     `json:"tokens"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// Add returns the totals with tokens and cost added.
func (u UsageTotals) Add(tokens int, cost float64) UsageTotals {
	return UsageTotals{
		Tokens:        u.Tokens + tokens,
		EstimatedCost: u.EstimatedCost + cost,
	}
}
