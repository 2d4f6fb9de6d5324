// Package pricing holds the static per-model rate table used for cost estimates.
package pricing

import "sort"

// Rates are costs per 1000 tokens.
type Rates struct {
	InputRate  float64 `json:"input_rate"`
	OutputRate float64 `json:"output_rate"`
}

// Table maps a model identifier to its rates. Tables are read-only once built.
type Table map[string]Rates

// Default is the process-wide table for the supported Gemini models.
var Default = Table{
	"gemini-1.5-flash": {InputRate: 0.0000025, OutputRate: 0.0000075},
	"gemini-1.5-pro":   {InputRate: 0.0000125, OutputRate: 0.0000375},
	"gemini-2.5-pro":   {InputRate: 0.0000250, OutputRate: 0.0000750},
}

// Lookup returns the rates for model and whether the model is priced.
func (t Table) Lookup(model string) (Rates, bool) {
	rates, ok := t[model]
	return rates, ok
}

// OutputCost estimates the cost of tokens generated by model.
// Input tokens are not billed and unknown models cost nothing.
func (t Table) OutputCost(model string, tokens int) float64 {
	rates, ok := t[model]
	if !ok {
		return 0
	}
	return float64(tokens) / 1000 * rates.OutputRate
}

// Models returns the priced model identifiers in sorted order.
func (t Table) Models() []string {
	models := make([]string, 0, len(t))
	for model := range t {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}
