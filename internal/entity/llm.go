package entity

// LLMRequest is a single prompt for the language-model fallback.
type LLMRequest struct {
	Prompt string
	APIKey string
}
