package advisor

import (
	"context"
	"time"
)

// Advisor is a narrow interface over any external reasoning service:
// ask a short question, get back free text plus a provider tag, or fail.
type Advisor interface {
	ID() string
	Ask(ctx context.Context, prompt string, maxTokens int, temperature float64) (*Answer, error)
}

// Answer is a successful advisor response.
type Answer struct {
	Text       string `json:"text"`
	ProviderID string `json:"provider_id"`
}

// Config holds configuration for a single advisor instance.
type Config struct {
	ID       string        `json:"id"`
	Type     string        `json:"type"`
	Endpoint string        `json:"endpoint"`
	APIKey   string        `json:"api_key"`
	Model    string        `json:"model"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}
