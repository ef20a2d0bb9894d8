package embedding

import (
	"context"
	"fmt"
	"sync"
)

// Provider generates vector embeddings from text.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Config holds embedding provider configuration.
type Config struct {
	Provider  string `json:"provider"` // "api" or "local"
	Endpoint  string `json:"endpoint"`
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	Dimension int    `json:"dimension"`
}

// New builds a Provider from configuration.
func New(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "api", "":
		return NewAPIProvider(cfg), nil
	case "local":
		return NewLocalProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}

// dimTracker caches the vector size seen on the first successful result.
// Providers embed it so Dimension answers from observation once any call
// has succeeded, and from configuration before that.
type dimTracker struct {
	configured int
	once       sync.Once
	observed   int
}

func (d *dimTracker) record(vectors [][]float32) {
	if len(vectors) > 0 && len(vectors[0]) > 0 {
		d.once.Do(func() { d.observed = len(vectors[0]) })
	}
}

// Dimension returns the embedding vector dimension.
func (d *dimTracker) Dimension() int {
	if d.observed > 0 {
		return d.observed
	}
	return d.configured
}
