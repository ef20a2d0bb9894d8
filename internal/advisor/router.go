package advisor

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Router manages multiple advisors and tries them in fallback order.
// It satisfies the Advisor interface itself so callers see one advisor.
type Router struct {
	advisors  map[string]Advisor
	fallbacks []string
	defaults  string
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewRouter creates an empty advisor router.
func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		advisors: make(map[string]Advisor),
		logger:   logger,
	}
}

// Register adds an advisor. The first registered advisor becomes the default.
func (r *Router) Register(a Advisor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advisors[a.ID()] = a
	if r.defaults == "" {
		r.defaults = a.ID()
	}
	r.logger.Info("registered advisor", zap.String("id", a.ID()))
}

// SetDefault sets the primary advisor.
func (r *Router) SetDefault(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaults = id
}

// SetFallbacks configures the fallback chain tried after the primary fails.
func (r *Router) SetFallbacks(ids []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks = ids
}

// ID identifies the router as a composite advisor.
func (r *Router) ID() string { return "router" }

// Ask tries the primary advisor, then each fallback in order.
func (r *Router) Ask(ctx context.Context, prompt string, maxTokens int, temperature float64) (*Answer, error) {
	r.mu.RLock()
	primary := r.advisors[r.defaults]
	fallbacks := r.fallbacks
	r.mu.RUnlock()

	if primary == nil {
		return nil, fmt.Errorf("no advisor registered")
	}

	ans, err := primary.Ask(ctx, prompt, maxTokens, temperature)
	if err == nil {
		return ans, nil
	}
	r.logger.Warn("primary advisor failed, trying fallbacks",
		zap.String("advisor", primary.ID()), zap.Error(err))

	for _, id := range fallbacks {
		r.mu.RLock()
		fb := r.advisors[id]
		r.mu.RUnlock()
		if fb == nil {
			continue
		}
		ans, err = fb.Ask(ctx, prompt, maxTokens, temperature)
		if err == nil {
			return ans, nil
		}
		r.logger.Warn("fallback advisor failed", zap.String("advisor", id), zap.Error(err))
	}

	return nil, fmt.Errorf("all advisors failed: %w", err)
}
