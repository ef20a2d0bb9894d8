package capability

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Result is the outcome of a capability execution.
type Result struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
}

// Executor runs a capability with the given parameters.
type Executor func(ctx context.Context, params map[string]string) (*Result, error)

// Descriptor describes a registered capability.
type Descriptor struct {
	Name            string                 `json:"name"`
	Description     string                 `json:"description"`
	ParameterSchema map[string]interface{} `json:"parameter_schema,omitempty"`
	Executor        Executor               `json:"-"`
}

// Registry maps capability names to descriptors. Re-registering a name
// replaces the prior descriptor (last write wins, logged), never errors.
type Registry struct {
	mu     sync.RWMutex
	caps   map[string]Descriptor
	order  []string
	logger *zap.Logger
}

// NewRegistry creates an empty capability registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		caps:   make(map[string]Descriptor),
		logger: logger,
	}
}

// Register adds or replaces a capability by name.
func (r *Registry) Register(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.caps[d.Name]; exists {
		r.logger.Info("replacing capability", zap.String("name", d.Name))
	} else {
		r.order = append(r.order, d.Name)
		r.logger.Info("registered capability", zap.String("name", d.Name))
	}
	r.caps[d.Name] = d
}

// Get returns the descriptor for a name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.caps[name]
	return d, ok
}

// List returns all descriptors in registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.caps[name])
	}
	return out
}

// Names returns registered capability names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
