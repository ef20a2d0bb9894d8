package reasoning

import (
	"sync"
	"time"
)

// AdvisorOutcome records how a step's reasoning text was obtained:
// from the advisor (Succeeded, with its provider tag) or from the
// deterministic fallback resolver.
type AdvisorOutcome struct {
	Succeeded    bool   `json:"succeeded"`
	UsedFallback bool   `json:"used_fallback"`
	Text         string `json:"text"`
	ProviderID   string `json:"provider_id,omitempty"`
}

// InputSnapshot captures what a step saw when it executed.
type InputSnapshot struct {
	Query                 string            `json:"query"`
	Context               map[string]string `json:"context,omitempty"`
	PreviousReasoning     string            `json:"previous_reasoning,omitempty"`
	PreviousConfidence    float64           `json:"previous_confidence"`
	Focus                 string            `json:"focus"`
	OutputFormat          string            `json:"output_format"`
	AvailableCapabilities []string          `json:"available_capabilities,omitempty"`
}

// StepResult is one executed reasoning step. It is created once per
// iteration and never mutated afterwards.
type StepResult struct {
	Kind          StepKind       `json:"kind"`
	Input         InputSnapshot  `json:"input"`
	ReasoningText string         `json:"reasoning_text"`
	Confidence    float64        `json:"confidence"`
	NextActions   []string       `json:"next_actions"`
	Advisor       AdvisorOutcome `json:"advisor"`
	Timestamp     time.Time      `json:"timestamp"`
}

// FinalDecision names the capabilities and parameters the chain settled on.
type FinalDecision struct {
	DecisionType         string            `json:"decision_type"`
	SelectedCapabilities []string          `json:"selected_capabilities"`
	Parameters           map[string]string `json:"parameters"`
	ExecutionStrategy    string            `json:"execution_strategy"`
	ReasoningSummary     string            `json:"reasoning_summary"`
	Confidence           float64           `json:"confidence"`
}

// Chain is one complete run of the reasoning loop for a single query.
// Steps are appended in execution order; FinalDecision and
// AggregateConfidence are set exactly once at termination.
type Chain struct {
	ID                  string         `json:"id"`
	Query               string         `json:"query"`
	Steps               []StepResult   `json:"steps"`
	FinalDecision       *FinalDecision `json:"final_decision,omitempty"`
	AggregateConfidence float64        `json:"aggregate_confidence"`
	StartedAt           time.Time      `json:"started_at"`
	Duration            time.Duration  `json:"duration"`
}

// History retains the most recent chains for analytics. Eviction is FIFO.
type History struct {
	mu     sync.Mutex
	chains []*Chain
	max    int
}

// DefaultHistorySize is how many chains the engine keeps by default.
const DefaultHistorySize = 50

// NewHistory creates a bounded chain history.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &History{max: max}
}

// Append adds a finished chain, evicting the oldest when full.
func (h *History) Append(c *Chain) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.chains = append(h.chains, c)
	if len(h.chains) > h.max {
		h.chains = h.chains[len(h.chains)-h.max:]
	}
}

// Len returns the number of retained chains.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.chains)
}

// Snapshot returns a copy of the retained chains, oldest first.
func (h *History) Snapshot() []*Chain {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Chain, len(h.chains))
	copy(out, h.chains)
	return out
}
