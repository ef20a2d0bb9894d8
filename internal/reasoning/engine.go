package reasoning

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nidhogg/think-tank/internal/advisor"
	"github.com/nidhogg/think-tank/internal/heuristic"
	"go.uber.org/zap"
)

// ErrEmptyQuery is returned when Run is called without a query.
var ErrEmptyQuery = fmt.Errorf("query is required for reasoning")

// CapabilityLister exposes the currently registered capability names.
type CapabilityLister interface {
	Names() []string
}

// defaultCapabilities is what tool selection sees when no registry is wired.
var defaultCapabilities = []string{
	"web_scraper", "code_generator", "data_analyzer",
	"file_processor", "memory_tool", "llm_query_tool",
}

// generalCapability is the conversational default when no capability was
// ever proposed.
const generalCapability = "llm_query_tool"

// Engine runs the bounded reasoning loop: consult the advisor per step,
// degrade to the heuristic resolver on failure, and synthesize a final
// decision from the accumulated steps.
type Engine struct {
	advisor  advisor.Advisor // nil means fallback-only
	fallback *heuristic.Resolver
	caps     CapabilityLister // nil means defaultCapabilities
	history  *History
	logger   *zap.Logger
}

// NewEngine creates a reasoning engine. advisor and caps may be nil.
func NewEngine(adv advisor.Advisor, caps CapabilityLister, logger *zap.Logger) *Engine {
	return &Engine{
		advisor:  adv,
		fallback: heuristic.NewResolver(),
		caps:     caps,
		history:  NewHistory(DefaultHistorySize),
		logger:   logger,
	}
}

// History returns the bounded chain history.
func (e *Engine) History() *History { return e.history }

// Run executes up to maxIterations reasoning steps for the query and
// returns the finished chain. Advisor failures downgrade individual steps
// to the fallback path; they never abort the chain.
func (e *Engine) Run(ctx context.Context, query string, extra map[string]string, maxIterations int, fastMode bool) (*Chain, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if maxIterations < 1 {
		return nil, fmt.Errorf("max iterations must be >= 1, got %d", maxIterations)
	}

	chain := &Chain{
		ID:        uuid.New().String(),
		Query:     query,
		StartedAt: time.Now(),
	}

	for i := 0; i < maxIterations; i++ {
		kind, ok := e.nextStep(chain)
		if !ok {
			break
		}

		step := e.executeStep(ctx, kind, query, extra, chain, fastMode)
		chain.Steps = append(chain.Steps, step)

		e.logger.Debug("reasoning step complete",
			zap.String("chain", chain.ID),
			zap.String("kind", string(kind)),
			zap.Float64("confidence", step.Confidence),
			zap.Bool("fallback", step.Advisor.UsedFallback))

		// High confidence after enough steps: stop early.
		if step.Confidence > 0.9 && len(chain.Steps) >= 3 {
			break
		}
	}

	chain.AggregateConfidence = aggregateConfidence(chain.Steps)
	chain.FinalDecision = e.synthesizeDecision(chain)
	chain.Duration = time.Since(chain.StartedAt)

	e.history.Append(chain)

	e.logger.Info("reasoning chain finished",
		zap.String("chain", chain.ID),
		zap.Int("steps", len(chain.Steps)),
		zap.Float64("confidence", chain.AggregateConfidence),
		zap.Duration("duration", chain.Duration))

	return chain, nil
}

// nextStep computes the successor of the last executed step.
func (e *Engine) nextStep(chain *Chain) (StepKind, bool) {
	if len(chain.Steps) == 0 {
		return StepInitialAnalysis, true
	}
	return chain.Steps[len(chain.Steps)-1].Kind.Next()
}

func (e *Engine) executeStep(ctx context.Context, kind StepKind, query string, extra map[string]string, chain *Chain, fastMode bool) StepResult {
	snapshot := InputSnapshot{
		Query:        query,
		Context:      extra,
		Focus:        kind.Focus(),
		OutputFormat: kind.OutputFormat(),
	}
	if len(chain.Steps) > 0 {
		prev := chain.Steps[len(chain.Steps)-1]
		snapshot.PreviousReasoning = prev.ReasoningText
		snapshot.PreviousConfidence = prev.Confidence
	}
	if kind == StepToolSelection {
		snapshot.AvailableCapabilities = e.capabilityNames()
	}

	outcome := e.consult(ctx, kind, snapshot, fastMode)

	return StepResult{
		Kind:          kind,
		Input:         snapshot,
		ReasoningText: outcome.Text,
		Confidence:    stepConfidence(kind, outcome.Text, outcome.Succeeded),
		NextActions:   kind.NextActions(),
		Advisor:       outcome,
		Timestamp:     time.Now(),
	}
}

// consult asks the advisor, falling back to the heuristic resolver when
// the advisor is absent or fails.
func (e *Engine) consult(ctx context.Context, kind StepKind, snapshot InputSnapshot, fastMode bool) AdvisorOutcome {
	if e.advisor != nil {
		maxTokens := 300
		if fastMode {
			maxTokens = 150
		}
		ans, err := e.advisor.Ask(ctx, buildPrompt(kind, snapshot, fastMode), maxTokens, 0.3)
		if err == nil {
			return AdvisorOutcome{Succeeded: true, Text: ans.Text, ProviderID: ans.ProviderID}
		}
		e.logger.Warn("advisor consultation failed, using fallback",
			zap.String("kind", string(kind)), zap.Error(err))
	}
	return AdvisorOutcome{
		UsedFallback: true,
		Text:         e.fallback.Analyze(string(kind), snapshot.Query),
	}
}

func (e *Engine) capabilityNames() []string {
	if e.caps == nil {
		return defaultCapabilities
	}
	names := e.caps.Names()
	if len(names) == 0 {
		return defaultCapabilities
	}
	return names
}

// buildPrompt renders the step-specific advisor prompt. Fast mode keeps
// it to the minimum the advisor needs for a 2-3 line answer.
func buildPrompt(kind StepKind, snapshot InputSnapshot, fastMode bool) string {
	var b strings.Builder
	if fastMode {
		fmt.Fprintf(&b, "FAST REASONING - %s\n\n", strings.ToUpper(string(kind)))
		fmt.Fprintf(&b, "Query: %s\n", snapshot.Query)
		fmt.Fprintf(&b, "Focus: %s\n", snapshot.Focus)
		fmt.Fprintf(&b, "Output: %s\n", snapshot.OutputFormat)
		if len(snapshot.AvailableCapabilities) > 0 {
			fmt.Fprintf(&b, "Available: %s\n", strings.Join(snapshot.AvailableCapabilities, ", "))
		}
		b.WriteString("\nQuick analysis (2-3 lines):")
		return b.String()
	}

	fmt.Fprintf(&b, "REASONING STEP: %s\n\n", strings.ToUpper(string(kind)))
	fmt.Fprintf(&b, "User Query: %s\n", snapshot.Query)
	if len(snapshot.Context) > 0 {
		b.WriteString("Context:\n")
		keys := make([]string, 0, len(snapshot.Context))
		for k := range snapshot.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", k, snapshot.Context[k])
		}
	}
	fmt.Fprintf(&b, "Focus: %s\n", snapshot.Focus)
	if snapshot.PreviousReasoning != "" {
		fmt.Fprintf(&b, "Previous: %s\n", snapshot.PreviousReasoning)
	}
	if len(snapshot.AvailableCapabilities) > 0 {
		fmt.Fprintf(&b, "Available capabilities: %s\n", strings.Join(snapshot.AvailableCapabilities, ", "))
	}
	fmt.Fprintf(&b, "\nRequired Output Format: %s\n\nAnalysis:", snapshot.OutputFormat)
	return b.String()
}

// stepConfidence scores a step: base 0.8 when the advisor answered
// (0.5 on fallback), plus 0.05 per quality signal in the text, capped
// at 0.95.
func stepConfidence(kind StepKind, text string, advisorSucceeded bool) float64 {
	base := 0.5
	if advisorSucceeded {
		base = 0.8
	}

	lower := strings.ToLower(text)
	signals := 0
	if len(text) > 20 {
		signals++
	}
	if strings.Contains(lower, "because") || strings.Contains(lower, "reason") {
		signals++
	}
	if strings.Contains(lower, "confident") || strings.Contains(lower, "certain") {
		signals++
	}
	if strings.Contains(lower, string(kind)) {
		signals++
	}

	confidence := base + float64(signals)*0.05
	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}

// aggregateConfidence is the weighted mean of step confidences.
// A zero-step chain has confidence 0.
func aggregateConfidence(steps []StepResult) float64 {
	if len(steps) == 0 {
		return 0
	}
	var weighted, total float64
	for _, s := range steps {
		w := s.Kind.Weight()
		weighted += s.Confidence * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// synthesizeDecision aggregates the chain's steps into the final decision.
func (e *Engine) synthesizeDecision(chain *Chain) *FinalDecision {
	known := e.capabilityNames()

	var selected []string
	params := make(map[string]string)
	var strategies []string

	for _, s := range chain.Steps {
		switch s.Kind {
		case StepToolSelection:
			selected = append(selected, capabilitiesInText(s.ReasoningText, known)...)
		case StepParameterOptimization:
			for k, v := range e.fallback.ExtractParameters(s.ReasoningText) {
				params[k] = v
			}
		case StepExecutionStrategy:
			strategies = append(strategies, s.ReasoningText)
		}
	}

	selected = dedupe(selected)
	if len(selected) == 0 {
		selected = []string{generalCapability}
	}
	if _, ok := params["query"]; !ok {
		params["query"] = chain.Query
	}
	if _, ok := params["task_type"]; !ok {
		params["task_type"] = e.fallback.TaskType(chain.Query)
	}

	strategy := "single_capability"
	if len(strategies) > 0 {
		strategy = strategies[len(strategies)-1]
	}

	confidence := chain.AggregateConfidence
	if confidence < 0.5 {
		confidence = 0.5
	}

	return &FinalDecision{
		DecisionType:         "capability_execution",
		SelectedCapabilities: selected,
		Parameters:           params,
		ExecutionStrategy:    strategy,
		ReasoningSummary:     summarize(chain),
		Confidence:           confidence,
	}
}

// capabilitiesInText finds known capability names mentioned in the
// reasoning text, ordered by their first appearance.
func capabilitiesInText(text string, known []string) []string {
	type mention struct {
		name string
		pos  int
	}
	var found []mention
	for _, name := range known {
		if idx := strings.Index(text, name); idx >= 0 {
			found = append(found, mention{name: name, pos: idx})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	names := make([]string, len(found))
	for i, m := range found {
		names[i] = m.name
	}
	return names
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func summarize(chain *Chain) string {
	parts := make([]string, len(chain.Steps))
	for i, s := range chain.Steps {
		parts[i] = fmt.Sprintf("%s: %s", s.Kind, truncate(s.ReasoningText, 100))
	}
	return strings.Join(parts, " → ")
}

// truncate shortens s to at most max bytes, cutting on a rune boundary so
// multibyte text stays valid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
