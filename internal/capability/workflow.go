package capability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome is the terminal state of one execution.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// ExecutionRecord is one entry in the bounded execution ledger.
type ExecutionRecord struct {
	ExecutionID string            `json:"execution_id"`
	Capability  string            `json:"capability"`
	Parameters  map[string]string `json:"parameters"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Outcome     Outcome           `json:"outcome"`
	Error       string            `json:"error,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
}

// WorkflowStep declares one step of a workflow.
type WorkflowStep struct {
	Capability string            `json:"capability"`
	Parameters map[string]string `json:"parameters,omitempty"`
	DependsOn  []string          `json:"depends_on,omitempty"`
	ExposeAs   string            `json:"expose_as,omitempty"`
	UseContext []string          `json:"use_context,omitempty"`
}

// DefaultLedgerSize is the execution ledger capacity.
const DefaultLedgerSize = 100

// Runner executes capabilities and workflows against a Registry and keeps
// the bounded execution ledger. Steps of one workflow run strictly in
// declared order.
type Runner struct {
	registry *Registry
	mu       sync.Mutex
	ledger   []ExecutionRecord
	maxLog   int
	logger   *zap.Logger
}

// NewRunner creates a Runner with the default ledger capacity.
func NewRunner(registry *Registry, logger *zap.Logger) *Runner {
	return &Runner{
		registry: registry,
		maxLog:   DefaultLedgerSize,
		logger:   logger,
	}
}

// Execute runs a single capability by name. Executor errors and panics
// are captured in the record, never re-raised.
func (r *Runner) Execute(ctx context.Context, name string, params map[string]string) ExecutionRecord {
	rec := ExecutionRecord{
		ExecutionID: uuid.New().String(),
		Capability:  name,
		Parameters:  params,
		StartedAt:   time.Now(),
	}

	d, ok := r.registry.Get(name)
	if !ok {
		rec.Outcome = OutcomeFailed
		rec.Error = fmt.Sprintf("capability not found: %s", name)
		r.append(rec)
		return rec
	}

	result, err := r.invoke(ctx, d, params)
	done := time.Now()
	rec.CompletedAt = &done

	switch {
	case err != nil:
		rec.Outcome = OutcomeFailed
		rec.Error = err.Error()
	case result != nil && !result.Success:
		rec.Outcome = OutcomeFailed
		rec.Error = result.Message
		rec.Data = result.Data
	default:
		rec.Outcome = OutcomeCompleted
		if result != nil {
			rec.Data = result.Data
		}
	}

	r.logger.Debug("capability executed",
		zap.String("capability", name),
		zap.String("execution", rec.ExecutionID),
		zap.String("outcome", string(rec.Outcome)))

	r.append(rec)
	return rec
}

// invoke calls the executor with panic recovery.
func (r *Runner) invoke(ctx context.Context, d Descriptor, params map[string]string) (result *Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = fmt.Errorf("capability panic: %v", p)
		}
	}()
	if d.Executor == nil {
		return nil, fmt.Errorf("capability %s has no executor", d.Name)
	}
	return d.Executor(ctx, params)
}

// RunWorkflow validates step references, then executes the steps in
// declared order. A failed step is recorded and execution continues with
// the next step.
func (r *Runner) RunWorkflow(ctx context.Context, steps []WorkflowStep) ([]ExecutionRecord, error) {
	if err := validateWorkflow(steps); err != nil {
		return nil, err
	}

	records := make([]ExecutionRecord, 0, len(steps))
	shared := make(map[string]string)
	completed := make(map[string]bool)

	for _, step := range steps {
		// Execution is sequential, so every named dependency already has
		// a record by the time we get here; the check guards the declared
		// contract, not a race.
		for _, dep := range step.DependsOn {
			if !completed[dep] {
				r.logger.Warn("dependency has no completed record",
					zap.String("step", step.Capability), zap.String("dependency", dep))
			}
		}

		params := make(map[string]string, len(step.Parameters)+len(step.UseContext))
		for k, v := range step.Parameters {
			params[k] = v
		}
		for _, key := range step.UseContext {
			if v, ok := shared[key]; ok {
				params[key] = v
			}
		}

		rec := r.Execute(ctx, step.Capability, params)
		records = append(records, rec)

		name := stepName(step)
		completed[name] = true
		if step.ExposeAs != "" && rec.Outcome == OutcomeCompleted {
			for k, v := range rec.Data {
				shared[k] = v
			}
			shared[step.ExposeAs] = rec.Data["result"]
		}
	}
	return records, nil
}

// validateWorkflow checks that every DependsOn names an earlier step.
func validateWorkflow(steps []WorkflowStep) error {
	declared := make(map[string]bool)
	for i, step := range steps {
		if step.Capability == "" {
			return fmt.Errorf("workflow step %d has no capability", i)
		}
		for _, dep := range step.DependsOn {
			if !declared[dep] {
				return fmt.Errorf("workflow step %d depends on undeclared step %q", i, dep)
			}
		}
		declared[stepName(step)] = true
	}
	return nil
}

func stepName(step WorkflowStep) string {
	if step.ExposeAs != "" {
		return step.ExposeAs
	}
	return step.Capability
}

func (r *Runner) append(rec ExecutionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledger = append(r.ledger, rec)
	if len(r.ledger) > r.maxLog {
		r.ledger = r.ledger[len(r.ledger)-r.maxLog:]
	}
}

// Ledger returns a copy of the retained execution records, oldest first.
func (r *Runner) Ledger() []ExecutionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ExecutionRecord, len(r.ledger))
	copy(out, r.ledger)
	return out
}
