package capability

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"
)

func echoDescriptor(name string) Descriptor {
	return Descriptor{
		Name: name,
		Executor: func(ctx context.Context, params map[string]string) (*Result, error) {
			return &Result{Success: true, Message: "ok", Data: map[string]string{"result": name}}, nil
		},
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(echoDescriptor("a"))
	reg.Register(echoDescriptor("b"))

	if _, ok := reg.Get("a"); !ok {
		t.Error("capability a not found")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("found unregistered capability")
	}
	if got := reg.Names(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("names = %v, want [a b]", got)
	}
}

func TestRegistryLastWriteWins(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(Descriptor{Name: "a", Description: "first"})
	reg.Register(Descriptor{Name: "a", Description: "second"})

	d, _ := reg.Get("a")
	if d.Description != "second" {
		t.Errorf("description = %q, want the replacement", d.Description)
	}
	if len(reg.Names()) != 1 {
		t.Errorf("names = %v, want a single entry", reg.Names())
	}
}

func TestExecuteUnknownCapability(t *testing.T) {
	r := NewRunner(NewRegistry(zap.NewNop()), zap.NewNop())
	rec := r.Execute(context.Background(), "nope", nil)
	if rec.Outcome != OutcomeFailed {
		t.Errorf("outcome = %s, want failed", rec.Outcome)
	}
	if len(r.Ledger()) != 1 {
		t.Errorf("ledger = %d records, want 1", len(r.Ledger()))
	}
}

func TestExecuteCapturesPanic(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(Descriptor{
		Name: "boom",
		Executor: func(ctx context.Context, params map[string]string) (*Result, error) {
			panic("kaput")
		},
	})
	r := NewRunner(reg, zap.NewNop())

	rec := r.Execute(context.Background(), "boom", nil)
	if rec.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %s, want failed", rec.Outcome)
	}
	if rec.Error == "" {
		t.Error("panic not captured in record")
	}
}

func TestWorkflowPartialFailure(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(echoDescriptor("first"))
	reg.Register(Descriptor{
		Name: "second",
		Executor: func(ctx context.Context, params map[string]string) (*Result, error) {
			return nil, fmt.Errorf("deliberate failure")
		},
	})
	reg.Register(echoDescriptor("third"))
	r := NewRunner(reg, zap.NewNop())

	records, err := r.RunWorkflow(context.Background(), []WorkflowStep{
		{Capability: "first"},
		{Capability: "second"},
		{Capability: "third"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0].Outcome != OutcomeCompleted {
		t.Errorf("step 1 = %s", records[0].Outcome)
	}
	if records[1].Outcome != OutcomeFailed {
		t.Errorf("step 2 = %s, want failed", records[1].Outcome)
	}
	if records[2].Outcome != OutcomeCompleted {
		t.Errorf("step 3 = %s, want completed despite step 2 failing", records[2].Outcome)
	}
}

func TestWorkflowContextPropagation(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(Descriptor{
		Name: "producer",
		Executor: func(ctx context.Context, params map[string]string) (*Result, error) {
			return &Result{Success: true, Data: map[string]string{"result": "produced-value"}}, nil
		},
	})
	var seen string
	reg.Register(Descriptor{
		Name: "consumer",
		Executor: func(ctx context.Context, params map[string]string) (*Result, error) {
			seen = params["upstream"]
			return &Result{Success: true}, nil
		},
	})
	r := NewRunner(reg, zap.NewNop())

	_, err := r.RunWorkflow(context.Background(), []WorkflowStep{
		{Capability: "producer", ExposeAs: "upstream"},
		{Capability: "consumer", DependsOn: []string{"upstream"}, UseContext: []string{"upstream"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "produced-value" {
		t.Errorf("consumer saw %q, want the producer's output", seen)
	}
}

func TestWorkflowUndeclaredDependency(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(echoDescriptor("only"))
	r := NewRunner(reg, zap.NewNop())

	_, err := r.RunWorkflow(context.Background(), []WorkflowStep{
		{Capability: "only", DependsOn: []string{"ghost"}},
	})
	if err == nil {
		t.Fatal("expected validation error for undeclared dependency")
	}
	if len(r.Ledger()) != 0 {
		t.Error("invalid workflow executed steps")
	}
}

func TestLedgerFIFOEviction(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(echoDescriptor("e"))
	r := NewRunner(reg, zap.NewNop())
	r.maxLog = 3

	for i := 0; i < 5; i++ {
		r.Execute(context.Background(), "e", map[string]string{"i": fmt.Sprint(i)})
	}

	ledger := r.Ledger()
	if len(ledger) != 3 {
		t.Fatalf("ledger = %d records, want 3", len(ledger))
	}
	if ledger[0].Parameters["i"] != "2" {
		t.Errorf("oldest retained = %q, want 2", ledger[0].Parameters["i"])
	}
}

func TestSuggest(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	RegisterBuiltins(reg, nil, nil, nil)

	suggestions := reg.Suggest("scrape the website and extract the html")
	if len(suggestions) == 0 {
		t.Fatal("no suggestions")
	}
	if suggestions[0].Name != "web_scraper" {
		t.Errorf("top suggestion = %s, want web_scraper", suggestions[0].Name)
	}
	for i := 1; i < len(suggestions); i++ {
		if suggestions[i].Score > suggestions[i-1].Score {
			t.Error("suggestions not sorted by score descending")
		}
	}
}

func TestStatistics(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(echoDescriptor("ok"))
	reg.Register(Descriptor{
		Name: "bad",
		Executor: func(ctx context.Context, params map[string]string) (*Result, error) {
			return nil, fmt.Errorf("nope")
		},
	})
	r := NewRunner(reg, zap.NewNop())
	r.Execute(context.Background(), "ok", nil)
	r.Execute(context.Background(), "ok", nil)
	r.Execute(context.Background(), "bad", nil)

	s := r.Statistics()
	if s.TotalExecutions != 3 || s.SuccessfulExecutions != 2 || s.FailedExecutions != 1 {
		t.Errorf("stats = %+v", s)
	}
	if s.SuccessRate < 0.66 || s.SuccessRate > 0.67 {
		t.Errorf("success rate = %v", s.SuccessRate)
	}
}

func TestBuiltinsUnconfigured(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	RegisterBuiltins(reg, nil, nil, nil)
	r := NewRunner(reg, zap.NewNop())

	rec := r.Execute(context.Background(), "llm_query_tool", map[string]string{"query": "hi"})
	if rec.Outcome != OutcomeFailed {
		t.Errorf("outcome = %s, want failed without an advisor", rec.Outcome)
	}

	rec = r.Execute(context.Background(), "web_scraper", nil)
	if rec.Outcome != OutcomeFailed {
		t.Errorf("outcome = %s, want failed for unconfigured backend", rec.Outcome)
	}
}
