package reasoning

import "testing"

func TestStepSuccession(t *testing.T) {
	cases := []struct {
		kind StepKind
		next StepKind
		ok   bool
	}{
		{StepInitialAnalysis, StepIntentClarification, true},
		{StepIntentClarification, StepToolSelection, true},
		{StepToolSelection, StepParameterOptimization, true},
		{StepParameterOptimization, StepExecutionStrategy, true},
		{StepExecutionStrategy, "", false},
	}
	for _, c := range cases {
		next, ok := c.kind.Next()
		if ok != c.ok || next != c.next {
			t.Errorf("%s.Next() = (%s, %v), want (%s, %v)", c.kind, next, ok, c.next, c.ok)
		}
	}
}

func TestStepWeights(t *testing.T) {
	if StepToolSelection.Weight() != 1.5 {
		t.Errorf("tool_selection weight = %v, want 1.5", StepToolSelection.Weight())
	}
	if StepKind("unknown").Weight() != 1.0 {
		t.Errorf("unknown weight = %v, want 1.0", StepKind("unknown").Weight())
	}
}

func TestEveryKindHasStepData(t *testing.T) {
	for _, k := range stepOrder {
		if k.Focus() == "" {
			t.Errorf("%s has no focus", k)
		}
		if k.OutputFormat() == "" {
			t.Errorf("%s has no output format", k)
		}
		if len(k.NextActions()) == 0 {
			t.Errorf("%s has no next actions", k)
		}
	}
}
