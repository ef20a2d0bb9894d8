package reasoning

// StepKind identifies one stage of the reasoning progression. The stages
// form a fixed linear order with no branching.
type StepKind string

const (
	StepInitialAnalysis       StepKind = "initial_analysis"
	StepIntentClarification   StepKind = "intent_clarification"
	StepToolSelection         StepKind = "tool_selection"
	StepParameterOptimization StepKind = "parameter_optimization"
	StepExecutionStrategy     StepKind = "execution_strategy"
)

// stepOrder is the complete progression. A chain's steps are always a
// prefix of this sequence.
var stepOrder = []StepKind{
	StepInitialAnalysis,
	StepIntentClarification,
	StepToolSelection,
	StepParameterOptimization,
	StepExecutionStrategy,
}

// Next returns the successor kind, or false for the terminal kind.
func (k StepKind) Next() (StepKind, bool) {
	for i, s := range stepOrder {
		if s == k && i+1 < len(stepOrder) {
			return stepOrder[i+1], true
		}
	}
	return "", false
}

// stepWeights drive the aggregate confidence: tool selection counts most.
var stepWeights = map[StepKind]float64{
	StepInitialAnalysis:       1.0,
	StepIntentClarification:   1.2,
	StepToolSelection:         1.5,
	StepParameterOptimization: 1.3,
	StepExecutionStrategy:     1.1,
}

// Weight returns the aggregation weight for the kind (1.0 for unknown).
func (k StepKind) Weight() float64 {
	if w, ok := stepWeights[k]; ok {
		return w
	}
	return 1.0
}

// stepFocus is the natural-language focus handed to the advisor per kind.
var stepFocus = map[StepKind]string{
	StepInitialAnalysis:       "Analyze user intent and identify key requirements",
	StepIntentClarification:   "Clarify specific user intent and resolve ambiguities",
	StepToolSelection:         "Select optimal capabilities for the task",
	StepParameterOptimization: "Optimize parameters for selected capabilities",
	StepExecutionStrategy:     "Plan execution strategy and fallbacks",
}

// stepOutputFormat is the expected output shape per kind.
var stepOutputFormat = map[StepKind]string{
	StepInitialAnalysis:       "intent, complexity, urgency, domain",
	StepIntentClarification:   "clarified_intent, assumptions, confidence_factors",
	StepToolSelection:         "primary_tool, secondary_tools, reasoning",
	StepParameterOptimization: "optimized_parameters, expected_performance, risk_factors",
	StepExecutionStrategy:     "execution_plan, fallback_options, success_criteria",
}

// stepNextActions lists the follow-up actions proposed after each kind.
var stepNextActions = map[StepKind][]string{
	StepInitialAnalysis:       {"clarify_intent", "identify_requirements"},
	StepIntentClarification:   {"select_tools", "gather_context"},
	StepToolSelection:         {"optimize_parameters", "prepare_execution"},
	StepParameterOptimization: {"plan_execution", "setup_fallbacks"},
	StepExecutionStrategy:     {"execute_plan", "monitor_results"},
}

// NextActions returns the proposed follow-up actions for the kind.
func (k StepKind) NextActions() []string {
	if a, ok := stepNextActions[k]; ok {
		return a
	}
	return []string{"continue_reasoning"}
}

// Focus returns the advisor focus line for the kind.
func (k StepKind) Focus() string { return stepFocus[k] }

// OutputFormat returns the expected output shape for the kind.
func (k StepKind) OutputFormat() string { return stepOutputFormat[k] }
