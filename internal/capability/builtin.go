package capability

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nidhogg/think-tank/internal/advisor"
	"github.com/nidhogg/think-tank/internal/retrieval"
)

// RegisterBuiltins adds the default capability set. adv and sources may be
// nil; the affected capabilities then report themselves unconfigured
// rather than failing registration.
func RegisterBuiltins(reg *Registry, adv advisor.Advisor, sources *retrieval.Sources, memory retrieval.MemorySearcher) {
	reg.Register(Descriptor{
		Name:        "llm_query_tool",
		Description: "General conversational queries answered by the advisor",
		ParameterSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query":     map[string]interface{}{"type": "string"},
				"task_type": map[string]interface{}{"type": "string"},
			},
			"required": []string{"query"},
		},
		Executor: func(ctx context.Context, params map[string]string) (*Result, error) {
			if adv == nil {
				return &Result{Success: false, Message: "no advisor configured"}, nil
			}
			query := params["query"]
			if query == "" {
				return nil, fmt.Errorf("query parameter is required")
			}
			ans, err := adv.Ask(ctx, query, 1024, 0.7)
			if err != nil {
				return nil, fmt.Errorf("advisor query: %w", err)
			}
			return &Result{
				Success: true,
				Message: "query answered",
				Data:    map[string]string{"result": ans.Text, "provider": ans.ProviderID},
			}, nil
		},
	})

	reg.Register(Descriptor{
		Name:        "hybrid_retrieval",
		Description: "Ranked context from vector, memory, and conversation pools",
		ParameterSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{"type": "string"},
				"limit": map[string]interface{}{"type": "integer"},
			},
			"required": []string{"query"},
		},
		Executor: func(ctx context.Context, params map[string]string) (*Result, error) {
			if sources == nil {
				return &Result{Success: false, Message: "no retrieval sources configured"}, nil
			}
			query := params["query"]
			if query == "" {
				return nil, fmt.Errorf("query parameter is required")
			}
			limit := 10
			if v, err := strconv.Atoi(params["limit"]); err == nil && v > 0 {
				limit = v
			}
			ranked, text, metrics := sources.Retrieve(ctx, query, limit, retrieval.DefaultBudgets())
			return &Result{
				Success: true,
				Message: fmt.Sprintf("ranked %d candidates", len(ranked)),
				Data: map[string]string{
					"result":           text,
					"candidates":       strconv.Itoa(len(ranked)),
					"vector_relevance": strconv.FormatFloat(metrics.VectorRelevance, 'f', 2, 64),
					"memory_relevance": strconv.FormatFloat(metrics.MemoryRelevance, 'f', 2, 64),
					"has_conversation": strconv.FormatBool(metrics.HasConversation),
				},
			}, nil
		},
	})

	reg.Register(Descriptor{
		Name:        "memory_tool",
		Description: "Search structured memories by content",
		ParameterSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{"type": "string"},
			},
			"required": []string{"query"},
		},
		Executor: func(ctx context.Context, params map[string]string) (*Result, error) {
			if memory == nil {
				return &Result{Success: false, Message: "no memory store configured"}, nil
			}
			hits, err := memory.SearchMemories(ctx, params["query"], 10)
			if err != nil {
				return nil, fmt.Errorf("memory search: %w", err)
			}
			var text string
			for _, h := range hits {
				text += fmt.Sprintf("[%s] %s\n", h.Category, h.Text)
			}
			return &Result{
				Success: true,
				Message: fmt.Sprintf("found %d memories", len(hits)),
				Data:    map[string]string{"result": text, "count": strconv.Itoa(len(hits))},
			}, nil
		},
	})

	// Backend-specific capabilities are registered unconfigured here and
	// replaced by the hosting process when a backend exists.
	for _, stub := range []struct{ name, desc string }{
		{"web_scraper", "Fetch and extract web page content"},
		{"code_generator", "Generate code from a description"},
		{"data_analyzer", "Analyze structured data"},
		{"file_processor", "Read and write local files"},
	} {
		name := stub.name
		reg.Register(Descriptor{
			Name:        name,
			Description: stub.desc,
			Executor: func(ctx context.Context, params map[string]string) (*Result, error) {
				return &Result{Success: false, Message: fmt.Sprintf("%s backend not configured", name)}, nil
			},
		})
	}
}
