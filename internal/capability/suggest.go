package capability

import (
	"sort"
	"strings"
)

// suggestKeywords maps capability names to the keywords that indicate them.
var suggestKeywords = map[string][]string{
	"web_scraper":      {"scrape", "web", "html", "crawl", "extract", "website", "url"},
	"code_generator":   {"code", "generate", "program", "function", "class", "script"},
	"data_analyzer":    {"analyze", "data", "csv", "json", "statistics", "pattern"},
	"file_processor":   {"file", "read", "write", "process", "directory"},
	"memory_tool":      {"remember", "store", "memory", "recall", "search"},
	"hybrid_retrieval": {"retrieve", "context", "knowledge", "relevant", "history"},
	"llm_query_tool":   {"ask", "question", "llm", "ai", "chat", "query"},
}

// Suggestion scores one capability against a description.
type Suggestion struct {
	Name            string   `json:"name"`
	Score           int      `json:"score"`
	MatchedKeywords []string `json:"matched_keywords"`
}

// Suggest ranks registered capabilities by keyword overlap with the
// description, highest score first. Capabilities with no match are omitted.
func (r *Registry) Suggest(description string) []Suggestion {
	desc := strings.ToLower(description)
	var out []Suggestion

	for _, name := range r.Names() {
		keywords, ok := suggestKeywords[name]
		if !ok {
			continue
		}
		var matched []string
		for _, kw := range keywords {
			if strings.Contains(desc, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) > 0 {
			out = append(out, Suggestion{Name: name, Score: len(matched), MatchedKeywords: matched})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Statistics summarizes the execution ledger.
type Statistics struct {
	TotalCapabilities    int     `json:"total_capabilities"`
	TotalExecutions      int     `json:"total_executions"`
	SuccessfulExecutions int     `json:"successful_executions"`
	FailedExecutions     int     `json:"failed_executions"`
	SuccessRate          float64 `json:"success_rate"`
}

// Statistics computes totals over the runner's ledger.
func (r *Runner) Statistics() Statistics {
	ledger := r.Ledger()
	s := Statistics{
		TotalCapabilities: len(r.registry.Names()),
		TotalExecutions:   len(ledger),
	}
	for _, rec := range ledger {
		if rec.Outcome == OutcomeCompleted {
			s.SuccessfulExecutions++
		} else {
			s.FailedExecutions++
		}
	}
	if s.TotalExecutions > 0 {
		s.SuccessRate = float64(s.SuccessfulExecutions) / float64(s.TotalExecutions)
	}
	return s
}
