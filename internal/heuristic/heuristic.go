package heuristic

import (
	"fmt"
	"regexp"
	"strings"
)

// Resolver classifies queries with deterministic keyword matching.
// It stands in for the advisor when the external service is unavailable,
// so every method must return the same output for the same input.
type Resolver struct{}

// NewResolver returns a keyword-based resolver.
func NewResolver() *Resolver { return &Resolver{} }

// intentKeywords maps an intent label to its trigger substrings.
// Order matters: the first matching family wins.
var intentKeywords = []struct {
	intent   string
	keywords []string
}{
	{"create", []string{"create", "generate", "build", "make"}},
	{"analyze", []string{"analyze", "examine", "study", "review"}},
	{"scrape", []string{"scrape", "extract", "crawl", "fetch"}},
	{"process", []string{"process", "handle", "manage", "work"}},
	{"search", []string{"search", "find", "look", "query"}},
}

var domainKeywords = []struct {
	domain   string
	keywords []string
}{
	{"web", []string{"web", "html", "url", "website", "scrape"}},
	{"code", []string{"code", "function", "script", "program"}},
	{"data", []string{"data", "csv", "json", "analyze"}},
	{"file", []string{"file", "read", "write", "save"}},
}

var capabilityKeywords = []struct {
	capability string
	keywords   []string
}{
	{"web_scraper", []string{"scrape", "web", "html", "crawl"}},
	{"code_generator", []string{"code", "generate", "function", "script"}},
	{"data_analyzer", []string{"analyze", "data", "csv", "json"}},
	{"file_processor", []string{"file", "read", "write", "save"}},
	{"llm_query_tool", []string{"ask", "question", "explain", "help"}},
}

var taskTypeKeywords = []struct {
	taskType string
	keywords []string
}{
	{"coding", []string{"code", "function", "python", "javascript", "program", "debug", "syntax"}},
	{"analysis", []string{"analyze", "data", "statistics", "chart", "report"}},
	{"creative", []string{"write", "story", "creative", "poem", "imagine"}},
	{"reasoning", []string{"explain", "why", "how", "reason", "logic", "think"}},
}

// Intent classifies the user's intent from the lower-cased query.
func (r *Resolver) Intent(query string) string {
	q := strings.ToLower(query)
	for _, e := range intentKeywords {
		if containsAny(q, e.keywords) {
			return e.intent
		}
	}
	return "general"
}

// Domain identifies the subject domain of the query.
func (r *Resolver) Domain(query string) string {
	q := strings.ToLower(query)
	for _, e := range domainKeywords {
		if containsAny(q, e.keywords) {
			return e.domain
		}
	}
	return "general"
}

// SelectCapability picks the capability whose keyword family matches first.
func (r *Resolver) SelectCapability(query string) string {
	q := strings.ToLower(query)
	for _, e := range capabilityKeywords {
		if containsAny(q, e.keywords) {
			return e.capability
		}
	}
	return "llm_query_tool"
}

// TaskType classifies the query for downstream model selection.
func (r *Resolver) TaskType(query string) string {
	q := strings.ToLower(query)
	for _, e := range taskTypeKeywords {
		if containsAny(q, e.keywords) {
			return e.taskType
		}
	}
	return "general"
}

var urlRe = regexp.MustCompile(`https?://[^\s]+`)

// knownLanguages is the fixed vocabulary ExtractParameters recognizes.
var knownLanguages = []string{"python", "javascript", "html", "css"}

// ExtractParameters pulls structured parameters out of free reasoning text:
// the first URL, and the first known language name when the text mentions
// a language at all.
func (r *Resolver) ExtractParameters(reasoning string) map[string]string {
	params := make(map[string]string)
	lower := strings.ToLower(reasoning)

	if strings.Contains(lower, "url") {
		if urls := urlRe.FindAllString(reasoning, -1); len(urls) > 0 {
			params["url"] = urls[0]
		}
	}
	if strings.Contains(lower, "language") {
		for _, lang := range knownLanguages {
			if strings.Contains(lower, lang) {
				params["language"] = lang
				break
			}
		}
	}
	return params
}

// Analyze produces the deterministic stand-in text for a reasoning step.
// The step name is passed through so the output names what was analyzed.
func (r *Resolver) Analyze(stepName, query string) string {
	switch stepName {
	case "initial_analysis":
		return fmt.Sprintf("%s: intent=%s complexity=medium urgency=normal domain=%s",
			stepName, r.Intent(query), r.Domain(query))
	case "tool_selection":
		return fmt.Sprintf("%s: primary_tool=%s selected by keyword analysis",
			stepName, r.SelectCapability(query))
	default:
		return fmt.Sprintf("%s: fallback analysis", stepName)
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
