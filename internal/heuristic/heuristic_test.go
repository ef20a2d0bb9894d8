package heuristic

import "testing"

func TestIntent(t *testing.T) {
	r := NewResolver()
	cases := []struct {
		query string
		want  string
	}{
		{"create a landing page", "create"},
		{"analyze this dataset", "analyze"},
		{"scrape https://example.com", "scrape"},
		{"find my notes", "search"},
		{"hello there", "general"},
	}
	for _, c := range cases {
		if got := r.Intent(c.query); got != c.want {
			t.Errorf("Intent(%q) = %q, want %q", c.query, got, c.want)
		}
	}
}

func TestDomain(t *testing.T) {
	r := NewResolver()
	cases := []struct {
		query string
		want  string
	}{
		{"fetch this url for me", "web"},
		{"write a function in go", "code"},
		{"parse the csv", "data"},
		{"save to a file", "file"},
		{"what's the weather", "general"},
	}
	for _, c := range cases {
		if got := r.Domain(c.query); got != c.want {
			t.Errorf("Domain(%q) = %q, want %q", c.query, got, c.want)
		}
	}
}

func TestSelectCapability(t *testing.T) {
	r := NewResolver()
	cases := []struct {
		query string
		want  string
	}{
		{"scrape https://example.com", "web_scraper"},
		{"generate a script", "code_generator"},
		{"analyze the json payload", "data_analyzer"},
		{"read the file", "file_processor"},
		{"explain quantum tunneling", "llm_query_tool"},
		{"good morning", "llm_query_tool"},
	}
	for _, c := range cases {
		if got := r.SelectCapability(c.query); got != c.want {
			t.Errorf("SelectCapability(%q) = %q, want %q", c.query, got, c.want)
		}
	}
}

func TestTaskType(t *testing.T) {
	r := NewResolver()
	cases := []struct {
		query string
		want  string
	}{
		{"debug this python error", "coding"},
		{"produce a statistics report", "analysis"},
		{"write a poem about rain", "creative"},
		{"why is the sky blue", "reasoning"},
		{"hi", "general"},
	}
	for _, c := range cases {
		if got := r.TaskType(c.query); got != c.want {
			t.Errorf("TaskType(%q) = %q, want %q", c.query, got, c.want)
		}
	}
}

func TestExtractParameters(t *testing.T) {
	r := NewResolver()

	params := r.ExtractParameters("target url is https://example.com/page and use python language")
	if params["url"] != "https://example.com/page" {
		t.Errorf("url = %q", params["url"])
	}
	if params["language"] != "python" {
		t.Errorf("language = %q", params["language"])
	}

	// No "url"/"language" markers: nothing extracted even if a URL is present.
	params = r.ExtractParameters("see https://example.com")
	if len(params) != 0 {
		t.Errorf("expected empty params, got %v", params)
	}
}

func TestExtractParametersFirstURLWins(t *testing.T) {
	r := NewResolver()
	params := r.ExtractParameters("url candidates: https://a.example https://b.example")
	if params["url"] != "https://a.example" {
		t.Errorf("url = %q, want first match", params["url"])
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	r := NewResolver()
	a := r.Analyze("initial_analysis", "scrape https://example.com")
	b := r.Analyze("initial_analysis", "scrape https://example.com")
	if a != b {
		t.Fatalf("Analyze not deterministic: %q vs %q", a, b)
	}
	if a == "" {
		t.Fatal("empty analysis")
	}
}
