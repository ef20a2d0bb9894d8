package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

type stubAdvisor struct {
	id   string
	text string
	err  error
}

func (s *stubAdvisor) ID() string { return s.id }
func (s *stubAdvisor) Ask(ctx context.Context, prompt string, maxTokens int, temperature float64) (*Answer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &Answer{Text: s.text, ProviderID: s.id}, nil
}

func TestRouterFallbackChain(t *testing.T) {
	r := NewRouter(zap.NewNop())
	r.Register(&stubAdvisor{id: "primary", err: fmt.Errorf("down")})
	r.Register(&stubAdvisor{id: "backup-1", err: fmt.Errorf("also down")})
	r.Register(&stubAdvisor{id: "backup-2", text: "ok"})
	r.SetDefault("primary")
	r.SetFallbacks([]string{"backup-1", "backup-2"})

	ans, err := r.Ask(context.Background(), "q", 150, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.ProviderID != "backup-2" {
		t.Errorf("answered by %q, want backup-2", ans.ProviderID)
	}
}

func TestRouterAllFail(t *testing.T) {
	r := NewRouter(zap.NewNop())
	r.Register(&stubAdvisor{id: "only", err: fmt.Errorf("down")})

	if _, err := r.Ask(context.Background(), "q", 150, 0.3); err == nil {
		t.Fatal("expected error when every advisor fails")
	}
}

func TestRouterNoAdvisors(t *testing.T) {
	r := NewRouter(zap.NewNop())
	if _, err := r.Ask(context.Background(), "q", 150, 0.3); err == nil {
		t.Fatal("expected error with no advisors registered")
	}
}

func TestOpenAIAdvisorAsk(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.MaxTokens != 150 {
			t.Errorf("max_tokens = %d, want 150", req.MaxTokens)
		}
		json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{{Message: chatMessage{Role: "assistant", Content: "because reasons"}}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := NewOpenAIAdvisor(Config{ID: "test", Endpoint: srv.URL, Model: "m"}, zap.NewNop())
	ans, err := a.Ask(context.Background(), "why?", 150, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Text != "because reasons" {
		t.Errorf("text = %q", ans.Text)
	}
	if ans.ProviderID != "test" {
		t.Errorf("provider = %q", ans.ProviderID)
	}
}

func TestOpenAIAdvisorErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := NewOpenAIAdvisor(Config{ID: "test", Endpoint: srv.URL}, zap.NewNop())
	if _, err := a.Ask(context.Background(), "q", 10, 0); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestCacheKeyStable(t *testing.T) {
	a := cacheKey("prompt", 150, 0.3)
	b := cacheKey("prompt", 150, 0.3)
	if a != b {
		t.Errorf("cache key unstable: %q vs %q", a, b)
	}
	if a == cacheKey("prompt", 300, 0.3) {
		t.Error("cache key ignores max tokens")
	}
}
