package retrieval

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRankOrdering(t *testing.T) {
	pools := Pools{
		Vector: []VectorHit{{Text: "a", CosineSimilarity: 0.9}},
		Memory: []MemoryHit{{Text: "b", Importance: 8, Category: "fact"}},
	}
	ranked := Rank("x", pools)

	if len(ranked) != 2 {
		t.Fatalf("got %d candidates, want 2", len(ranked))
	}
	if ranked[0].Type != TypeVector || ranked[0].NormalizedScore != 0.9 {
		t.Errorf("first = %+v, want vector 0.9", ranked[0])
	}
	if ranked[1].Type != TypeMemory || ranked[1].NormalizedScore != 0.8 {
		t.Errorf("second = %+v, want memory 0.8", ranked[1])
	}
}

func TestRankTieBreakPoolPrecedence(t *testing.T) {
	// Equal scores: vector before memory before conversation,
	// intra-pool order preserved.
	pools := Pools{
		Vector: []VectorHit{
			{Text: "v1", CosineSimilarity: 0.5},
			{Text: "v2", CosineSimilarity: 0.5},
		},
		Memory:       []MemoryHit{{Text: "m1", Importance: 5}},
		Conversation: []ConversationHit{{UserText: "u", AssistantText: "a"}},
	}
	ranked := Rank("x", pools)

	var order []string
	for _, c := range ranked {
		order = append(order, string(c.Type))
	}
	want := []string{"vector", "vector", "memory", "conversation"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if ranked[0].Text != "v1" || ranked[1].Text != "v2" {
		t.Errorf("intra-pool order not preserved: %q then %q", ranked[0].Text, ranked[1].Text)
	}
}

func TestRankPure(t *testing.T) {
	pools := Pools{
		Vector:       []VectorHit{{Text: "a", CosineSimilarity: 0.7}, {Text: "b", CosineSimilarity: 0.3}},
		Memory:       []MemoryHit{{Text: "c", Importance: 7}, {Text: "d", Importance: 3}},
		Conversation: []ConversationHit{{UserText: "hi", AssistantText: "hello"}},
	}
	first := Rank("q", pools)
	second := Rank("q", pools)
	if !reflect.DeepEqual(first, second) {
		t.Error("Rank is not deterministic for identical inputs")
	}
}

func TestRankClampsNegativeCosine(t *testing.T) {
	ranked := Rank("x", Pools{Vector: []VectorHit{{Text: "a", CosineSimilarity: -0.4}}})
	if ranked[0].NormalizedScore != 0 {
		t.Errorf("score = %v, want 0 for negative cosine", ranked[0].NormalizedScore)
	}
}

func TestRankEmptyPools(t *testing.T) {
	ranked := Rank("x", Pools{})
	if len(ranked) != 0 {
		t.Fatalf("got %d candidates for empty pools", len(ranked))
	}
	text, metrics := AssembleContext(ranked, DefaultBudgets())
	if text != "" {
		t.Errorf("context = %q, want empty", text)
	}
	if metrics.VectorRelevance != 0 || metrics.MemoryRelevance != 0 || metrics.HasConversation {
		t.Errorf("metrics = %+v, want zeros", metrics)
	}
}

func TestAssembleContextTruncationKeepsTop(t *testing.T) {
	var vector []VectorHit
	for i := 0; i < 8; i++ {
		vector = append(vector, VectorHit{
			Text:             fmt.Sprintf("doc-%d", i),
			CosineSimilarity: float64(8-i) / 10, // descending 0.8 .. 0.1
		})
	}
	ranked := Rank("x", Pools{Vector: vector})
	text, _ := AssembleContext(ranked, Budgets{Vector: 3, Memory: 5, Conversation: 3})

	for i := 0; i < 3; i++ {
		if !strings.Contains(text, fmt.Sprintf("doc-%d", i)) {
			t.Errorf("missing top item doc-%d", i)
		}
	}
	if strings.Contains(text, "doc-3") {
		t.Error("context contains item past the section budget")
	}
}

func TestAssembleContextSections(t *testing.T) {
	pools := Pools{
		Vector:       []VectorHit{{Text: "knowledge", CosineSimilarity: 0.9}},
		Memory:       []MemoryHit{{Text: "remembered", Importance: 6, Category: "preference"}},
		Conversation: []ConversationHit{{UserText: "ping", AssistantText: "pong", SessionID: "s1", Timestamp: time.Now()}},
	}
	text, metrics := AssembleContext(Rank("x", pools), DefaultBudgets())

	for _, want := range []string{
		"Relevant Knowledge:", "knowledge",
		"Relevant Memories:", "[preference] remembered",
		"Recent Conversation:", "User: ping", "Assistant: pong",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("context missing %q:\n%s", want, text)
		}
	}
	if metrics.VectorRelevance != 0.9 {
		t.Errorf("vector relevance = %v", metrics.VectorRelevance)
	}
	if metrics.MemoryRelevance != 0.6 {
		t.Errorf("memory relevance = %v", metrics.MemoryRelevance)
	}
	if !metrics.HasConversation {
		t.Error("has_conversation = false")
	}
}

func TestAssembleContextOmitsEmptySections(t *testing.T) {
	ranked := Rank("x", Pools{Memory: []MemoryHit{{Text: "only", Importance: 5}}})
	text, _ := AssembleContext(ranked, DefaultBudgets())
	if strings.Contains(text, "Relevant Knowledge") || strings.Contains(text, "Recent Conversation") {
		t.Errorf("empty sections rendered:\n%s", text)
	}
}

// --- Sources ---

type stubVector struct{ err error }

func (s *stubVector) SearchVectors(ctx context.Context, query string, limit int) ([]VectorHit, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []VectorHit{{Text: "v", CosineSimilarity: 0.8}}, nil
}

type stubMemory struct{}

func (s *stubMemory) SearchMemories(ctx context.Context, query string, limit int) ([]MemoryHit, error) {
	return []MemoryHit{{Text: "m", Importance: 4}}, nil
}

func TestSourcesGatherTolerates(t *testing.T) {
	// Vector store broken, conversation store absent: memory pool survives.
	src := NewSources(&stubVector{err: fmt.Errorf("down")}, &stubMemory{}, nil, zap.NewNop())
	pools := src.Gather(context.Background(), "q", 5)

	if len(pools.Vector) != 0 {
		t.Errorf("vector pool = %d items, want 0", len(pools.Vector))
	}
	if len(pools.Memory) != 1 {
		t.Errorf("memory pool = %d items, want 1", len(pools.Memory))
	}
	if len(pools.Conversation) != 0 {
		t.Errorf("conversation pool = %d items, want 0", len(pools.Conversation))
	}
}

func TestSourcesRetrieve(t *testing.T) {
	src := NewSources(&stubVector{}, &stubMemory{}, nil, zap.NewNop())
	ranked, text, metrics := src.Retrieve(context.Background(), "q", 5, DefaultBudgets())

	if len(ranked) != 2 {
		t.Fatalf("got %d ranked, want 2", len(ranked))
	}
	if ranked[0].Type != TypeVector {
		t.Errorf("first ranked = %s, want vector", ranked[0].Type)
	}
	if text == "" {
		t.Error("empty context")
	}
	if metrics.MemoryRelevance != 0.4 {
		t.Errorf("memory relevance = %v", metrics.MemoryRelevance)
	}
}
