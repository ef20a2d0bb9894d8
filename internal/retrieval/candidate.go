package retrieval

import "time"

// CandidateType tags which pool a ranked candidate came from.
type CandidateType string

const (
	TypeVector       CandidateType = "vector"
	TypeMemory       CandidateType = "memory"
	TypeConversation CandidateType = "conversation"
)

// VectorHit is a semantic search result with a cosine similarity score.
type VectorHit struct {
	Text             string            `json:"text"`
	CosineSimilarity float64           `json:"cosine_similarity"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// MemoryHit is a structured memory record. Importance runs 0–10.
type MemoryHit struct {
	Text        string  `json:"text"`
	Importance  float64 `json:"importance"`
	AccessCount int     `json:"access_count"`
	Category    string  `json:"category"`
}

// ConversationHit is one user/assistant exchange from session history.
type ConversationHit struct {
	UserText      string    `json:"user_text"`
	AssistantText string    `json:"assistant_text"`
	SessionID     string    `json:"session_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// Pools holds the three heterogeneous candidate pools fed to Rank.
type Pools struct {
	Vector       []VectorHit       `json:"vector"`
	Memory       []MemoryHit       `json:"memory"`
	Conversation []ConversationHit `json:"conversation"`
}

// RankedCandidate is a pool candidate normalized onto a single [0,1] scale.
type RankedCandidate struct {
	Type            CandidateType     `json:"type"`
	NormalizedScore float64           `json:"normalized_score"`
	Text            string            `json:"text"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// Budgets caps how many items each context section keeps after ranking.
type Budgets struct {
	Vector       int `json:"vector"`
	Memory       int `json:"memory"`
	Conversation int `json:"conversation"`
}

// DefaultBudgets returns the standard per-section item budgets.
func DefaultBudgets() Budgets {
	return Budgets{Vector: 5, Memory: 5, Conversation: 3}
}

// Metrics summarizes relevance alongside an assembled context.
type Metrics struct {
	VectorRelevance float64 `json:"vector_relevance"`
	MemoryRelevance float64 `json:"memory_relevance"`
	HasConversation bool    `json:"has_conversation"`
}
