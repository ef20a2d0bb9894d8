package retrieval

import (
	"context"

	"go.uber.org/zap"
)

// VectorSearcher yields semantic hits for a query.
type VectorSearcher interface {
	SearchVectors(ctx context.Context, query string, limit int) ([]VectorHit, error)
}

// MemorySearcher yields structured memory hits for a query.
type MemorySearcher interface {
	SearchMemories(ctx context.Context, query string, limit int) ([]MemoryHit, error)
}

// ConversationSearcher yields recent exchanges for a session.
type ConversationSearcher interface {
	SearchConversations(ctx context.Context, query string, limit int) ([]ConversationHit, error)
}

// Sources fans a query out to the three candidate stores and builds the
// pools for Rank. Any store may be nil (its pool stays empty), and a
// store error degrades to an empty pool with a logged warning so one
// broken collaborator never sinks the whole retrieval.
type Sources struct {
	vector       VectorSearcher
	memory       MemorySearcher
	conversation ConversationSearcher
	logger       *zap.Logger
}

// NewSources wires the candidate stores together.
func NewSources(v VectorSearcher, m MemorySearcher, c ConversationSearcher, logger *zap.Logger) *Sources {
	return &Sources{vector: v, memory: m, conversation: c, logger: logger}
}

// Gather queries every configured store and returns the filled pools.
func (s *Sources) Gather(ctx context.Context, query string, limit int) Pools {
	var pools Pools

	if s.vector != nil {
		hits, err := s.vector.SearchVectors(ctx, query, limit)
		if err != nil {
			s.logger.Warn("vector search failed", zap.Error(err))
		} else {
			pools.Vector = hits
		}
	}
	if s.memory != nil {
		hits, err := s.memory.SearchMemories(ctx, query, limit)
		if err != nil {
			s.logger.Warn("memory search failed", zap.Error(err))
		} else {
			pools.Memory = hits
		}
	}
	if s.conversation != nil {
		hits, err := s.conversation.SearchConversations(ctx, query, limit)
		if err != nil {
			s.logger.Warn("conversation search failed", zap.Error(err))
		} else {
			pools.Conversation = hits
		}
	}
	return pools
}

// Retrieve gathers pools, ranks them, and assembles the budgeted context.
func (s *Sources) Retrieve(ctx context.Context, query string, limit int, budgets Budgets) ([]RankedCandidate, string, Metrics) {
	pools := s.Gather(ctx, query, limit)
	ranked := Rank(query, pools)
	text, metrics := AssembleContext(ranked, budgets)
	return ranked, text, metrics
}
