// Package memstore persists structured memories in Neo4j. Each memory
// carries an importance score from 0 to 10 and an access count bumped on
// every retrieval, which together feed the hybrid retrieval ranker.
package memstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/nidhogg/think-tank/internal/retrieval"
	"go.uber.org/zap"
)

// Memory is one stored memory record.
type Memory struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Importance  float64   `json:"importance"` // 0..10
	AccessCount int       `json:"access_count"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store handles Neo4j operations for the memory system.
type Store struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewStore creates a new Neo4j memory store.
func NewStore(uri, user, password string, logger *zap.Logger) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	return &Store{driver: driver, logger: logger}, nil
}

// Close shuts down the Neo4j driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Ping verifies the Neo4j connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// Create stores a new memory node. Importance is clamped to [0, 10].
func (s *Store) Create(ctx context.Context, mem *Memory) error {
	if mem.ID == "" {
		mem.ID = uuid.New().String()
	}
	if mem.Category == "" {
		mem.Category = "general"
	}
	if mem.Importance < 0 {
		mem.Importance = 0
	}
	if mem.Importance > 10 {
		mem.Importance = 10
	}
	mem.CreatedAt = time.Now()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`CREATE (m:Memory {
			id: $id, content: $content, importance: $importance,
			category: $category, access_count: 0, created_at: datetime()
		})`,
		map[string]interface{}{
			"id":         mem.ID,
			"content":    mem.Content,
			"importance": mem.Importance,
			"category":   mem.Category,
		})
	if err != nil {
		return fmt.Errorf("create memory: %w", err)
	}
	return nil
}

// Search returns memories whose content contains the query, most important
// first, and bumps their access counts.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]*Memory, error) {
	if limit <= 0 {
		limit = 10
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (m:Memory)
		 WHERE toLower(m.content) CONTAINS toLower($query)
		 SET m.access_count = m.access_count + 1
		 RETURN m.id, m.content, m.importance, m.access_count, m.category
		 ORDER BY m.importance DESC LIMIT $limit`,
		map[string]interface{}{"query": query, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("search memories: %w", err)
	}

	var memories []*Memory
	for result.Next(ctx) {
		rec := result.Record()
		id, _ := rec.Get("m.id")
		content, _ := rec.Get("m.content")
		importance, _ := rec.Get("m.importance")
		accessCount, _ := rec.Get("m.access_count")
		category, _ := rec.Get("m.category")
		memories = append(memories, &Memory{
			ID:          id.(string),
			Content:     content.(string),
			Importance:  importance.(float64),
			AccessCount: int(accessCount.(int64)),
			Category:    category.(string),
		})
	}
	return memories, result.Err()
}

// SearchMemories adapts Search to the retrieval ranker's candidate type.
func (s *Store) SearchMemories(ctx context.Context, query string, limit int) ([]retrieval.MemoryHit, error) {
	memories, err := s.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	hits := make([]retrieval.MemoryHit, len(memories))
	for i, m := range memories {
		hits[i] = retrieval.MemoryHit{
			Text:        m.Content,
			Importance:  m.Importance,
			AccessCount: m.AccessCount,
			Category:    m.Category,
		}
	}
	return hits, nil
}
