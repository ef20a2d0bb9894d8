package vectorstore

import (
	"context"
	"fmt"

	"github.com/nidhogg/think-tank/internal/embedding"
	"github.com/nidhogg/think-tank/internal/retrieval"
)

// Searcher embeds queries and searches the knowledge collection,
// satisfying retrieval.VectorSearcher.
type Searcher struct {
	embedder   embedding.Provider
	client     *Client
	collection string
}

// NewSearcher wires an embedder and a Qdrant client into a query searcher.
func NewSearcher(embedder embedding.Provider, client *Client, collection string) *Searcher {
	if collection == "" {
		collection = CollKnowledge
	}
	return &Searcher{embedder: embedder, client: client, collection: collection}
}

// Init ensures the knowledge collection exists.
func (s *Searcher) Init(ctx context.Context) error {
	dim := uint64(s.embedder.Dimension())
	if dim == 0 {
		dim = 1024
	}
	return s.client.EnsureCollection(ctx, s.collection, dim)
}

// SearchVectors embeds the query and returns the top hits as vector
// candidates for the retrieval ranker.
func (s *Searcher) SearchVectors(ctx context.Context, query string, limit int) ([]retrieval.VectorHit, error) {
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, nil
	}

	hits, err := s.client.Search(ctx, s.collection, vectors[0], uint64(limit))
	if err != nil {
		return nil, err
	}

	out := make([]retrieval.VectorHit, 0, len(hits))
	for _, h := range hits {
		metadata := make(map[string]string, len(h.Payload))
		for k, v := range h.Payload {
			if k != "content" {
				metadata[k] = v
			}
		}
		metadata["id"] = h.ID
		out = append(out, retrieval.VectorHit{
			Text:             h.Payload["content"],
			CosineSimilarity: float64(h.Score),
			Metadata:         metadata,
		})
	}
	return out, nil
}

// Store embeds content and indexes it into the knowledge collection.
func (s *Searcher) Store(ctx context.Context, content string, metadata map[string]string) (string, error) {
	vectors, err := s.embedder.Embed(ctx, []string{content})
	if err != nil {
		return "", fmt.Errorf("embed content: %w", err)
	}
	if len(vectors) == 0 {
		return "", fmt.Errorf("empty embedding result")
	}
	return s.client.Index(ctx, s.collection, content, vectors[0], metadata)
}
