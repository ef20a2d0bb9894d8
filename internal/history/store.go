// Package history persists conversation exchanges in PostgreSQL and
// serves them back as the conversation pool for hybrid retrieval.
package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nidhogg/think-tank/internal/retrieval"
	"go.uber.org/zap"
)

// Store wraps a PostgreSQL connection pool.
type Store struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// New creates a Store with a pgx connection pool.
func New(dsn string, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.Info("PostgreSQL connected")
	return &Store{db: pool, logger: logger}, nil
}

// Migrate reads and executes all .up.sql files from the migrations directory.
func (s *Store) Migrate(ctx context.Context, migrationsDir string) error {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(migrationsDir, f))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", f, err)
		}
		if _, err := s.db.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("exec migration %s: %w", f, err)
		}
		s.logger.Info("Migration applied", zap.String("file", f))
	}
	return nil
}

// Close shuts down the connection pool.
func (s *Store) Close() {
	s.db.Close()
}

// Exchange is one user/assistant turn within a session.
type Exchange struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	UserText      string    `json:"user_text"`
	AssistantText string    `json:"assistant_text"`
	CreatedAt     time.Time `json:"created_at"`
}

// FindOrCreateSession returns an existing session for the channel or
// creates a new one.
func (s *Store) FindOrCreateSession(ctx context.Context, channel string) (string, error) {
	var id string
	err := s.db.QueryRow(ctx, `
		INSERT INTO sessions (id, channel, status)
		VALUES (gen_random_uuid(), $1, 'active')
		ON CONFLICT (channel)
		DO UPDATE SET status = 'active'
		RETURNING id`,
		channel,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("find or create session: %w", err)
	}
	return id, nil
}

// AppendExchange stores one completed user/assistant turn.
func (s *Store) AppendExchange(ctx context.Context, sessionID, userText, assistantText string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO exchanges (id, session_id, user_text, assistant_text)
		VALUES (gen_random_uuid(), $1, $2, $3)`,
		sessionID, userText, assistantText,
	)
	if err != nil {
		return fmt.Errorf("append exchange: %w", err)
	}
	return nil
}

// Recent returns the latest exchanges across all sessions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, user_text, assistant_text, created_at
		FROM exchanges
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []Exchange
	for rows.Next() {
		var e Exchange
		if err := rows.Scan(&e.ID, &e.SessionID, &e.UserText, &e.AssistantText, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		exchanges = append(exchanges, e)
	}
	return exchanges, rows.Err()
}

// SearchConversations adapts Recent to the retrieval ranker's candidate
// type. The query is unused: conversation turns carry no native relevance
// signal, recency is the only ordering.
func (s *Store) SearchConversations(ctx context.Context, query string, limit int) ([]retrieval.ConversationHit, error) {
	exchanges, err := s.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	hits := make([]retrieval.ConversationHit, len(exchanges))
	for i, e := range exchanges {
		hits[i] = retrieval.ConversationHit{
			UserText:      e.UserText,
			AssistantText: e.AssistantText,
			SessionID:     e.SessionID,
			Timestamp:     e.CreatedAt,
		}
	}
	return hits, nil
}
