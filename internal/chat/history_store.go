package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dondo0936/portfolio-assistant/internal/meetings"
	"github.com/dondo0936/portfolio-assistant/pkg/logging"
)

// HistoryStore persists conversation turns.
type HistoryStore interface {
	// Append records one turn for a session.
	Append(ctx context.Context, sessionID, role, content string) error
	// Recent returns the last n turns of a session, oldest first.
	Recent(ctx context.Context, sessionID string, n int) ([]Turn, error)
	// DeleteOlderThan removes turns created before cutoff and returns
	// how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PostgresHistoryStore stores turns in the conversation_history table.
type PostgresHistoryStore struct {
	db     meetings.Querier
	logger *logging.Logger
}

func NewPostgresHistoryStore(db meetings.Querier, logger *logging.Logger) *PostgresHistoryStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &PostgresHistoryStore{db: db, logger: logger}
}

func (s *PostgresHistoryStore) Append(ctx context.Context, sessionID, role, content string) error {
	query := `
		INSERT INTO conversation_history (id, session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.Exec(ctx, query, uuid.New(), sessionID, role, content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("chat: append history: %w", err)
	}
	return nil
}

func (s *PostgresHistoryStore) Recent(ctx context.Context, sessionID string, n int) ([]Turn, error) {
	query := `
		SELECT role, content FROM (
			SELECT role, content, created_at FROM conversation_history
			WHERE session_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC`

	rows, err := s.db.Query(ctx, query, sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("chat: recent history: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Content); err != nil {
			return nil, fmt.Errorf("chat: scan history: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chat: recent history: %w", err)
	}
	return turns, nil
}

func (s *PostgresHistoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM conversation_history WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("chat: delete old history: %w", err)
	}
	return tag.RowsAffected(), nil
}

// NopHistoryStore drops turns, used when no database is configured.
type NopHistoryStore struct{}

func (NopHistoryStore) Append(ctx context.Context, sessionID, role, content string) error {
	return nil
}

func (NopHistoryStore) Recent(ctx context.Context, sessionID string, n int) ([]Turn, error) {
	return nil, nil
}

func (NopHistoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}
