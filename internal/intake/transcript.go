package intake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TranscriptStore persists conversation turns to PostgreSQL for
// long-term history. A nil store is a no-op, so the chat flow works
// without the relational database wired.
type TranscriptStore struct {
	db *sql.DB
}

func NewTranscriptStore(db *sql.DB) *TranscriptStore {
	if db == nil {
		return nil
	}
	return &TranscriptStore{db: db}
}

// ensureConversation creates the conversation row on first contact and
// bumps updated_at afterwards.
func (s *TranscriptStore) ensureConversation(ctx context.Context, sessionID string) (uuid.UUID, error) {
	var existingID uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM conversations WHERE session_id = $1`,
		sessionID,
	).Scan(&existingID)

	if err == nil {
		s.db.ExecContext(ctx,
			`UPDATE conversations SET updated_at = $1 WHERE id = $2`,
			time.Now().UTC(), existingID,
		)
		return existingID, nil
	}
	if err != sql.ErrNoRows {
		return uuid.Nil, fmt.Errorf("intake: failed to check existing conversation: %w", err)
	}

	newID := uuid.New()
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, session_id, started_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, newID, sessionID, now, now, now)
	if err != nil {
		// Another request may have created it between the check and the
		// insert.
		if strings.Contains(err.Error(), "duplicate key") {
			return s.ensureConversation(ctx, sessionID)
		}
		return uuid.Nil, fmt.Errorf("intake: failed to create conversation: %w", err)
	}
	return newID, nil
}

// LogTurn records one visitor message and the reply it produced.
func (s *TranscriptStore) LogTurn(ctx context.Context, sessionID, stage, serviceIntent, message, response string) error {
	if s == nil || s.db == nil {
		return nil
	}

	convID, err := s.ensureConversation(ctx, sessionID)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversation_turns (id, conversation_id, stage, service_intent, message, response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.New(), convID, stage, serviceIntent, message, response, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("intake: failed to insert turn: %w", err)
	}
	return nil
}
