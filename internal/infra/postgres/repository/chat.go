package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
	"github.com/aliskhannn/nihonngo-exam/internal/infra/postgres"
)

// ChatRepository provides access to signed-in chat sessions in the database.
type ChatRepository struct {
	db postgres.DBTX
}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(db postgres.DBTX) *ChatRepository {
	return &ChatRepository{db: db}
}

// Save inserts a chat session or replaces the account and cookies of an existing one.
func (r *ChatRepository) Save(ctx context.Context, chat *entities.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (chat_id, username, cookies, signed_in_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chat_id) DO UPDATE SET
			username = EXCLUDED.username,
			cookies = EXCLUDED.cookies,
			signed_in_at = EXCLUDED.signed_in_at
	`

	cookies, err := json.Marshal(chat.Cookies)
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, chat.ChatID, chat.Username, cookies, chat.SignedInAt); err != nil {
		return fmt.Errorf("save chat session: %w", err)
	}

	return nil
}

// Get retrieves the chat session for chatID.
func (r *ChatRepository) Get(ctx context.Context, chatID int64) (*entities.ChatSession, error) {
	query := `
		SELECT chat_id, username, cookies, signed_in_at
		FROM chat_sessions
		WHERE chat_id = $1
	`

	var (
		chat    entities.ChatSession
		cookies []byte
	)
	err := r.db.QueryRow(ctx, query, chatID).Scan(
		&chat.ChatID,
		&chat.Username,
		&cookies,
		&chat.SignedInAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrChatNotFound
		}
		return nil, fmt.Errorf("get chat session: %w", err)
	}

	if err := json.Unmarshal(cookies, &chat.Cookies); err != nil {
		return nil, fmt.Errorf("decode cookies: %w", err)
	}

	return &chat, nil
}

// Delete removes the chat session for chatID.
func (r *ChatRepository) Delete(ctx context.Context, chatID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM chat_sessions WHERE chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("delete chat session: %w", err)
	}
	return nil
}
