package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
	"github.com/aliskhannn/nihonngo-exam/internal/infra/postgres"
)

// JournalRepository stores answered questions.
type JournalRepository struct {
	db postgres.DBTX
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(db postgres.DBTX) *JournalRepository {
	return &JournalRepository{db: db}
}

// Record inserts a journal entry and sets its ID.
func (r *JournalRepository) Record(ctx context.Context, rec *entities.AnswerRecord) error {
	query := `
		INSERT INTO answer_journal (
			chat_id, session_id, question_id, term, chosen, correct_index, is_correct, answered_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		rec.ChatID,
		rec.SessionID,
		rec.QuestionID,
		rec.Term,
		rec.Chosen,
		rec.CorrectIndex,
		rec.IsCorrect,
		rec.AnsweredAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("record answer: %w", err)
	}

	return nil
}

// Stats summarizes the journal of chatID. Entries at or after since count as today.
func (r *JournalRepository) Stats(ctx context.Context, chatID int64, since time.Time) (*entities.AnswerStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_correct),
			COUNT(*) FILTER (WHERE answered_at >= $2)
		FROM answer_journal
		WHERE chat_id = $1
	`

	var st entities.AnswerStats
	if err := r.db.QueryRow(ctx, query, chatID, since).Scan(&st.Total, &st.Correct, &st.AnsweredToday); err != nil {
		return nil, fmt.Errorf("answer stats: %w", err)
	}

	return &st, nil
}

// DeleteChat removes every journal entry of chatID.
func (r *JournalRepository) DeleteChat(ctx context.Context, chatID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM answer_journal WHERE chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("delete answer_journal: %w", err)
	}
	return nil
}
