package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/nihonngo-exam/internal/infra/postgres"
)

// ResetRepository removes everything stored for a chat in one transaction.
type ResetRepository struct {
	tr *postgres.Transactor
}

func NewResetRepository(tr *postgres.Transactor) *ResetRepository {
	return &ResetRepository{tr: tr}
}

func (r *ResetRepository) ResetChat(ctx context.Context, chatID int64) error {
	return r.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := NewJournalRepository(tx).DeleteChat(ctx, chatID); err != nil {
			return err
		}
		return NewChatRepository(tx).Delete(ctx, chatID)
	})
}
