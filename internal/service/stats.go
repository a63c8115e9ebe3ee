package service

import (
	"context"
	"time"

	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
)

type StatsService struct {
	repository JournalRepository
	now        func() time.Time
}

func NewStatsService(repository JournalRepository) *StatsService {
	return &StatsService{repository: repository, now: time.Now}
}

// Record stores an answered question.
func (s *StatsService) Record(ctx context.Context, rec *entities.AnswerRecord) error {
	return s.repository.Record(ctx, rec)
}

// Stats summarizes the answers of chatID. "Today" starts at local midnight.
func (s *StatsService) Stats(ctx context.Context, chatID int64) (*entities.AnswerStats, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.repository.Stats(ctx, chatID, midnight)
}
