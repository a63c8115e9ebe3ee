package storage

import (
	"sync"
	"time"
)

// QuestionMessage is the telegram message showing a chat's current question.
type QuestionMessage struct {
	ChatID     int64
	MessageID  int
	QuestionID string
	SentAt     time.Time
}

type MessageStorage struct {
	mu       sync.RWMutex
	messages map[int64]QuestionMessage
}

func NewMessageStorage() *MessageStorage {
	return &MessageStorage{
		messages: make(map[int64]QuestionMessage),
	}
}

func (s *MessageStorage) Get(chatID int64) (QuestionMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[chatID]
	return msg, ok
}

func (s *MessageStorage) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.messages, chatID)
}

func (s *MessageStorage) UpsertAndGetPrev(chatID int64, messageID int, questionID string) (prev QuestionMessage, hadPrev bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadPrev = s.messages[chatID]

	s.messages[chatID] = QuestionMessage{
		ChatID:     chatID,
		MessageID:  messageID,
		QuestionID: questionID,
		SentAt:     time.Now(),
	}

	return prev, hadPrev
}
