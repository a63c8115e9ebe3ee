package entities

import "time"

// Cookie is a server session cookie kept for a chat.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ChatSession binds a telegram chat to a signed-in server account.
type ChatSession struct {
	ChatID     int64
	Username   string
	Cookies    []Cookie
	SignedInAt time.Time
}

func NewChatSession(chatID int64, username string, cookies []Cookie) *ChatSession {
	return &ChatSession{
		ChatID:     chatID,
		Username:   username,
		Cookies:    cookies,
		SignedInAt: time.Now(),
	}
}
