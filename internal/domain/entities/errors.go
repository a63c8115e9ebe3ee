package entities

import "errors"

var (
	// ErrChatNotFound is returned by chat repositories for chats without a signed-in account.
	ErrChatNotFound = errors.New("chat session not found")
)
