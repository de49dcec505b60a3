package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatSender string

const (
	SenderStudent   ChatSender = "student"
	SenderAssistant ChatSender = "assistant"
)

// ChatMessage is one entry of the classroom AI side-channel. Every exchange
// is also mirrored to the host's chat log for admin visibility.
type ChatMessage struct {
	ID        string     `json:"id"`
	SessionID string     `json:"sessionId"`
	StudentID string     `json:"studentId"`
	Sender    ChatSender `json:"sender"`
	Text      string     `json:"text"`
	Pending   bool       `json:"pending,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func NewChatMessage(sessionID, studentID string, sender ChatSender, text string) ChatMessage {
	return ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		StudentID: studentID,
		Sender:    sender,
		Text:      text,
		CreatedAt: time.Now(),
	}
}
