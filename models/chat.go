package models

import "time"

// ChatRole identifies the speaker of a tutor chat message.
type ChatRole string

const (
	ChatUser      ChatRole = "user"
	ChatAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of a user's conversation with the AI tutor.
type ChatMessage struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index:idx_chat_user_time" json:"user"`
	Role      ChatRole  `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Model     string    `gorm:"size:64" json:"model,omitempty"`
	CreatedAt time.Time `gorm:"index:idx_chat_user_time" json:"createdAt"`
}
