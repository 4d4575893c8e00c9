package models

import "time"

type MessageStatus string

const (
	// Outbound lifecycle.
	MessagePending MessageStatus = "pending"
	MessageSent    MessageStatus = "sent"
	MessageFailed  MessageStatus = "failed"

	// Inbound lifecycle.
	MessageProcessed MessageStatus = "processed"
	MessageError     MessageStatus = "error"
)

// WhatsAppMessage records every message crossing the WhatsApp boundary, both
// broadcasts we send and webhook payloads we receive.
type WhatsAppMessage struct {
	ID           uint64        `gorm:"primarykey" json:"id"`
	Phone        string        `gorm:"type:varchar(20);not null;index" json:"phone"`
	Content      string        `gorm:"type:text;not null" json:"content"`
	Status       MessageStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	UserID       *uint64       `json:"user_id"`
	PresenceID   *uint64       `json:"presence_id"`
	ErrorMessage string        `gorm:"type:text" json:"error_message,omitempty"`
	ReceivedAt   *time.Time    `gorm:"index" json:"received_at"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	// Relations
	User     *User     `gorm:"foreignKey:UserID" json:"-"`
	Presence *Presence `gorm:"foreignKey:PresenceID" json:"-"`
}
