package models

import (
	"time"
)

// Message represents a secure message between a patient and a provider
type Message struct {
	BaseModel
	SenderID      string    `gorm:"size:36;index" json:"senderId"`
	SenderName    string    `gorm:"size:200" json:"senderName"`
	RecipientID   string    `gorm:"size:36;index" json:"recipientId"`
	RecipientName string    `gorm:"size:200" json:"recipientName"`
	Timestamp     time.Time `gorm:"index" json:"timestamp"`
	Subject       string    `gorm:"type:text" json:"subject"`
	Content       string    `gorm:"type:text" json:"content"`
	Read          bool      `gorm:"default:false" json:"read"`
	Urgent        bool      `gorm:"default:false" json:"urgent"`
}

// Involves reports whether userID sent or received the message.
func (m *Message) Involves(userID string) bool {
	return m.SenderID == userID || m.RecipientID == userID
}
