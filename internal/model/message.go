package model

import (
	"time"

	"github.com/google/uuid"
)

// Message is an internal note between two users.
type Message struct {
	BaseModel
	SenderID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender     *User      `gorm:"foreignKey:SenderID" json:"-"`
	ReceiverID uuid.UUID  `gorm:"type:uuid;not null;index" json:"receiver_id"`
	Receiver   *User      `gorm:"foreignKey:ReceiverID" json:"-"`
	Subject    string     `gorm:"type:varchar(255);not null" json:"subject"`
	Body       string     `gorm:"type:text;not null" json:"body"`
	IsRead     bool       `gorm:"not null;default:false;index" json:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
}

type MessageResponse struct {
	ID         uuid.UUID    `json:"id"`
	Sender     *UserSummary `json:"sender,omitempty"`
	Receiver   *UserSummary `json:"receiver,omitempty"`
	SenderID   uuid.UUID    `json:"sender_id"`
	ReceiverID uuid.UUID    `json:"receiver_id"`
	Subject    string       `json:"subject"`
	Body       string       `json:"body"`
	IsRead     bool         `json:"is_read"`
	ReadAt     *time.Time   `json:"read_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		Sender:     m.Sender.Summary(),
		Receiver:   m.Receiver.Summary(),
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Subject:    m.Subject,
		Body:       m.Body,
		IsRead:     m.IsRead,
		ReadAt:     m.ReadAt,
		CreatedAt:  m.CreatedAt,
	}
}
