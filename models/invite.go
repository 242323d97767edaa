package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusDeclined InviteStatus = "declined"
	InviteStatusExpired  InviteStatus = "expired"
)

// Invite is a tokenized invitation to join a group, sent by email. A pending
// invite expires 24 hours after creation.
type Invite struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"group_id"`
	Group         Group        `gorm:"foreignKey:GroupID" json:"-"`
	SenderID      uuid.UUID    `gorm:"type:uuid;not null" json:"sender_id"`
	Sender        User         `gorm:"foreignKey:SenderID" json:"-"`
	ReceiverEmail string       `gorm:"not null;size:255;index" json:"receiver_email"`
	ReceiverID    *uuid.UUID   `gorm:"type:uuid" json:"receiver_id,omitempty"`
	Token         uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex" json:"token"`
	Status        InviteStatus `gorm:"not null;size:20;default:pending" json:"status"`
	ExpiresAt     time.Time    `gorm:"not null" json:"expires_at"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (i *Invite) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Token == uuid.Nil {
		i.Token = uuid.New()
	}
	return nil
}

type CreateInviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type InviteResponse struct {
	ID            uuid.UUID    `json:"id"`
	GroupID       uuid.UUID    `json:"group_id"`
	GroupName     string       `json:"group_name"`
	SenderName    string       `json:"sender_name"`
	ReceiverEmail string       `json:"receiver_email"`
	Token         uuid.UUID    `json:"token"`
	Status        InviteStatus `json:"status"`
	ExpiresAt     time.Time    `json:"expires_at"`
	CreatedAt     time.Time    `json:"created_at"`
}
