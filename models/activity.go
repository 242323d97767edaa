package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityType string

const (
	ActivityGroupCreated     ActivityType = "group_created"
	ActivityGroupArchived    ActivityType = "group_archived"
	ActivityGroupUnarchived  ActivityType = "group_unarchived"
	ActivityMemberAdded      ActivityType = "member_added"
	ActivityMemberLeft       ActivityType = "member_left"
	ActivityMemberRemoved    ActivityType = "member_removed"
	ActivitySpendingAdded    ActivityType = "spending_added"
	ActivityPaymentRecorded  ActivityType = "payment_recorded"
	ActivityPaymentConfirmed ActivityType = "payment_confirmed"
	ActivityInviteSent       ActivityType = "invite_sent"
)

// Activity is one row in a group's audit feed, written after the underlying
// change commits.
type Activity struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"group_id"`
	Group     Group        `gorm:"foreignKey:GroupID" json:"-"`
	ActorID   uuid.UUID    `gorm:"type:uuid;not null" json:"actor_id"`
	Actor     User         `gorm:"foreignKey:ActorID" json:"-"`
	Type      ActivityType `gorm:"not null;size:30" json:"type"`
	Message   string       `gorm:"not null;size:255" json:"message"`
	CreatedAt time.Time    `json:"created_at"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type ActivityResponse struct {
	ID        uuid.UUID    `json:"id"`
	GroupID   uuid.UUID    `json:"group_id"`
	GroupName string       `json:"group_name"`
	ActorID   uuid.UUID    `json:"actor_id"`
	ActorName string       `json:"actor_name"`
	Type      ActivityType `json:"type"`
	Message   string       `json:"message"`
	CreatedAt time.Time    `json:"created_at"`
}
