package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Group struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null" json:"owner_id"`
	Owner       User      `gorm:"foreignKey:OwnerID" json:"-"`
	Name        string    `gorm:"not null;size:100" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	IsArchived  bool      `gorm:"not null;default:false" json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// Request structs
type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ArchiveGroupRequest struct {
	IsArchived *bool `json:"is_archived" binding:"required"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Response structs
type GroupResponse struct {
	ID          uuid.UUID             `json:"id"`
	OwnerID     uuid.UUID             `json:"owner_id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	IsArchived  bool                  `json:"is_archived"`
	Members     []GroupMemberResponse `json:"members"`
	CreatedAt   time.Time             `json:"created_at"`
}

type GroupMemberResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	IsOwner  bool      `json:"is_owner"`
	Balance  int64     `json:"balance"`
	JoinedAt time.Time `json:"joined_at"`
}
