package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Spending is a group expense paid by one member and split among members
// according to the category-independent strategy recorded on the row.
// Spendings are immutable once created; corrections are made with
// compensating entries.
type Spending struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"group_id"`
	Group       Group         `gorm:"foreignKey:GroupID" json:"-"`
	CategoryID  uuid.UUID     `gorm:"type:uuid;not null" json:"category_id"`
	Category    Category      `gorm:"foreignKey:CategoryID" json:"-"`
	PayerID     uuid.UUID     `gorm:"type:uuid;not null" json:"payer_id"`
	Payer       User          `gorm:"foreignKey:PayerID" json:"-"`
	Description string        `gorm:"not null;size:255" json:"description"`
	Amount      int64         `gorm:"not null" json:"amount"`
	Strategy    SplitStrategy `gorm:"not null;size:20" json:"strategy"`
	Date        time.Time     `gorm:"not null" json:"date"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Shares []SpendingShare `gorm:"foreignKey:SpendingID" json:"shares,omitempty"`
}

func (s *Spending) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SpendingShare records the signed balance delta one spending applied to one
// member, including the payer's credit. Kept for audit: the shares of a
// spending sum to zero.
type SpendingShare struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SpendingID uuid.UUID `gorm:"type:uuid;not null;index" json:"spending_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Delta      int64     `gorm:"not null" json:"delta"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *SpendingShare) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// StrategyEntry is one user's parameter for PERCENTAGE and CUSTOM splits:
// a percentage point value or an exact amount in the smallest currency unit.
type StrategyEntry struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Value  int64     `json:"value"`
}

type CreateSpendingRequest struct {
	CategoryID  string          `json:"category_id" binding:"required"`
	Description string          `json:"description" binding:"required,min=1,max=255"`
	Amount      int64           `json:"amount" binding:"required"`
	Strategy    SplitStrategy   `json:"strategy" binding:"required"`
	Entries     []StrategyEntry `json:"entries"`
	Date        string          `json:"date"` // "2006-01-02", defaults to today
}

type SpendingShareResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Delta  int64     `json:"delta"`
}

type SpendingResponse struct {
	ID           uuid.UUID               `json:"id"`
	GroupID      uuid.UUID               `json:"group_id"`
	CategoryID   uuid.UUID               `json:"category_id"`
	CategoryName string                  `json:"category_name"`
	PayerID      uuid.UUID               `json:"payer_id"`
	PayerName    string                  `json:"payer_name"`
	Description  string                  `json:"description"`
	Amount       int64                   `json:"amount"`
	Strategy     SplitStrategy           `json:"strategy"`
	Date         time.Time               `json:"date"`
	Shares       []SpendingShareResponse `json:"shares,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
}
