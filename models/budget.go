package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Budget caps spending for one category in one month. Purely informational:
// exceeding a budget never blocks a spending.
type Budget struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID    uuid.UUID `gorm:"type:uuid;not null;index" json:"group_id"`
	Group      Group     `gorm:"foreignKey:GroupID" json:"-"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_category_month" json:"category_id"`
	Category   Category  `gorm:"foreignKey:CategoryID" json:"-"`
	Year       int       `gorm:"not null;uniqueIndex:idx_budgets_category_month" json:"year"`
	Month      int       `gorm:"not null;uniqueIndex:idx_budgets_category_month" json:"month"`
	Amount     int64     `gorm:"not null" json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

type CreateBudgetRequest struct {
	CategoryID string `json:"category_id" binding:"required"`
	Year       int    `json:"year" binding:"required,min=2000,max=2200"`
	Month      int    `json:"month" binding:"required,min=1,max=12"`
	Amount     int64  `json:"amount" binding:"required"`
}

type UpdateBudgetRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

type BudgetResponse struct {
	ID           uuid.UUID `json:"id"`
	GroupID      uuid.UUID `json:"group_id"`
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	Amount       int64     `json:"amount"`
	Spent        int64     `json:"spent"`
	Remaining    int64     `json:"remaining"`
	CreatedAt    time.Time `json:"created_at"`
}
