package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SplitStrategy selects how a spending's amount is divided among members.
type SplitStrategy string

const (
	StrategyEqualParts SplitStrategy = "EQUAL_PARTS"
	StrategyPercentage SplitStrategy = "PERCENTAGE"
	StrategyCustom     SplitStrategy = "CUSTOM"
)

// Valid reports whether s is one of the known strategies.
func (s SplitStrategy) Valid() bool {
	switch s {
	case StrategyEqualParts, StrategyPercentage, StrategyCustom:
		return true
	}
	return false
}

// Category labels spendings within a single group. Names are unique per group,
// and a category can never be used for spendings in another group.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_categories_group_name" json:"group_id"`
	Group     Group     `gorm:"foreignKey:GroupID" json:"-"`
	Name      string    `gorm:"not null;size:100;uniqueIndex:idx_categories_group_name" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	GroupID   uuid.UUID `json:"group_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Category) ToResponse() CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		GroupID:   c.GroupID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
	}
}
