package models

import (
	"time"

	"github.com/google/uuid"
)

// Balance is one member's running net position in a group, in the smallest
// currency unit. Positive means the group owes the member, negative means the
// member owes the group. Rows are created the first time a user becomes a
// member and are never deleted: leaving sets HasLeft instead, freezing the row.
// The sum of CurrentBalance over rows with HasLeft=false is zero after every
// committed financial event.
type Balance struct {
	GroupID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"group_id"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CurrentBalance int64     `gorm:"not null;default:0" json:"current_balance"`
	HasLeft        bool      `gorm:"not null;default:false" json:"left"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SuggestedSettlement is a computed "who should pay whom" pair, produced by
// greedily matching debtors against creditors. Informational only.
type SuggestedSettlement struct {
	FromID   uuid.UUID `json:"from"`
	FromName string    `json:"from_name"`
	ToID     uuid.UUID `json:"to"`
	ToName   string    `json:"to_name"`
	Amount   int64     `json:"amount"`
}

type BalanceEntry struct {
	UserID         uuid.UUID `json:"user_id"`
	Name           string    `json:"name"`
	CurrentBalance int64     `json:"current_balance"`
	HasLeft        bool      `json:"left"`
}

// GroupBalanceSummary is returned for GET /api/groups/:id/balances
type GroupBalanceSummary struct {
	GroupID              uuid.UUID             `json:"group_id"`
	GroupName            string                `json:"group_name"`
	Balances             []BalanceEntry        `json:"balances"`
	SuggestedSettlements []SuggestedSettlement `json:"suggested_settlements"`
	TotalSpent           int64                 `json:"total_spent"`
}

// GroupNetBalance is the caller's own position in one group.
type GroupNetBalance struct {
	GroupID   uuid.UUID `json:"group_id"`
	GroupName string    `json:"group_name"`
	Amount    int64     `json:"amount"` // positive = group owes you
}

// OverallBalanceSummary is returned for GET /api/balances
type OverallBalanceSummary struct {
	TotalOwed  int64             `json:"total_owed"`  // total owed to you across groups
	TotalOwing int64             `json:"total_owing"` // total you owe across groups
	Groups     []GroupNetBalance `json:"groups"`
}
