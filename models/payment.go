package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment is a direct transfer between two group members, recorded by the
// payer and pending until the receiver confirms it. Balances move only on
// confirmation.
type Payment struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"group_id"`
	Group       Group      `gorm:"foreignKey:GroupID" json:"-"`
	PayerID     uuid.UUID  `gorm:"type:uuid;not null" json:"payer_id"`
	Payer       User       `gorm:"foreignKey:PayerID" json:"-"`
	ReceiverID  uuid.UUID  `gorm:"type:uuid;not null" json:"receiver_id"`
	Receiver    User       `gorm:"foreignKey:ReceiverID" json:"-"`
	Amount      int64      `gorm:"not null" json:"amount"`
	Confirmed   bool       `gorm:"not null;default:false" json:"confirmed"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type CreatePaymentRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
	Amount     int64  `json:"amount" binding:"required"`
}

type PaymentResponse struct {
	ID           uuid.UUID  `json:"id"`
	GroupID      uuid.UUID  `json:"group_id"`
	PayerID      uuid.UUID  `json:"payer_id"`
	PayerName    string     `json:"payer_name"`
	ReceiverID   uuid.UUID  `json:"receiver_id"`
	ReceiverName string     `json:"receiver_name"`
	Amount       int64      `json:"amount"`
	Confirmed    bool       `json:"confirmed"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type RemindDebtorRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Message string `json:"message"`
}
