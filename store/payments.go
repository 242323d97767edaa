package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"splitledger-backend/models"
)

type PaymentStore struct {
	db *gorm.DB
}

func NewPaymentStore(db *gorm.DB) *PaymentStore {
	return &PaymentStore{db: db}
}

func (s *PaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListForGroup returns the group's payments newest first, pending and
// confirmed alike.
func (s *PaymentStore) ListForGroup(ctx context.Context, groupID uuid.UUID, offset, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&payments).Error
	return payments, err
}

// ListPendingForReceiver returns payments awaiting the user's confirmation
// across all groups.
func (s *PaymentStore) ListPendingForReceiver(ctx context.Context, receiverID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).
		Where("receiver_id = ? AND confirmed = ?", receiverID, false).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}
