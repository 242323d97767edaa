package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"splitledger-backend/models"
)

type InviteStore struct {
	db *gorm.DB
}

func NewInviteStore(db *gorm.DB) *InviteStore {
	return &InviteStore{db: db}
}

func (s *InviteStore) Create(ctx context.Context, invite *models.Invite) error {
	return s.db.WithContext(ctx).Create(invite).Error
}

func (s *InviteStore) GetByToken(ctx context.Context, token uuid.UUID) (*models.Invite, error) {
	var invite models.Invite
	if err := s.db.WithContext(ctx).First(&invite, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// FindPending returns a live pending invite for the address in the group, or
// nil when there is none. Used to avoid sending duplicate invitations.
func (s *InviteStore) FindPending(ctx context.Context, groupID uuid.UUID, email string) (*models.Invite, error) {
	var invite models.Invite
	err := s.db.WithContext(ctx).
		Where("group_id = ? AND receiver_email = ? AND status = ? AND expires_at > ?",
			groupID, email, models.InviteStatusPending, time.Now()).
		First(&invite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// ListPendingForEmail returns the address's live pending invites across all
// groups, newest first.
func (s *InviteStore) ListPendingForEmail(ctx context.Context, email string) ([]models.Invite, error) {
	var invites []models.Invite
	err := s.db.WithContext(ctx).
		Where("receiver_email = ? AND status = ? AND expires_at > ?",
			email, models.InviteStatusPending, time.Now()).
		Order("created_at DESC").
		Find(&invites).Error
	return invites, err
}

func (s *InviteStore) SetStatus(ctx context.Context, id uuid.UUID, status models.InviteStatus, receiverID *uuid.UUID) error {
	updates := map[string]interface{}{"status": status}
	if receiverID != nil {
		updates["receiver_id"] = *receiverID
	}
	return s.db.WithContext(ctx).Model(&models.Invite{}).
		Where("id = ?", id).Updates(updates).Error
}
