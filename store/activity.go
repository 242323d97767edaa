package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"splitledger-backend/models"
)

type ActivityStore struct {
	db *gorm.DB
}

func NewActivityStore(db *gorm.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

func (s *ActivityStore) Create(ctx context.Context, activity *models.Activity) error {
	return s.db.WithContext(ctx).Create(activity).Error
}

// ListForGroup returns the group's activity feed newest first, with actors
// and groups preloaded for display names.
func (s *ActivityStore) ListForGroup(ctx context.Context, groupID uuid.UUID, offset, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	err := s.db.WithContext(ctx).
		Preload("Actor").Preload("Group").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&activities).Error
	return activities, err
}

// ListForUser returns activity across every group where the user is an
// active member, newest first.
func (s *ActivityStore) ListForUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.Activity, error) {
	memberGroups := s.db.Model(&models.Balance{}).
		Select("group_id").
		Where("user_id = ? AND has_left = ?", userID, false)

	var activities []models.Activity
	err := s.db.WithContext(ctx).
		Preload("Actor").Preload("Group").
		Where("group_id IN (?)", memberGroups).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&activities).Error
	return activities, err
}
