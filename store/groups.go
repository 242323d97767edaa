package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"splitledger-backend/models"
)

type GroupStore struct {
	db *gorm.DB
}

func NewGroupStore(db *gorm.DB) *GroupStore {
	return &GroupStore{db: db}
}

func (s *GroupStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// ListForUser returns every group the user is an active member of, archived
// groups included, newest first.
func (s *GroupStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.WithContext(ctx).
		Joins("JOIN balances ON balances.group_id = groups.id").
		Where("balances.user_id = ? AND balances.has_left = ?", userID, false).
		Order("groups.created_at DESC").
		Find(&groups).Error
	return groups, err
}

func (s *GroupStore) Update(ctx context.Context, group *models.Group) error {
	return s.db.WithContext(ctx).Model(group).Updates(map[string]interface{}{
		"name":        group.Name,
		"description": group.Description,
	}).Error
}

// SetArchived toggles the group's archived flag. An archived group is
// read-only: no events, no membership changes.
func (s *GroupStore) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	res := s.db.WithContext(ctx).Model(&models.Group{}).
		Where("id = ?", id).Update("is_archived", archived)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
