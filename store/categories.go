package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"splitledger-backend/models"
)

type CategoryStore struct {
	db *gorm.DB
}

func NewCategoryStore(db *gorm.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// Create inserts the category, returning ErrCategoryNameTaken when the group
// already has a category of that name.
func (s *CategoryStore) Create(ctx context.Context, category *models.Category) error {
	taken, err := s.nameTaken(ctx, category.GroupID, category.Name, uuid.Nil)
	if err != nil {
		return err
	}
	if taken {
		return ErrCategoryNameTaken
	}
	return s.db.WithContext(ctx).Create(category).Error
}

func (s *CategoryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryStore) ListForGroup(ctx context.Context, groupID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).Order("name").Find(&categories).Error
	return categories, err
}

// Rename changes the category's name, keeping per-group uniqueness.
func (s *CategoryStore) Rename(ctx context.Context, category *models.Category, name string) error {
	taken, err := s.nameTaken(ctx, category.GroupID, name, category.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrCategoryNameTaken
	}
	return s.db.WithContext(ctx).Model(category).Update("name", name).Error
}

// Delete removes an unused category. Categories referenced by spendings stay:
// spendings are immutable and keep their full history.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Spending{}).
		Where("category_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	res := s.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *CategoryStore) nameTaken(ctx context.Context, groupID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	q := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("group_id = ? AND name = ?", groupID, name)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
