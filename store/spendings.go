package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"splitledger-backend/models"
)

type SpendingStore struct {
	db *gorm.DB
}

func NewSpendingStore(db *gorm.DB) *SpendingStore {
	return &SpendingStore{db: db}
}

func (s *SpendingStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Spending, error) {
	var spending models.Spending
	err := s.db.WithContext(ctx).
		Preload("Shares").
		First(&spending, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &spending, nil
}

// ListForGroup returns the group's spendings newest first, with their share
// rows preloaded.
func (s *SpendingStore) ListForGroup(ctx context.Context, groupID uuid.UUID, offset, limit int) ([]models.Spending, error) {
	var spendings []models.Spending
	err := s.db.WithContext(ctx).
		Preload("Shares").
		Where("group_id = ?", groupID).
		Order("date DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&spendings).Error
	return spendings, err
}

// SumForCategoryMonth totals the spendings recorded against one category in
// one calendar month, for budget tracking.
func (s *SpendingStore) SumForCategoryMonth(ctx context.Context, categoryID uuid.UUID, year, month int) (int64, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var sum int64
	err := s.db.WithContext(ctx).Model(&models.Spending{}).
		Where("category_id = ?", categoryID).
		Where("date >= ? AND date < ?", start, end).
		Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error
	return sum, err
}
