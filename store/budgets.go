package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"splitledger-backend/models"
)

type BudgetStore struct {
	db *gorm.DB
}

func NewBudgetStore(db *gorm.DB) *BudgetStore {
	return &BudgetStore{db: db}
}

// Create inserts the budget, returning ErrBudgetExists when the category
// already has one for that month.
func (s *BudgetStore) Create(ctx context.Context, budget *models.Budget) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Budget{}).
		Where("category_id = ? AND year = ? AND month = ?",
			budget.CategoryID, budget.Year, budget.Month).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrBudgetExists
	}
	return s.db.WithContext(ctx).Create(budget).Error
}

func (s *BudgetStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.WithContext(ctx).First(&budget, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

// ListForGroupMonth returns the group's budgets for one calendar month.
func (s *BudgetStore) ListForGroupMonth(ctx context.Context, groupID uuid.UUID, year, month int) ([]models.Budget, error) {
	var budgets []models.Budget
	err := s.db.WithContext(ctx).
		Where("group_id = ? AND year = ? AND month = ?", groupID, year, month).
		Order("created_at").
		Find(&budgets).Error
	return budgets, err
}

func (s *BudgetStore) UpdateAmount(ctx context.Context, id uuid.UUID, amount int64) error {
	res := s.db.WithContext(ctx).Model(&models.Budget{}).
		Where("id = ?", id).Update("amount", amount)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *BudgetStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Budget{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
