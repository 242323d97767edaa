package ledger

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"splitledger-backend/models"
)

// BalanceStore persists per-member balance rows. Rows are never deleted:
// membership ends by setting the left flag, so history and frozen balances
// survive. The engine runs store operations inside its transactions via
// WithTx.
type BalanceStore struct {
	db *gorm.DB
}

func NewBalanceStore(db *gorm.DB) *BalanceStore {
	return &BalanceStore{db: db}
}

// WithTx returns a store bound to the given transaction handle.
func (s *BalanceStore) WithTx(tx *gorm.DB) *BalanceStore {
	return &BalanceStore{db: tx}
}

// Get returns the balance row for one member, or gorm.ErrRecordNotFound.
func (s *BalanceStore) Get(groupID, userID uuid.UUID) (*models.Balance, error) {
	var b models.Balance
	err := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetOrCreate returns the member's balance row, creating a zero-balance
// active row if none exists yet.
func (s *BalanceStore) GetOrCreate(groupID, userID uuid.UUID) (*models.Balance, error) {
	b, err := s.Get(groupID, userID)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	b = &models.Balance{GroupID: groupID, UserID: userID}
	if err := s.db.Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

// ApplyDelta adds delta to the member's running balance.
func (s *BalanceStore) ApplyDelta(groupID, userID uuid.UUID, delta int64) error {
	res := s.db.Model(&models.Balance{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("current_balance", gorm.Expr("current_balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkLeft freezes the member's row. The caller checks the balance is zero.
func (s *BalanceStore) MarkLeft(groupID, userID uuid.UUID) error {
	return s.setLeft(groupID, userID, true)
}

// ClearLeft reactivates a previously left member, keeping the stored balance.
func (s *BalanceStore) ClearLeft(groupID, userID uuid.UUID) error {
	return s.setLeft(groupID, userID, false)
}

func (s *BalanceStore) setLeft(groupID, userID uuid.UUID, left bool) error {
	res := s.db.Model(&models.Balance{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("has_left", left)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListActive returns the group's active balance rows ordered by user ID.
func (s *BalanceStore) ListActive(groupID uuid.UUID) ([]models.Balance, error) {
	var rows []models.Balance
	err := s.db.Where("group_id = ? AND has_left = ?", groupID, false).
		Order("user_id").Find(&rows).Error
	return rows, err
}

// ListAll returns every balance row of the group, left members included.
func (s *BalanceStore) ListAll(groupID uuid.UUID) ([]models.Balance, error) {
	var rows []models.Balance
	err := s.db.Where("group_id = ?", groupID).Order("user_id").Find(&rows).Error
	return rows, err
}

// ListForUser returns the user's active balance rows across all groups.
func (s *BalanceStore) ListForUser(userID uuid.UUID) ([]models.Balance, error) {
	var rows []models.Balance
	err := s.db.Where("user_id = ? AND has_left = ?", userID, false).
		Order("group_id").Find(&rows).Error
	return rows, err
}

// ActiveSum returns the sum of the group's active balances. Zero after every
// committed financial event.
func (s *BalanceStore) ActiveSum(groupID uuid.UUID) (int64, error) {
	var sum int64
	err := s.db.Model(&models.Balance{}).
		Where("group_id = ? AND has_left = ?", groupID, false).
		Select("COALESCE(SUM(current_balance), 0)").Scan(&sum).Error
	return sum, err
}
