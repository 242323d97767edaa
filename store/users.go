package store

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"splitledger-backend/models"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts the user, returning ErrEmailTaken when the address is
// already registered.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail is GetByEmail that reports absence as (nil, nil) instead of an
// error, for flows where an unregistered address is a normal case.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Search matches users whose name or email contains the query,
// case-insensitively. LOWER+LIKE rather than ILIKE so the same query
// runs on both postgres and sqlite.
func (s *UserStore) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (s *UserStore) UpdateFCMToken(ctx context.Context, userID uuid.UUID, token string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).Update("fcm_token", token).Error
}

func (s *UserStore) UpdateName(ctx context.Context, userID uuid.UUID, name string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).Update("name", name).Error
}
