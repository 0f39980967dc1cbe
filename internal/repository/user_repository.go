package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskdesk/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertByEmail finds or creates a user keyed by email and refreshes the
// display name.
func (r *UserRepository) UpsertByEmail(ctx context.Context, email, displayName string) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		if err := db.Model(&user).Update("display_name", displayName).Error; err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		return &user, nil
	case err == gorm.ErrRecordNotFound:
		user = model.User{Email: email, DisplayName: displayName}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}
