package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/superrabbithero/appmanage/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, NotFound("user %d not found", id), "failed to load user")
	}
	return &user, nil
}

func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("user_name = ?", userName).First(&user).Error; err != nil {
		return nil, notFoundOr(err, NotFound("user %s not found", userName), "failed to load user")
	}
	return &user, nil
}

// Create stores a user whose password is already hashed.
func (r *UserRepository) Create(ctx context.Context, userName, passwordHash string) (*models.User, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" || passwordHash == "" {
		return nil, InvalidArgument("username and password are required")
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("user_name = ?", userName).Count(&n).Error; err != nil {
		return nil, wrap(err, "failed to load user")
	}
	if n > 0 {
		return nil, Conflict("username already exists")
	}

	user := &models.User{UserName: userName, Password: passwordHash}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, wrap(err, "failed to create user")
	}
	return user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", passwordHash)
	if res.Error != nil {
		return wrap(res.Error, "failed to update password")
	}
	if res.RowsAffected == 0 {
		return NotFound("user %d not found", id)
	}
	return nil
}
