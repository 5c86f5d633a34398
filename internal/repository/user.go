package repository

import (
	"context"
	"time"

	"github.com/trabach-softwares/ouro-rifa-api/internal/entity"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetTopSpenders(ctx context.Context, limit int) ([]entity.User, error)
	UpdateByID(ctx context.Context, id string, user entity.User) error
	UpdatePassword(ctx context.Context, id, hashedPassword string) error
	UpdateLastLogin(ctx context.Context, id string) error
	AddSpent(ctx context.Context, id string, amount float64) error
	SetSpent(ctx context.Context, id string, amount float64) error
}

type userRepository struct{}

func NewUserRepository() *userRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return xcontext.DB(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var result entity.User
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	var result []entity.User
	if err := xcontext.DB(ctx).Find(&result, "id IN (?)", ids).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var result entity.User
	if err := xcontext.DB(ctx).Take(&result, "email=?", email).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userRepository) GetTopSpenders(ctx context.Context, limit int) ([]entity.User, error) {
	var result []entity.User
	err := xcontext.DB(ctx).
		Where("total_spent > 0").
		Order("total_spent DESC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userRepository) UpdateByID(ctx context.Context, id string, user entity.User) error {
	return xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("id=?", id).
		Omit("id", "created_at", "email", "password", "role", "total_spent").
		Updates(user).Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	return xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("id=?", id).
		Update("password", hashedPassword).Error
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id string) error {
	return xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("id=?", id).
		Update("last_login", time.Now()).Error
}

func (r *userRepository) AddSpent(ctx context.Context, id string, amount float64) error {
	return xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("id=?", id).
		Updates(map[string]any{
			"total_spent":   gorm.Expr("total_spent+?", amount),
			"last_purchase": time.Now(),
		}).Error
}

func (r *userRepository) SetSpent(ctx context.Context, id string, amount float64) error {
	return xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("id=?", id).
		Update("total_spent", amount).Error
}
