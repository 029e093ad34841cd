package repository

import (
	"context"
	"errors"

	"agora/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the user lookups posts and comments need.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (_ *models.User, err error) {
	ctx, finish := track(ctx, r.db.Dialector.Name(), "users", "GetByID")
	defer func() { finish(err) }()

	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, finish := track(ctx, r.db.Dialector.Name(), "users", "Create")
	defer func() { finish(err) }()

	if user.ID == "" {
		user.ID = models.NewID()
	}
	return r.db.WithContext(ctx).Create(user).Error
}
