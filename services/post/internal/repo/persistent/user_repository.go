package persistent

import (
	"context"
	"errors"

	"seniors/services/post/internal/entity"
	"seniors/services/post/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	// FindByID returns entity.ErrInvalidMember when no user has the id.
	FindByID(ctx context.Context, id uint64) (*entity.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uint64) (*entity.User, error) {
	var userModel model.UserModel
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&userModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrInvalidMember
	}
	if err != nil {
		return nil, err
	}

	user := ToUserEntity(&userModel)
	return &user, nil
}
