package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"kritika/internal/app/kritika/entity"
	"kritika/pkg/metrics"
)

const serviceName = "kritika"

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "users")
	defer timer.ObserveDuration()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "users")
	defer timer.ObserveDuration()

	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "users")
	defer timer.ObserveDuration()

	var user entity.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsernameIgnoreCase(ctx context.Context, username string) (*entity.User, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "users")
	defer timer.ObserveDuration()

	var user entity.User
	err := r.db.WithContext(ctx).Where("LOWER(username) = LOWER(?)", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmailIgnoreCase(ctx context.Context, email string) (*entity.User, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "users")
	defer timer.ObserveDuration()

	var user entity.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByPair(ctx context.Context, username, email string) (*entity.User, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "users")
	defer timer.ObserveDuration()

	var user entity.User
	err := r.db.WithContext(ctx).
		Where("username = ? AND email = ?", username, email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get user by pair: %w", err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, search string, limit, offset int) ([]entity.User, int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "users")
	defer timer.ObserveDuration()

	query := r.db.WithContext(ctx).Model(&entity.User{})
	if search != "" {
		query = query.Where("username ILIKE ?", "%"+search+"%")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []entity.User
	err := query.Order("username").Limit(limit).Offset(offset).Find(&users).Error
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, count, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "users")
	defer timer.ObserveDuration()

	err := r.db.WithContext(ctx).Model(user).
		Select("username", "email", "first_name", "last_name", "bio", "role").
		Updates(user).Error
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, "users")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Delete(&entity.User{}, id)
	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) SetConfirmationCode(ctx context.Context, id int64, codeHash string) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "users")
	defer timer.ObserveDuration()

	err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", id).
		Update("confirmation_code_hash", codeHash).Error
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to set confirmation code: %w", err)
	}
	return nil
}
