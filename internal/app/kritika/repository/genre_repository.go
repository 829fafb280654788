package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"kritika/internal/app/kritika/entity"
	"kritika/pkg/metrics"
)

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(ctx context.Context, genre *entity.Genre) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "genres")
	defer timer.ObserveDuration()

	if err := r.db.WithContext(ctx).Create(genre).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create genre: %w", err)
	}
	return nil
}

func (r *genreRepository) GetBySlug(ctx context.Context, slug string) (*entity.Genre, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "genres")
	defer timer.ObserveDuration()

	var genre entity.Genre
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&genre).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get genre by slug: %w", err)
	}
	return &genre, nil
}

func (r *genreRepository) GetAll(ctx context.Context) ([]entity.Genre, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "genres")
	defer timer.ObserveDuration()

	var genres []entity.Genre
	if err := r.db.WithContext(ctx).Order("name").Find(&genres).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get all genres: %w", err)
	}
	return genres, nil
}

func (r *genreRepository) List(ctx context.Context, search string, limit, offset int) ([]entity.Genre, int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "genres")
	defer timer.ObserveDuration()

	query := r.db.WithContext(ctx).Model(&entity.Genre{})
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to count genres: %w", err)
	}

	var genres []entity.Genre
	err := query.Order("name").Limit(limit).Offset(offset).Find(&genres).Error
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, count, nil
}

func (r *genreRepository) DeleteBySlug(ctx context.Context, slug string) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, "genres")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&entity.Genre{})
	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return fmt.Errorf("failed to delete genre: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
