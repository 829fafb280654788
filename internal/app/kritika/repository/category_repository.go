package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"kritika/internal/app/kritika/entity"
	"kritika/pkg/metrics"
)

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "categories")
	defer timer.ObserveDuration()

	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "categories")
	defer timer.ObserveDuration()

	var category entity.Category
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get category by slug: %w", err)
	}
	return &category, nil
}

func (r *categoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "categories")
	defer timer.ObserveDuration()

	var categories []entity.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get all categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) List(ctx context.Context, search string, limit, offset int) ([]entity.Category, int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "categories")
	defer timer.ObserveDuration()

	query := r.db.WithContext(ctx).Model(&entity.Category{})
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	var categories []entity.Category
	err := query.Order("name").Limit(limit).Offset(offset).Find(&categories).Error
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, count, nil
}

func (r *categoryRepository) DeleteBySlug(ctx context.Context, slug string) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, "categories")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&entity.Category{})
	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
