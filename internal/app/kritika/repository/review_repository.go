package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"kritika/internal/app/kritika/entity"
	"kritika/pkg/metrics"
)

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "reviews")
	defer timer.ObserveDuration()

	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, titleID, reviewID int64) (*entity.Review, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "reviews")
	defer timer.ObserveDuration()

	var review entity.Review
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND title_id = ?", reviewID, titleID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get review by id: %w", err)
	}
	return &review, nil
}

func (r *reviewRepository) ListByTitle(ctx context.Context, titleID int64, limit, offset int) ([]entity.Review, int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "reviews")
	defer timer.ObserveDuration()

	query := r.db.WithContext(ctx).Model(&entity.Review{}).Where("title_id = ?", titleID)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []entity.Review
	err := query.Preload("Author").Order("pub_date").Limit(limit).Offset(offset).Find(&reviews).Error
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, count, nil
}

func (r *reviewRepository) ExistsByTitleAndAuthor(ctx context.Context, titleID, authorID int64) (bool, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "reviews")
	defer timer.ObserveDuration()

	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&count).Error
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}
	return count > 0, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "reviews")
	defer timer.ObserveDuration()

	err := r.db.WithContext(ctx).Model(review).
		Select("text", "score").
		Updates(review).Error
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, "reviews")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Delete(&entity.Review{}, id)
	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return fmt.Errorf("failed to delete review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
