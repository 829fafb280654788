package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"kritika/internal/app/kritika/entity"
	"kritika/pkg/metrics"
)

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "comments")
	defer timer.ObserveDuration()

	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, reviewID, commentID int64) (*entity.Comment, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "comments")
	defer timer.ObserveDuration()

	var comment entity.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND review_id = ?", commentID, reviewID).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get comment by id: %w", err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByReview(ctx context.Context, reviewID int64, limit, offset int) ([]entity.Comment, int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "comments")
	defer timer.ObserveDuration()

	query := r.db.WithContext(ctx).Model(&entity.Comment{}).Where("review_id = ?", reviewID)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	var comments []entity.Comment
	err := query.Preload("Author").Order("pub_date").Limit(limit).Offset(offset).Find(&comments).Error
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, count, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *entity.Comment) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "comments")
	defer timer.ObserveDuration()

	err := r.db.WithContext(ctx).Model(comment).
		Select("text").
		Updates(comment).Error
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, "comments")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Delete(&entity.Comment{}, id)
	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return fmt.Errorf("failed to delete comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
