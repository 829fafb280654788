package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/infrastructure"
	"kritika/internal/app/kritika/repository"
	"kritika/internal/app/kritika/util"
	"kritika/pkg/logger"
	"kritika/pkg/metrics"
)

// ReviewService управляет отзывами и комментариями к ним
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	commentRepo repository.CommentRepository
	titleRepo   repository.TitleRepository
	publisher   infrastructure.MessagePublisher
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	commentRepo repository.CommentRepository,
	titleRepo repository.TitleRepository,
	publisher infrastructure.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		commentRepo: commentRepo,
		titleRepo:   titleRepo,
		publisher:   publisher,
	}
}

// CreateReview создает отзыв. Второй отзыв того же автора на то же
// произведение запрещен; гонку двух одновременных запросов закрывает
// уникальный индекс.
func (s *ReviewService) CreateReview(ctx context.Context, titleID int64, author *entity.User, req *entity.CreateReviewRequest) (*entity.Review, error) {
	if err := s.ensureTitleExists(ctx, titleID); err != nil {
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsByTitleAndAuthor(ctx, titleID, author.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewValidationError("you have already reviewed this title")
	}

	review := &entity.Review{
		Text:     req.Text,
		Score:    req.Score,
		AuthorID: author.ID,
		TitleID:  titleID,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, NewValidationError("you have already reviewed this title")
		}
		return nil, err
	}
	review.Author = author

	metrics.ReviewsCreated.Inc()
	metrics.ReviewScores.Observe(float64(review.Score))
	s.publishReviewEvent(ctx, review)

	logger.Info().
		Int64("review_id", review.ID).
		Int64("title_id", titleID).
		Int("score", review.Score).
		Msg("review created")
	return review, nil
}

func (s *ReviewService) GetReview(ctx context.Context, titleID, reviewID int64) (*entity.Review, error) {
	if err := s.ensureTitleExists(ctx, titleID); err != nil {
		return nil, err
	}
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, titleID int64, limit, offset int) ([]entity.Review, int64, error) {
	if err := s.ensureTitleExists(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.reviewRepo.ListByTitle(ctx, titleID, limit, offset)
}

func (s *ReviewService) UpdateReview(ctx context.Context, titleID, reviewID int64, user *entity.User, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if !util.CanModifyContent(user, review.AuthorID) {
		return nil, ErrPermissionDenied
	}

	if req.Text != nil {
		if *req.Text == "" {
			return nil, NewValidationError("text must not be empty")
		}
		review.Text = *req.Text
	}
	if req.Score != nil {
		if *req.Score < 1 || *req.Score > 10 {
			return nil, NewValidationError("score must be between 1 and 10")
		}
		review.Score = *req.Score
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, titleID, reviewID int64, user *entity.User) error {
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if !util.CanModifyContent(user, review.AuthorID) {
		return ErrPermissionDenied
	}
	return s.reviewRepo.Delete(ctx, review.ID)
}

func (s *ReviewService) CreateComment(ctx context.Context, titleID, reviewID int64, author *entity.User, req *entity.CreateCommentRequest) (*entity.Comment, error) {
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		Text:     req.Text,
		AuthorID: author.ID,
		ReviewID: reviewID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.Author = author

	metrics.CommentsCreated.Inc()
	logger.Info().
		Int64("comment_id", comment.ID).
		Int64("review_id", reviewID).
		Msg("comment created")
	return comment, nil
}

func (s *ReviewService) GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*entity.Comment, error) {
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (s *ReviewService) ListComments(ctx context.Context, titleID, reviewID int64, limit, offset int) ([]entity.Comment, int64, error) {
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.commentRepo.ListByReview(ctx, reviewID, limit, offset)
}

func (s *ReviewService) UpdateComment(ctx context.Context, titleID, reviewID, commentID int64, user *entity.User, req *entity.UpdateCommentRequest) (*entity.Comment, error) {
	comment, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if !util.CanModifyContent(user, comment.AuthorID) {
		return nil, ErrPermissionDenied
	}

	if req.Text != nil {
		if *req.Text == "" {
			return nil, NewValidationError("text must not be empty")
		}
		comment.Text = *req.Text
	}

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *ReviewService) DeleteComment(ctx context.Context, titleID, reviewID, commentID int64, user *entity.User) error {
	comment, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if !util.CanModifyContent(user, comment.AuthorID) {
		return ErrPermissionDenied
	}
	return s.commentRepo.Delete(ctx, comment.ID)
}

func (s *ReviewService) ensureTitleExists(ctx context.Context, titleID int64) error {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// publishReviewEvent отправляет событие о новом отзыве. Отзыв уже
// в БД, поэтому сбой очереди не откатывает запрос.
func (s *ReviewService) publishReviewEvent(ctx context.Context, review *entity.Review) {
	event := entity.ReviewEvent{
		EventType: "REVIEW_CREATED",
		ReviewID:  review.ID,
		TitleID:   review.TitleID,
		AuthorID:  review.AuthorID,
		Score:     review.Score,
		Timestamp: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal review event")
		return
	}
	key := strconv.FormatInt(review.TitleID, 10)
	if err := s.publisher.PublishMessage(ctx, key, payload); err != nil {
		logger.Error().Err(err).Int64("review_id", review.ID).Msg("failed to publish review event")
	}
}
