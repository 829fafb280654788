package service

import (
	"context"

	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/repository"
)

type AuthServiceInterface interface {
	Signup(ctx context.Context, req *entity.SignupRequest) (*entity.SignupResponse, error)
	IssueToken(ctx context.Context, req *entity.TokenRequest) (*entity.TokenResponse, error)
}

type UserServiceInterface interface {
	Create(ctx context.Context, req *entity.CreateUserRequest) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	List(ctx context.Context, search string, limit, offset int) ([]entity.User, int64, error)
	UpdateByAdmin(ctx context.Context, username string, req *entity.UpdateUserRequest) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *entity.UpdateUserRequest) (*entity.User, error)
	Delete(ctx context.Context, username string) error
}

type CatalogServiceInterface interface {
	CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
	ListCategories(ctx context.Context, search string, limit, offset int) ([]entity.Category, int64, error)
	DeleteCategory(ctx context.Context, slug string) error
	CreateGenre(ctx context.Context, req *entity.CreateGenreRequest) (*entity.Genre, error)
	ListGenres(ctx context.Context, search string, limit, offset int) ([]entity.Genre, int64, error)
	DeleteGenre(ctx context.Context, slug string) error
	WarmCache(ctx context.Context) error
}

type TitleServiceInterface interface {
	Create(ctx context.Context, req *entity.CreateTitleRequest) (*entity.Title, error)
	GetByID(ctx context.Context, id int64) (*entity.Title, error)
	List(ctx context.Context, filter repository.TitleFilter, limit, offset int) ([]entity.Title, int64, error)
	Update(ctx context.Context, id int64, req *entity.UpdateTitleRequest) (*entity.Title, error)
	Delete(ctx context.Context, id int64) error
}

type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, titleID int64, author *entity.User, req *entity.CreateReviewRequest) (*entity.Review, error)
	GetReview(ctx context.Context, titleID, reviewID int64) (*entity.Review, error)
	ListReviews(ctx context.Context, titleID int64, limit, offset int) ([]entity.Review, int64, error)
	UpdateReview(ctx context.Context, titleID, reviewID int64, user *entity.User, req *entity.UpdateReviewRequest) (*entity.Review, error)
	DeleteReview(ctx context.Context, titleID, reviewID int64, user *entity.User) error

	CreateComment(ctx context.Context, titleID, reviewID int64, author *entity.User, req *entity.CreateCommentRequest) (*entity.Comment, error)
	GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*entity.Comment, error)
	ListComments(ctx context.Context, titleID, reviewID int64, limit, offset int) ([]entity.Comment, int64, error)
	UpdateComment(ctx context.Context, titleID, reviewID, commentID int64, user *entity.User, req *entity.UpdateCommentRequest) (*entity.Comment, error)
	DeleteComment(ctx context.Context, titleID, reviewID, commentID int64, user *entity.User) error
}
