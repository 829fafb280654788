package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"kritika/internal/app/kritika/entity"
)

var (
	// ErrNotFound - запись не найдена
	ErrNotFound = errors.New("not found")
	// ErrConflict - нарушение уникального ограничения в БД.
	// Финальный арбитр уникальности - constraint, а не проверка в коде.
	ErrConflict = errors.New("unique constraint violation")
)

// TitleFilter - параметры фильтрации списка произведений
type TitleFilter struct {
	Category string // slug категории
	Genre    string // slug жанра
	Name     string // подстрока имени без учета регистра
	Year     *int   // точный год
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByUsernameIgnoreCase(ctx context.Context, username string) (*entity.User, error)
	GetByEmailIgnoreCase(ctx context.Context, email string) (*entity.User, error)
	// GetByPair ищет пользователя по точному совпадению пары (username, email)
	GetByPair(ctx context.Context, username, email string) (*entity.User, error)
	List(ctx context.Context, search string, limit, offset int) ([]entity.User, int64, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id int64) error
	SetConfirmationCode(ctx context.Context, id int64, codeHash string) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetBySlug(ctx context.Context, slug string) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	List(ctx context.Context, search string, limit, offset int) ([]entity.Category, int64, error)
	DeleteBySlug(ctx context.Context, slug string) error
}

type GenreRepository interface {
	Create(ctx context.Context, genre *entity.Genre) error
	GetBySlug(ctx context.Context, slug string) (*entity.Genre, error)
	GetAll(ctx context.Context) ([]entity.Genre, error)
	List(ctx context.Context, search string, limit, offset int) ([]entity.Genre, int64, error)
	DeleteBySlug(ctx context.Context, slug string) error
}

type TitleRepository interface {
	// Create вставляет произведение и связи с жанрами одной транзакцией,
	// сохраняя переданный порядок жанров
	Create(ctx context.Context, title *entity.Title, genreIDs []int64) error
	GetByID(ctx context.Context, id int64) (*entity.Title, error)
	List(ctx context.Context, filter TitleFilter, limit, offset int) ([]entity.Title, int64, error)
	// Update обновляет поля произведения; genreIDs == nil оставляет жанры как есть
	Update(ctx context.Context, title *entity.Title, genreIDs []int64) error
	Delete(ctx context.Context, id int64) error
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, titleID, reviewID int64) (*entity.Review, error)
	ListByTitle(ctx context.Context, titleID int64, limit, offset int) ([]entity.Review, int64, error)
	ExistsByTitleAndAuthor(ctx context.Context, titleID, authorID int64) (bool, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id int64) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	GetByID(ctx context.Context, reviewID, commentID int64) (*entity.Comment, error)
	ListByReview(ctx context.Context, reviewID int64, limit, offset int) ([]entity.Comment, int64, error)
	Update(ctx context.Context, comment *entity.Comment) error
	Delete(ctx context.Context, id int64) error
}

// isUniqueViolation распознает нарушение уникального ограничения,
// поднятое драйвером pgx или переведенное gorm
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
