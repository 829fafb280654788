package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kritika/internal/app/kritika/entity"
)

// ReviewRepositoryTestSuite тестовый suite для PostgreSQL repository
type ReviewRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  ReviewRepository
	sqlDB *sql.DB
}

func TestReviewRepositorySuite(t *testing.T) {
	suite.Run(t, new(ReviewRepositoryTestSuite))
}

func (s *ReviewRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{TranslateError: true})
	require.NoError(s.T(), err)

	s.repo = NewReviewRepository(s.db)
}

func (s *ReviewRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

func (s *ReviewRepositoryTestSuite) TestExistsByTitleAndAuthor_Exists() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "reviews" WHERE title_id = $1 AND author_id = $2`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := s.repo.ExistsByTitleAndAuthor(ctx, 42, 7)

	s.NoError(err)
	s.True(exists)
}

func (s *ReviewRepositoryTestSuite) TestExistsByTitleAndAuthor_NotExists() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "reviews" WHERE title_id = $1 AND author_id = $2`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := s.repo.ExistsByTitleAndAuthor(ctx, 42, 7)

	s.NoError(err)
	s.False(exists)
}

func (s *ReviewRepositoryTestSuite) TestCreate_DuplicateAuthor() {
	ctx := context.Background()

	// Уникальный индекс (title_id, author_id) закрывает гонку двух
	// одновременных отзывов одного автора
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "reviews"`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	s.mock.ExpectRollback()

	err := s.repo.Create(ctx, &entity.Review{Text: "Отлично", Score: 9, AuthorID: 7, TitleID: 42})

	s.ErrorIs(err, ErrConflict)
}

func (s *ReviewRepositoryTestSuite) TestGetByID_Success() {
	ctx := context.Background()
	pubDate := time.Now()

	rows := sqlmock.NewRows([]string{"id", "text", "score", "author_id", "title_id", "pub_date"}).
		AddRow(100, "Отлично", 9, 7, 42, pubDate)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reviews" WHERE id = $1 AND title_id = $2`)).
		WillReturnRows(rows)
	// Preload автора
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(7, "reader"))

	review, err := s.repo.GetByID(ctx, 42, 100)

	s.NoError(err)
	s.NotNil(review)
	s.Equal(int64(100), review.ID)
	s.Require().NotNil(review.Author)
	s.Equal("reader", review.Author.Username)
}

func (s *ReviewRepositoryTestSuite) TestGetByID_NotFound() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reviews" WHERE id = $1 AND title_id = $2`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "score", "author_id", "title_id", "pub_date"}))

	review, err := s.repo.GetByID(ctx, 42, 999)

	s.ErrorIs(err, ErrNotFound)
	s.Nil(review)
}

func (s *ReviewRepositoryTestSuite) TestDelete_NotFound() {
	ctx := context.Background()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "reviews" WHERE "reviews"."id" = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	s.ErrorIs(s.repo.Delete(ctx, 999), ErrNotFound)
}
