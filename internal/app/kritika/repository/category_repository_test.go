package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kritika/internal/app/kritika/entity"
)

// CategoryRepositoryTestSuite тестовый suite для PostgreSQL repository
type CategoryRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  CategoryRepository
	sqlDB *sql.DB
}

func TestCategoryRepositorySuite(t *testing.T) {
	suite.Run(t, new(CategoryRepositoryTestSuite))
}

func (s *CategoryRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{TranslateError: true})
	require.NoError(s.T(), err)

	s.repo = NewCategoryRepository(s.db)
}

func (s *CategoryRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

func (s *CategoryRepositoryTestSuite) TestGetBySlug_Success() {
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "name", "slug"}).
		AddRow(1, "Книги", "books")

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "categories" WHERE slug = $1`)).
		WillReturnRows(rows)

	category, err := s.repo.GetBySlug(ctx, "books")

	s.NoError(err)
	s.NotNil(category)
	s.Equal(int64(1), category.ID)
	s.Equal("books", category.Slug)
}

func (s *CategoryRepositoryTestSuite) TestGetBySlug_NotFound() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "categories" WHERE slug = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}))

	category, err := s.repo.GetBySlug(ctx, "ghost")

	s.ErrorIs(err, ErrNotFound)
	s.Nil(category)
}

func (s *CategoryRepositoryTestSuite) TestCreate_Success() {
	ctx := context.Background()

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "categories"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	s.mock.ExpectCommit()

	category := &entity.Category{Name: "Книги", Slug: "books"}
	err := s.repo.Create(ctx, category)

	s.NoError(err)
	s.Equal(int64(1), category.ID)
}

func (s *CategoryRepositoryTestSuite) TestCreate_DuplicateSlug() {
	ctx := context.Background()

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "categories"`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	s.mock.ExpectRollback()

	err := s.repo.Create(ctx, &entity.Category{Name: "Книги", Slug: "books"})

	s.ErrorIs(err, ErrConflict)
}

func (s *CategoryRepositoryTestSuite) TestDeleteBySlug_Success() {
	ctx := context.Background()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "categories" WHERE slug = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	s.NoError(s.repo.DeleteBySlug(ctx, "books"))
}

func (s *CategoryRepositoryTestSuite) TestDeleteBySlug_NotFound() {
	ctx := context.Background()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "categories" WHERE slug = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	s.ErrorIs(s.repo.DeleteBySlug(ctx, "ghost"), ErrNotFound)
}

func (s *CategoryRepositoryTestSuite) TestList_WithSearch() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "categories" WHERE name ILIKE $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "categories" WHERE name ILIKE $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).AddRow(1, "Книги", "books"))

	categories, count, err := s.repo.List(ctx, "кни", 10, 0)

	s.NoError(err)
	s.Equal(int64(1), count)
	s.Len(categories, 1)
}
