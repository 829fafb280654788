package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// TitleRepositoryTestSuite тестовый suite для PostgreSQL repository
type TitleRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  TitleRepository
	sqlDB *sql.DB
}

func TestTitleRepositorySuite(t *testing.T) {
	suite.Run(t, new(TitleRepositoryTestSuite))
}

func (s *TitleRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{TranslateError: true})
	require.NoError(s.T(), err)

	s.repo = NewTitleRepository(s.db)
}

func (s *TitleRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

func (s *TitleRepositoryTestSuite) titleColumns() []string {
	return []string{"id", "name", "year", "description", "category_id", "rating"}
}

func (s *TitleRepositoryTestSuite) TestGetByID_RatingIsAverage() {
	ctx := context.Background()

	// Оценки 4 и 8 дают ровно 6.0
	rows := sqlmock.NewRows(s.titleColumns()).
		AddRow(42, "Солярис", 1961, nil, 5, 6.0)
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT titles.*, (SELECT AVG(score) FROM reviews WHERE reviews.title_id = titles.id) AS rating FROM "titles" WHERE titles.id = $1`)).
		WillReturnRows(rows)
	// Preload категории
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "categories" WHERE "categories"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).AddRow(5, "Книги", "books"))
	// Жанры в порядке добавления связей
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT genres.id, genres.name, genres.slug, genre_titles.title_id FROM "genre_titles" JOIN genres ON genres.id = genre_titles.genre_id WHERE genre_titles.title_id IN ($1) ORDER BY genre_titles.id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "title_id"}).
			AddRow(3, "Драма", "drama", 42).
			AddRow(2, "Комедия", "comedy", 42))

	title, err := s.repo.GetByID(ctx, 42)

	s.NoError(err)
	s.Require().NotNil(title)
	s.Require().NotNil(title.Rating)
	s.InDelta(6.0, *title.Rating, 1e-9)
	s.Require().NotNil(title.Category)
	s.Equal("books", title.Category.Slug)
	// Порядок жанров повторяет порядок genre_titles.id, не алфавит
	s.Require().Len(title.Genres, 2)
	s.Equal("drama", title.Genres[0].Slug)
	s.Equal("comedy", title.Genres[1].Slug)
}

func (s *TitleRepositoryTestSuite) TestGetByID_NoReviewsNullRating() {
	ctx := context.Background()

	// Без отзывов AVG возвращает NULL, а не ноль
	rows := sqlmock.NewRows(s.titleColumns()).
		AddRow(42, "Солярис", 1961, nil, nil, nil)
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT titles.*, (SELECT AVG(score) FROM reviews WHERE reviews.title_id = titles.id) AS rating FROM "titles" WHERE titles.id = $1`)).
		WillReturnRows(rows)
	s.mock.ExpectQuery(regexp.QuoteMeta(`FROM "genre_titles"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "title_id"}))

	title, err := s.repo.GetByID(ctx, 42)

	s.NoError(err)
	s.Require().NotNil(title)
	s.Nil(title.Rating)
	s.Empty(title.Genres)
}

func (s *TitleRepositoryTestSuite) TestGetByID_NotFound() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta(`FROM "titles" WHERE titles.id = $1`)).
		WillReturnRows(sqlmock.NewRows(s.titleColumns()))

	title, err := s.repo.GetByID(ctx, 99)

	s.ErrorIs(err, ErrNotFound)
	s.Nil(title)
}
