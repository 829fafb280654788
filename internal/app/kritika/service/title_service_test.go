package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/repository"
	"kritika/internal/app/kritika/repository/mocks"
)

func newTestTitleService() (*TitleService, *mocks.MockTitleRepository, *mocks.MockCategoryRepository, *mocks.MockGenreRepository) {
	titleRepo := new(mocks.MockTitleRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	genreRepo := new(mocks.MockGenreRepository)
	return NewTitleService(titleRepo, categoryRepo, genreRepo), titleRepo, categoryRepo, genreRepo
}

func TestTitleService_Create(t *testing.T) {
	svc, titleRepo, categoryRepo, genreRepo := newTestTitleService()

	categoryRepo.On("GetBySlug", mock.Anything, "books").
		Return(&entity.Category{ID: 5, Name: "Книги", Slug: "books"}, nil)
	genreRepo.On("GetBySlug", mock.Anything, "sci-fi").
		Return(&entity.Genre{ID: 2, Name: "Фантастика", Slug: "sci-fi"}, nil)
	genreRepo.On("GetBySlug", mock.Anything, "drama").
		Return(&entity.Genre{ID: 3, Name: "Драма", Slug: "drama"}, nil)
	titleRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Title"), []int64{2, 3}).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Title).ID = 42
		}).
		Return(nil)
	titleRepo.On("GetByID", mock.Anything, int64(42)).
		Return(&entity.Title{ID: 42, Name: "Солярис", Year: 1961}, nil)

	title, err := svc.Create(context.Background(), &entity.CreateTitleRequest{
		Name:     "Солярис",
		Year:     1961,
		Category: "books",
		Genre:    []string{"sci-fi", "drama"},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), title.ID)
	titleRepo.AssertExpectations(t)
}

func TestTitleService_Create_FutureYear(t *testing.T) {
	svc, titleRepo, _, _ := newTestTitleService()

	_, err := svc.Create(context.Background(), &entity.CreateTitleRequest{
		Name:     "Машина времени",
		Year:     time.Now().Year() + 1,
		Category: "books",
	})

	assert.True(t, IsValidationError(err))
	titleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestTitleService_Create_UnknownCategory(t *testing.T) {
	svc, _, categoryRepo, _ := newTestTitleService()

	categoryRepo.On("GetBySlug", mock.Anything, "ghost").
		Return(nil, repository.ErrNotFound)

	_, err := svc.Create(context.Background(), &entity.CreateTitleRequest{
		Name:     "Солярис",
		Year:     1961,
		Category: "ghost",
	})

	// Неизвестный slug в теле запроса - ошибка валидации, а не 404
	assert.True(t, IsValidationError(err))
}

func TestTitleService_Create_UnknownGenre(t *testing.T) {
	svc, _, categoryRepo, genreRepo := newTestTitleService()

	categoryRepo.On("GetBySlug", mock.Anything, "books").
		Return(&entity.Category{ID: 5, Slug: "books"}, nil)
	genreRepo.On("GetBySlug", mock.Anything, "ghost").
		Return(nil, repository.ErrNotFound)

	_, err := svc.Create(context.Background(), &entity.CreateTitleRequest{
		Name:     "Солярис",
		Year:     1961,
		Category: "books",
		Genre:    []string{"ghost"},
	})

	assert.True(t, IsValidationError(err))
}

func TestTitleService_Create_DuplicateGenreSlugs(t *testing.T) {
	svc, titleRepo, categoryRepo, genreRepo := newTestTitleService()

	categoryRepo.On("GetBySlug", mock.Anything, "books").
		Return(&entity.Category{ID: 5, Slug: "books"}, nil)
	genreRepo.On("GetBySlug", mock.Anything, "sci-fi").
		Return(&entity.Genre{ID: 2, Slug: "sci-fi"}, nil).Once()
	// Повторы в списке схлопываются с сохранением порядка
	titleRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Title"), []int64{2}).Return(nil)
	titleRepo.On("GetByID", mock.Anything, mock.AnythingOfType("int64")).
		Return(&entity.Title{ID: 1, Name: "Солярис"}, nil)

	_, err := svc.Create(context.Background(), &entity.CreateTitleRequest{
		Name:     "Солярис",
		Year:     1961,
		Category: "books",
		Genre:    []string{"sci-fi", "sci-fi"},
	})

	require.NoError(t, err)
	genreRepo.AssertExpectations(t)
}

func TestTitleService_Update_NilGenresUntouched(t *testing.T) {
	svc, titleRepo, _, _ := newTestTitleService()

	existing := &entity.Title{ID: 42, Name: "Солярис", Year: 1961}
	titleRepo.On("GetByID", mock.Anything, int64(42)).Return(existing, nil)
	// genreIDs == nil: связи с жанрами не трогаем
	titleRepo.On("Update", mock.Anything, mock.AnythingOfType("*entity.Title"), []int64(nil)).Return(nil)

	name := "Солярис (переиздание)"
	_, err := svc.Update(context.Background(), 42, &entity.UpdateTitleRequest{Name: &name})

	require.NoError(t, err)
	titleRepo.AssertExpectations(t)
}

func TestTitleService_Update_EmptyGenresClearLinks(t *testing.T) {
	svc, titleRepo, _, _ := newTestTitleService()

	existing := &entity.Title{ID: 42, Name: "Солярис", Year: 1961}
	titleRepo.On("GetByID", mock.Anything, int64(42)).Return(existing, nil)
	titleRepo.On("Update", mock.Anything, mock.AnythingOfType("*entity.Title"), []int64{}).Return(nil)

	empty := []string{}
	_, err := svc.Update(context.Background(), 42, &entity.UpdateTitleRequest{Genre: &empty})

	require.NoError(t, err)
	titleRepo.AssertExpectations(t)
}

func TestTitleService_Update_NotFound(t *testing.T) {
	svc, titleRepo, _, _ := newTestTitleService()

	titleRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, repository.ErrNotFound)

	name := "Призрак"
	_, err := svc.Update(context.Background(), 99, &entity.UpdateTitleRequest{Name: &name})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTitleService_Delete_NotFound(t *testing.T) {
	svc, titleRepo, _, _ := newTestTitleService()

	titleRepo.On("Delete", mock.Anything, int64(99)).Return(repository.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), 99), ErrNotFound)
}
