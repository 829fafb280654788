package service

import (
	"context"
	"errors"

	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/repository"
	"kritika/internal/app/kritika/util"
	"kritika/pkg/logger"
)

// TitleService управляет произведениями
type TitleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
) *TitleService {
	return &TitleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
	}
}

func (s *TitleService) Create(ctx context.Context, req *entity.CreateTitleRequest) (*entity.Title, error) {
	if err := util.ValidateName(req.Name); err != nil {
		return nil, NewValidationError("%s", err.Error())
	}
	if err := util.ValidateYear(req.Year); err != nil {
		return nil, NewValidationError("%s", err.Error())
	}

	category, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	genreIDs, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}

	title := &entity.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		CategoryID:  &category.ID,
	}
	if err := s.titleRepo.Create(ctx, title, genreIDs); err != nil {
		return nil, err
	}

	logger.Info().Int64("title_id", title.ID).Str("name", title.Name).Msg("title created")
	// Перечитываем, чтобы отдать категорию, жанры и rating в одном виде
	return s.GetByID(ctx, title.ID)
}

func (s *TitleService) GetByID(ctx context.Context, id int64) (*entity.Title, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return title, nil
}

func (s *TitleService) List(ctx context.Context, filter repository.TitleFilter, limit, offset int) ([]entity.Title, int64, error) {
	return s.titleRepo.List(ctx, filter, limit, offset)
}

func (s *TitleService) Update(ctx context.Context, id int64, req *entity.UpdateTitleRequest) (*entity.Title, error) {
	title, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := util.ValidateName(*req.Name); err != nil {
			return nil, NewValidationError("%s", err.Error())
		}
		title.Name = *req.Name
	}
	if req.Year != nil {
		if err := util.ValidateYear(*req.Year); err != nil {
			return nil, NewValidationError("%s", err.Error())
		}
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = req.Description
	}
	if req.Category != nil {
		category, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
	}

	// nil означает "жанры не трогать"; пустой список стирает связи
	var genreIDs []int64
	if req.Genre != nil {
		genreIDs, err = s.resolveGenres(ctx, *req.Genre)
		if err != nil {
			return nil, err
		}
		if genreIDs == nil {
			genreIDs = []int64{}
		}
	}

	if err := s.titleRepo.Update(ctx, title, genreIDs); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *TitleService) Delete(ctx context.Context, id int64) error {
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	logger.Info().Int64("title_id", id).Msg("title deleted")
	return nil
}

// resolveCategory превращает slug из тела запроса в категорию.
// Неизвестный slug - ошибка валидации, а не 404: ссылка пришла в теле.
func (s *TitleService) resolveCategory(ctx context.Context, slug string) (*entity.Category, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewValidationError("category %q does not exist", slug)
		}
		return nil, err
	}
	return category, nil
}

// resolveGenres превращает список слагов в id жанров, сохраняя порядок
func (s *TitleService) resolveGenres(ctx context.Context, slugs []string) ([]int64, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(slugs))
	seen := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}

		genre, err := s.genreRepo.GetBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, NewValidationError("genre %q does not exist", slug)
			}
			return nil, err
		}
		ids = append(ids, genre.ID)
	}
	return ids, nil
}
