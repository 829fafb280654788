package service

import (
	"context"
	"errors"
	"time"

	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/repository"
	"kritika/internal/app/kritika/util"
	"kritika/pkg/logger"
)

// Справочники маленькие и меняются редко, поэтому полный список
// живет в Redis; поиск и пагинация режут его уже в памяти
const catalogCacheTTL = 10 * time.Minute

// CatalogService управляет категориями и жанрами
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	cache        *util.RedisClient
}

func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
	cache *util.RedisClient,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		cache:        cache,
	}
}

func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	if err := util.ValidateName(req.Name); err != nil {
		return nil, NewValidationError("%s", err.Error())
	}
	if err := util.ValidateSlug(req.Slug); err != nil {
		return nil, NewValidationError("%s", err.Error())
	}

	category := &entity.Category{Name: req.Name, Slug: req.Slug}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, NewValidationError("category with slug %q already exists", req.Slug)
		}
		return nil, err
	}

	s.invalidateCategories(ctx)
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, search string, limit, offset int) ([]entity.Category, int64, error) {
	if search != "" {
		return s.categoryRepo.List(ctx, search, limit, offset)
	}

	if cached, err := s.cache.GetCategories(ctx); err == nil && cached != nil {
		return paginate(cached, limit, offset), int64(len(cached)), nil
	} else if err != nil {
		logger.Warn().Err(err).Msg("categories cache read failed, falling back to db")
	}

	all, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	if err := s.cache.SetCategories(ctx, all, catalogCacheTTL); err != nil {
		logger.Warn().Err(err).Msg("failed to warm categories cache")
	}
	return paginate(all, limit, offset), int64(len(all)), nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	if err := s.categoryRepo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.invalidateCategories(ctx)
	return nil
}

func (s *CatalogService) CreateGenre(ctx context.Context, req *entity.CreateGenreRequest) (*entity.Genre, error) {
	if err := util.ValidateName(req.Name); err != nil {
		return nil, NewValidationError("%s", err.Error())
	}
	if err := util.ValidateSlug(req.Slug); err != nil {
		return nil, NewValidationError("%s", err.Error())
	}

	genre := &entity.Genre{Name: req.Name, Slug: req.Slug}
	if err := s.genreRepo.Create(ctx, genre); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, NewValidationError("genre with slug %q already exists", req.Slug)
		}
		return nil, err
	}

	s.invalidateGenres(ctx)
	return genre, nil
}

func (s *CatalogService) ListGenres(ctx context.Context, search string, limit, offset int) ([]entity.Genre, int64, error) {
	if search != "" {
		return s.genreRepo.List(ctx, search, limit, offset)
	}

	if cached, err := s.cache.GetGenres(ctx); err == nil && cached != nil {
		return paginate(cached, limit, offset), int64(len(cached)), nil
	} else if err != nil {
		logger.Warn().Err(err).Msg("genres cache read failed, falling back to db")
	}

	all, err := s.genreRepo.GetAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	if err := s.cache.SetGenres(ctx, all, catalogCacheTTL); err != nil {
		logger.Warn().Err(err).Msg("failed to warm genres cache")
	}
	return paginate(all, limit, offset), int64(len(all)), nil
}

func (s *CatalogService) DeleteGenre(ctx context.Context, slug string) error {
	if err := s.genreRepo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.invalidateGenres(ctx)
	return nil
}

// WarmCache загружает оба справочника в Redis. Вызывается при старте
// и по расписанию.
func (s *CatalogService) WarmCache(ctx context.Context) error {
	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	if err := s.cache.SetCategories(ctx, categories, catalogCacheTTL); err != nil {
		return err
	}

	genres, err := s.genreRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	if err := s.cache.SetGenres(ctx, genres, catalogCacheTTL); err != nil {
		return err
	}

	logger.Debug().
		Int("categories", len(categories)).
		Int("genres", len(genres)).
		Msg("catalog cache warmed")
	return nil
}

func (s *CatalogService) invalidateCategories(ctx context.Context) {
	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate categories cache")
	}
}

func (s *CatalogService) invalidateGenres(ctx context.Context) {
	if err := s.cache.DeleteGenres(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate genres cache")
	}
}

// paginate режет полный список по limit/offset
func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
