package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"kritika/internal/app/kritika/entity"
	"kritika/pkg/metrics"
)

// ratingSelect добавляет к выборке вычисляемый рейтинг - среднее по
// оценкам отзывов. NULL, если отзывов нет.
const ratingSelect = "titles.*, (SELECT AVG(score) FROM reviews WHERE reviews.title_id = titles.id) AS rating"

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) Create(ctx context.Context, title *entity.Title, genreIDs []int64) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "titles")
	defer timer.ObserveDuration()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(title).Error; err != nil {
			return err
		}
		// Связи вставляются по одной: автоинкремент id фиксирует
		// порядок жанров, в котором их прислал клиент
		for _, genreID := range genreIDs {
			link := entity.GenreTitle{GenreID: genreID, TitleID: title.ID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create title: %w", err)
	}
	return nil
}

func (r *titleRepository) GetByID(ctx context.Context, id int64) (*entity.Title, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "titles")
	defer timer.ObserveDuration()

	var title entity.Title
	err := r.db.WithContext(ctx).Model(&entity.Title{}).
		Select(ratingSelect).
		Preload("Category").
		Where("titles.id = ?", id).
		First(&title).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get title by id: %w", err)
	}

	if err := r.loadGenres(ctx, []*entity.Title{&title}); err != nil {
		return nil, err
	}
	return &title, nil
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter, limit, offset int) ([]entity.Title, int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "titles")
	defer timer.ObserveDuration()

	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&entity.Title{}), filter).
		Distinct("titles.id").
		Count(&count).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to count titles: %w", err)
	}

	var titles []entity.Title
	err := r.applyFilter(r.db.WithContext(ctx).Model(&entity.Title{}), filter).
		Select(ratingSelect).
		Preload("Category").
		Order("titles.name").
		Limit(limit).
		Offset(offset).
		Find(&titles).Error
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to list titles: %w", err)
	}

	refs := make([]*entity.Title, len(titles))
	for i := range titles {
		refs[i] = &titles[i]
	}
	if err := r.loadGenres(ctx, refs); err != nil {
		return nil, 0, err
	}
	return titles, count, nil
}

func (r *titleRepository) Update(ctx context.Context, title *entity.Title, genreIDs []int64) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "titles")
	defer timer.ObserveDuration()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(title).
			Select("name", "year", "description", "category_id").
			Updates(title).Error
		if err != nil {
			return err
		}
		if genreIDs == nil {
			return nil
		}
		// Набор жанров заменяется целиком
		if err := tx.Where("title_id = ?", title.ID).Delete(&entity.GenreTitle{}).Error; err != nil {
			return err
		}
		for _, genreID := range genreIDs {
			link := entity.GenreTitle{GenreID: genreID, TitleID: title.ID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to update title: %w", err)
	}
	return nil
}

func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, "titles")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Delete(&entity.Title{}, id)
	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return fmt.Errorf("failed to delete title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *titleRepository) applyFilter(query *gorm.DB, filter TitleFilter) *gorm.DB {
	if filter.Category != "" {
		query = query.
			Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ?", filter.Category)
	}
	if filter.Genre != "" {
		query = query.
			Joins("JOIN genre_titles ON genre_titles.title_id = titles.id").
			Joins("JOIN genres ON genres.id = genre_titles.genre_id").
			Where("genres.slug = ?", filter.Genre)
	}
	if filter.Name != "" {
		query = query.Where("titles.name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Year != nil {
		query = query.Where("titles.year = ?", *filter.Year)
	}
	return query
}

// titleGenreRow - строка join-выборки жанров по списку произведений
type titleGenreRow struct {
	entity.Genre
	TitleID int64
}

// loadGenres подтягивает жанры для набора произведений одним запросом,
// в порядке добавления связей (genre_titles.id)
func (r *titleRepository) loadGenres(ctx context.Context, titles []*entity.Title) error {
	if len(titles) == 0 {
		return nil
	}

	ids := make([]int64, len(titles))
	byID := make(map[int64]*entity.Title, len(titles))
	for i, title := range titles {
		ids[i] = title.ID
		byID[title.ID] = title
		title.Genres = []entity.Genre{}
	}

	var rows []titleGenreRow
	err := r.db.WithContext(ctx).
		Table("genre_titles").
		Select("genres.id, genres.name, genres.slug, genre_titles.title_id").
		Joins("JOIN genres ON genres.id = genre_titles.genre_id").
		Where("genre_titles.title_id IN ?", ids).
		Order("genre_titles.id").
		Scan(&rows).Error
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return fmt.Errorf("failed to load title genres: %w", err)
	}

	for _, row := range rows {
		if title, ok := byID[row.TitleID]; ok {
			title.Genres = append(title.Genres, row.Genre)
		}
	}
	return nil
}
