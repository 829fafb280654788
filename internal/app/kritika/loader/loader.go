package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gorm.io/gorm"

	"kritika/internal/app/kritika/entity"
	"kritika/pkg/logger"
)

// Loader загружает стартовые данные из CSV-файлов.
// Каждая таблица очищается и заливается заново в одной транзакции,
// id из файлов сохраняются как есть.
type Loader struct {
	db      *gorm.DB
	dataDir string
}

func New(db *gorm.DB, dataDir string) *Loader {
	return &Loader{db: db, dataDir: dataDir}
}

// Run выполняет полную загрузку. Порядок фиксирован зависимостями
// внешних ключей.
func (l *Loader) Run(ctx context.Context) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Очистка в порядке, обратном вставке
		for _, model := range []interface{}{
			&entity.Comment{},
			&entity.Review{},
			&entity.GenreTitle{},
			&entity.Title{},
			&entity.Genre{},
			&entity.Category{},
			&entity.User{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("failed to truncate table: %w", err)
			}
		}

		steps := []struct {
			name string
			load func(*gorm.DB) (int, error)
		}{
			{"users.csv", l.loadUsers},
			{"category.csv", l.loadCategories},
			{"genre.csv", l.loadGenres},
			{"titles.csv", l.loadTitles},
			{"genre_title.csv", l.loadGenreTitles},
			{"review.csv", l.loadReviews},
			{"comments.csv", l.loadComments},
		}
		for _, step := range steps {
			count, err := step.load(tx)
			if err != nil {
				return fmt.Errorf("%s: %w", step.name, err)
			}
			logger.Info().Str("file", step.name).Int("rows", count).Msg("loaded")
		}
		return nil
	})
}

func (l *Loader) loadUsers(tx *gorm.DB) (int, error) {
	rows, err := l.readFile("users.csv")
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		id, err := row.int64("id")
		if err != nil {
			return 0, err
		}
		role := entity.Role(row.get("role"))
		if role == "" {
			role = entity.RoleUser
		}
		user := entity.User{
			ID:        id,
			Username:  row.get("username"),
			Email:     row.get("email"),
			Role:      role,
			Bio:       row.get("bio"),
			FirstName: row.get("first_name"),
			LastName:  row.get("last_name"),
		}
		if err := tx.Create(&user).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func (l *Loader) loadCategories(tx *gorm.DB) (int, error) {
	rows, err := l.readFile("category.csv")
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		id, err := row.int64("id")
		if err != nil {
			return 0, err
		}
		category := entity.Category{ID: id, Name: row.get("name"), Slug: row.get("slug")}
		if err := tx.Create(&category).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func (l *Loader) loadGenres(tx *gorm.DB) (int, error) {
	rows, err := l.readFile("genre.csv")
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		id, err := row.int64("id")
		if err != nil {
			return 0, err
		}
		genre := entity.Genre{ID: id, Name: row.get("name"), Slug: row.get("slug")}
		if err := tx.Create(&genre).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func (l *Loader) loadTitles(tx *gorm.DB) (int, error) {
	rows, err := l.readFile("titles.csv")
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		id, err := row.int64("id")
		if err != nil {
			return 0, err
		}
		year, err := row.int("year")
		if err != nil {
			return 0, err
		}
		title := entity.Title{ID: id, Name: row.get("name"), Year: year}
		if raw := row.get("category"); raw != "" {
			categoryID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("bad category id %q: %w", raw, err)
			}
			title.CategoryID = &categoryID
		}
		if err := tx.Create(&title).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func (l *Loader) loadGenreTitles(tx *gorm.DB) (int, error) {
	rows, err := l.readFile("genre_title.csv")
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		id, err := row.int64("id")
		if err != nil {
			return 0, err
		}
		titleID, err := row.int64("title_id")
		if err != nil {
			return 0, err
		}
		genreID, err := row.int64("genre_id")
		if err != nil {
			return 0, err
		}
		link := entity.GenreTitle{ID: id, TitleID: titleID, GenreID: genreID}
		if err := tx.Create(&link).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func (l *Loader) loadReviews(tx *gorm.DB) (int, error) {
	rows, err := l.readFile("review.csv")
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		id, err := row.int64("id")
		if err != nil {
			return 0, err
		}
		titleID, err := row.int64("title_id")
		if err != nil {
			return 0, err
		}
		authorID, err := row.int64("author")
		if err != nil {
			return 0, err
		}
		score, err := row.int("score")
		if err != nil {
			return 0, err
		}
		pubDate, err := row.timestamp("pub_date")
		if err != nil {
			return 0, err
		}
		review := entity.Review{
			ID:       id,
			TitleID:  titleID,
			AuthorID: authorID,
			Text:     row.get("text"),
			Score:    score,
			PubDate:  pubDate,
		}
		if err := tx.Create(&review).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func (l *Loader) loadComments(tx *gorm.DB) (int, error) {
	rows, err := l.readFile("comments.csv")
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		id, err := row.int64("id")
		if err != nil {
			return 0, err
		}
		reviewID, err := row.int64("review_id")
		if err != nil {
			return 0, err
		}
		authorID, err := row.int64("author")
		if err != nil {
			return 0, err
		}
		pubDate, err := row.timestamp("pub_date")
		if err != nil {
			return 0, err
		}
		comment := entity.Comment{
			ID:       id,
			ReviewID: reviewID,
			AuthorID: authorID,
			Text:     row.get("text"),
			PubDate:  pubDate,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

// record - строка CSV с доступом к колонкам по имени из заголовка
type record struct {
	columns map[string]int
	values  []string
}

func (r record) get(name string) string {
	idx, ok := r.columns[name]
	if !ok || idx >= len(r.values) {
		return ""
	}
	return r.values[idx]
}

func (r record) int64(name string) (int64, error) {
	value, err := strconv.ParseInt(r.get(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", name, err)
	}
	return value, nil
}

func (r record) int(name string) (int, error) {
	value, err := strconv.Atoi(r.get(name))
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", name, err)
	}
	return value, nil
}

func (r record) timestamp(name string) (time.Time, error) {
	value, err := time.Parse(time.RFC3339, r.get(name))
	if err != nil {
		return time.Time{}, fmt.Errorf("column %q: %w", name, err)
	}
	return value, nil
}

func (l *Loader) readFile(name string) ([]record, error) {
	f, err := os.Open(filepath.Join(l.dataDir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	columns := make(map[string]int, len(all[0]))
	for i, column := range all[0] {
		columns[column] = i
	}

	rows := make([]record, 0, len(all)-1)
	for _, values := range all[1:] {
		rows = append(rows, record{columns: columns, values: values})
	}
	return rows, nil
}
