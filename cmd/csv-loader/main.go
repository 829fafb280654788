package main

import (
	"context"
	"flag"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"kritika/internal/app/kritika/config"
	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/loader"
	"kritika/pkg/logger"
)

// Загрузчик стартовых данных: заливает CSV-выгрузку в БД целиком,
// затирая текущее содержимое таблиц. Запускается руками или из CI,
// API-сервер в этом не участвует.
func main() {
	dataDir := flag.String("data", "data", "directory with csv files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("kritika-loader", "info")
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init("kritika-loader", cfg.Logging.Level)

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Category{},
		&entity.Genre{},
		&entity.Title{},
		&entity.GenreTitle{},
		&entity.Review{},
		&entity.Comment{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	if err := loader.New(db, *dataDir).Run(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("csv load failed")
	}

	logger.Info().Str("data_dir", *dataDir).Msg("csv load completed")
}
