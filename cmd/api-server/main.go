package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"kritika/internal/app/kritika/config"
	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/handler"
	"kritika/internal/app/kritika/mailer"
	"kritika/internal/app/kritika/repository"
	"kritika/internal/app/kritika/service"
	"kritika/internal/app/kritika/util"
	"kritika/internal/app/kritika/worker"
	"kritika/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("kritika", "info")
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Логи в JSON; при заданном LOGSTASH_ADDR дублируются в Logstash
	logger.Init("kritika", cfg.Logging.Level)
	if cfg.Logging.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Logging.LogstashAddr, "kritika", cfg.Logging.Level); err != nil {
			logger.Warn().Err(err).Msg("logstash unavailable, logging to stdout only")
		}
	}

	// === POSTGRESQL ===
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	logger.Info().Msg("connected to PostgreSQL")

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

	// === REDIS ===
	redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Msg("connected to Redis")

	// === KAFKA ===
	reviewProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.ReviewTopic)
	defer reviewProducer.Close()
	mailProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.MailTopic)
	defer mailProducer.Close()
	logger.Info().Msg("initialized Kafka producers")

	// === РЕПОЗИТОРИИ ===
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// === СЕРВИСЫ ===
	jwtManager := util.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.AccessTokenDuration)
	authService := service.NewAuthService(userRepo, jwtManager, mailProducer)
	userService := service.NewUserService(userRepo)
	catalogService := service.NewCatalogService(categoryRepo, genreRepo, redisClient)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo)
	reviewService := service.NewReviewService(reviewRepo, commentRepo, titleRepo, reviewProducer)

	// === ФОНОВЫЕ ПРОЦЕССЫ ===
	// Письма с кодами отправляет отдельный worker из очереди Kafka
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP.Address(), cfg.SMTP.From)
	mailWorker := mailer.NewWorker(cfg.Kafka.Brokers, cfg.Kafka.MailTopic, cfg.Kafka.MailGroupID, smtpMailer)
	mailWorker.Start(context.Background())
	defer mailWorker.Stop()

	cronScheduler := worker.NewCronScheduler(catalogService)
	if err := cronScheduler.Start(context.Background(), cfg.Cron.CacheWarmSchedule); err != nil {
		logger.Fatal().Err(err).Msg("failed to start cron scheduler")
	}
	defer cronScheduler.Stop()

	// === HTTP ===
	authHandler := handler.NewAuthHandler(authService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	titleHandler := handler.NewTitleHandler(titleService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	userHandler := handler.NewUserHandler(userService)
	authMiddleware := handler.NewAuthMiddleware(jwtManager, userRepo)

	router := handler.SetupRoutes(
		authHandler,
		catalogHandler,
		titleHandler,
		reviewHandler,
		userHandler,
		authMiddleware,
	)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("stopped gracefully")
}

// connectDB подключается к PostgreSQL с ретраями: при старте в Docker
// база может подниматься дольше приложения
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for attempt := 1; attempt <= 10; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
			TranslateError: true,
		})
		if err == nil {
			return db, nil
		}
		logger.Warn().Err(err).Int("attempt", attempt).Msg("database not ready, retrying")
		time.Sleep(2 * time.Second)
	}
	return nil, err
}
