package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kritika/pkg/logger"
	"kritika/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(
	authHandler *AuthHandler,
	catalogHandler *CatalogHandler,
	titleHandler *TitleHandler,
	reviewHandler *ReviewHandler,
	userHandler *UserHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("kritika"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "kritika",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Аутентификация: код на почту и обмен кода на токен
	auth := router.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/token", authHandler.Token)
	}

	// Справочники: чтение публичное, запись только администратору
	categories := router.Group("/categories")
	{
		categories.GET("", catalogHandler.ListCategories)
		categories.POST("", authMiddleware.RequireCatalogAdmin(), catalogHandler.CreateCategory)
		categories.DELETE("/:slug", authMiddleware.RequireCatalogAdmin(), catalogHandler.DeleteCategory)
	}

	genres := router.Group("/genres")
	{
		genres.GET("", catalogHandler.ListGenres)
		genres.POST("", authMiddleware.RequireCatalogAdmin(), catalogHandler.CreateGenre)
		genres.DELETE("/:slug", authMiddleware.RequireCatalogAdmin(), catalogHandler.DeleteGenre)
	}

	titles := router.Group("/titles")
	{
		titles.GET("", titleHandler.List)
		titles.GET("/:title_id", titleHandler.Get)
		titles.POST("", authMiddleware.RequireCatalogAdmin(), titleHandler.Create)
		titles.PATCH("/:title_id", authMiddleware.RequireCatalogAdmin(), titleHandler.Update)
		titles.DELETE("/:title_id", authMiddleware.RequireCatalogAdmin(), titleHandler.Delete)

		// Отзывы: чтение публичное, создание любым авторизованным,
		// правка автором, модератором или администратором
		reviews := titles.Group("/:title_id/reviews")
		{
			reviews.GET("", reviewHandler.ListReviews)
			reviews.GET("/:review_id", reviewHandler.GetReview)
			reviews.POST("", authMiddleware.Authenticate(), reviewHandler.CreateReview)
			reviews.PATCH("/:review_id", authMiddleware.Authenticate(), reviewHandler.UpdateReview)
			reviews.DELETE("/:review_id", authMiddleware.Authenticate(), reviewHandler.DeleteReview)

			comments := reviews.Group("/:review_id/comments")
			{
				comments.GET("", reviewHandler.ListComments)
				comments.GET("/:comment_id", reviewHandler.GetComment)
				comments.POST("", authMiddleware.Authenticate(), reviewHandler.CreateComment)
				comments.PATCH("/:comment_id", authMiddleware.Authenticate(), reviewHandler.UpdateComment)
				comments.DELETE("/:comment_id", authMiddleware.Authenticate(), reviewHandler.DeleteComment)
			}
		}
	}

	// Пользователи: /users/me доступен любому авторизованному,
	// остальное только администратору (проверка внутри обработчиков)
	users := router.Group("/users")
	users.Use(authMiddleware.Authenticate())
	{
		users.GET("", userHandler.List)
		users.POST("", userHandler.Create)
		users.GET("/:username", userHandler.Get)
		users.PATCH("/:username", userHandler.Update)
		users.DELETE("/:username", userHandler.Delete)
	}

	return router
}
