package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/repository"
	"kritika/internal/app/kritika/util"
)

const contextUserKey = "current_user"

// AuthMiddleware проверяет access токен и загружает пользователя.
// Пользователь читается из БД на каждый запрос: роль могла поменяться
// после выпуска токена.
type AuthMiddleware struct {
	jwtManager *util.JWTManager
	userRepo   repository.UserRepository
}

func NewAuthMiddleware(jwtManager *util.JWTManager, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		userRepo:   userRepo,
	}
}

// Authenticate требует валидный токен; анонимный запрос получает 401
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := m.resolveUser(c, true)
		if !ok {
			return
		}
		c.Set(contextUserKey, user)
		c.Next()
	}
}

// OptionalAuthenticate пропускает анонимные запросы дальше, но
// предъявленный невалидный токен все равно отклоняет
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		user, ok := m.resolveUser(c, true)
		if !ok {
			return
		}
		c.Set(contextUserKey, user)
		c.Next()
	}
}

// RequireCatalogAdmin защищает запись в справочники и произведения.
// Анонимный запрос здесь получает 403, а не 401: чтение открыто всем,
// и отсутствие токена - недостаток прав, а не аутентификации.
func (m *AuthMiddleware) RequireCatalogAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var user *entity.User
		if c.GetHeader("Authorization") != "" {
			resolved, ok := m.resolveUser(c, true)
			if !ok {
				return
			}
			user = resolved
		}

		if !util.CanWriteCatalog(user) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "You do not have permission to perform this action",
			})
			c.Abort()
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// resolveUser извлекает пользователя из Bearer токена. При ошибке
// пишет 401 и прерывает цепочку.
func (m *AuthMiddleware) resolveUser(c *gin.Context, abort bool) (*entity.User, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return m.unauthorized(c, "Authorization header required", abort)
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return m.unauthorized(c, "Invalid authorization header format", abort)
	}

	claims, err := m.jwtManager.ValidateToken(parts[1])
	if err != nil {
		if errors.Is(err, util.ErrExpiredToken) {
			return m.unauthorized(c, "Token has expired", abort)
		}
		return m.unauthorized(c, "Invalid token", abort)
	}

	user, err := m.userRepo.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return m.unauthorized(c, "User no longer exists", abort)
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to load user",
		})
		c.Abort()
		return nil, false
	}

	return user, true
}

func (m *AuthMiddleware) unauthorized(c *gin.Context, message string, abort bool) (*entity.User, bool) {
	if abort {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": message,
		})
		c.Abort()
	}
	return nil, false
}

// currentUser возвращает пользователя, положенного middleware в контекст
func currentUser(c *gin.Context) *entity.User {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*entity.User)
	if !ok {
		return nil
	}
	return user
}
