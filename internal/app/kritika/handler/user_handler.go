package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/service"
	"kritika/internal/app/kritika/util"
)

// selfAlias - зарезервированный сегмент пути для собственного профиля
const selfAlias = "me"

// UserHandler обслуживает администрирование пользователей и профиль.
// Маршрут /users/me разруливается внутри обработчиков по литералу
// "me", поэтому отдельной регистрации в роутере у него нет.
type UserHandler struct {
	userService service.UserServiceInterface
	validator   *validator.Validate
}

func NewUserHandler(userService service.UserServiceInterface) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

func (h *UserHandler) List(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	limit, offset := parsePagination(c)
	users, count, err := h.userService.List(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.UserListResponse{Count: count, Results: users})
}

func (h *UserHandler) Create(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	var req entity.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	username := c.Param("username")
	if username == selfAlias {
		c.JSON(http.StatusOK, currentUser(c))
		return
	}
	if !h.requireAdmin(c) {
		return
	}

	user, err := h.userService.GetByUsername(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	username := c.Param("username")

	var req entity.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondValidation(c, err)
		return
	}

	if username == selfAlias {
		user, err := h.userService.UpdateProfile(c.Request.Context(), currentUser(c).ID, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
		return
	}

	if !h.requireAdmin(c) {
		return
	}
	user, err := h.userService.UpdateByAdmin(c.Request.Context(), username, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	username := c.Param("username")
	if username == selfAlias {
		// Собственный аккаунт через этот маршрут не удаляется
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":   "Method Not Allowed",
			"message": "Deleting own account is not allowed",
		})
		return
	}
	if !h.requireAdmin(c) {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), username); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) requireAdmin(c *gin.Context) bool {
	if !util.CanManageUsers(currentUser(c)) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "You do not have permission to perform this action",
		})
		return false
	}
	return true
}
