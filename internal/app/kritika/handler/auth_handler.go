package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/service"
)

type AuthHandler struct {
	authService service.AuthServiceInterface
	validator   *validator.Validate
}

func NewAuthHandler(authService service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
	}
}

// Signup принимает username и email, отвечает эхом принятых данных.
// Код подтверждения уходит письмом, в ответе его нет.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req entity.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondValidation(c, err)
		return
	}

	resp, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Token обменивает код подтверждения на access токен
func (h *AuthHandler) Token(c *gin.Context) {
	var req entity.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondValidation(c, err)
		return
	}

	resp, err := h.authService.IssueToken(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
