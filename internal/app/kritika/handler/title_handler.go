package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/repository"
	"kritika/internal/app/kritika/service"
)

// TitleHandler обслуживает произведения
type TitleHandler struct {
	titleService service.TitleServiceInterface
	validator    *validator.Validate
}

func NewTitleHandler(titleService service.TitleServiceInterface) *TitleHandler {
	return &TitleHandler{
		titleService: titleService,
		validator:    validator.New(),
	}
}

// List отдает страницу произведений с фильтрами по категории, жанру,
// имени и году. Сортировка всегда по имени.
func (h *TitleHandler) List(c *gin.Context) {
	filter := repository.TitleFilter{
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
		Name:     c.Query("name"),
	}
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad Request",
				"message": "year must be an integer",
			})
			return
		}
		filter.Year = &year
	}

	limit, offset := parsePagination(c)
	titles, count, err := h.titleService.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.TitleListResponse{Count: count, Results: titles})
}

func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "title_id")
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	title, err := h.titleService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, title)
}

func (h *TitleHandler) Create(c *gin.Context) {
	var req entity.CreateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondValidation(c, err)
		return
	}

	title, err := h.titleService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, title)
}

func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "title_id")
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	var req entity.UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondValidation(c, err)
		return
	}

	title, err := h.titleService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, title)
}

func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "title_id")
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	if err := h.titleService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
