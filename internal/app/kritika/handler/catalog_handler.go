package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/service"
)

// CatalogHandler обслуживает справочники категорий и жанров
type CatalogHandler struct {
	catalogService service.CatalogServiceInterface
	validator      *validator.Validate
}

func NewCatalogHandler(catalogService service.CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		validator:      validator.New(),
	}
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	limit, offset := parsePagination(c)
	categories, count, err := h.catalogService.ListCategories(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.CategoryListResponse{Count: count, Results: categories})
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req entity.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondValidation(c, err)
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.catalogService.DeleteCategory(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) ListGenres(c *gin.Context) {
	limit, offset := parsePagination(c)
	genres, count, err := h.catalogService.ListGenres(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.GenreListResponse{Count: count, Results: genres})
}

func (h *CatalogHandler) CreateGenre(c *gin.Context) {
	var req entity.CreateGenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondValidation(c, err)
		return
	}

	genre, err := h.catalogService.CreateGenre(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, genre)
}

func (h *CatalogHandler) DeleteGenre(c *gin.Context) {
	if err := h.catalogService.DeleteGenre(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
