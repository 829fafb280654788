package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/service"
)

// ReviewHandler обслуживает отзывы и комментарии к ним
type ReviewHandler struct {
	reviewService service.ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService service.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	titleID, ok := parseIDParam(c, "title_id")
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	limit, offset := parsePagination(c)
	reviews, count, err := h.reviewService.ListReviews(c.Request.Context(), titleID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]entity.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		results = append(results, toReviewResponse(&reviews[i]))
	}
	c.JSON(http.StatusOK, entity.ReviewListResponse{Count: count, Results: results})
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c)
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	review, err := h.reviewService.GetReview(c.Request.Context(), titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponse(review))
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	titleID, ok := parseIDParam(c, "title_id")
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondValidation(c, err)
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), titleID, currentUser(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReviewResponse(review))
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c)
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	var req entity.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondValidation(c, err)
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), titleID, reviewID, currentUser(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponse(review))
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c)
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), titleID, reviewID, currentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReviewHandler) ListComments(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c)
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	limit, offset := parsePagination(c)
	comments, count, err := h.reviewService.ListComments(c.Request.Context(), titleID, reviewID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]entity.CommentResponse, 0, len(comments))
	for i := range comments {
		results = append(results, toCommentResponse(&comments[i]))
	}
	c.JSON(http.StatusOK, entity.CommentListResponse{Count: count, Results: results})
}

func (h *ReviewHandler) GetComment(c *gin.Context) {
	titleID, reviewID, commentID, ok := commentPath(c)
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	comment, err := h.reviewService.GetComment(c.Request.Context(), titleID, reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCommentResponse(comment))
}

func (h *ReviewHandler) CreateComment(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c)
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	var req entity.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondValidation(c, err)
		return
	}

	comment, err := h.reviewService.CreateComment(c.Request.Context(), titleID, reviewID, currentUser(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCommentResponse(comment))
}

func (h *ReviewHandler) UpdateComment(c *gin.Context) {
	titleID, reviewID, commentID, ok := commentPath(c)
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	var req entity.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}

	comment, err := h.reviewService.UpdateComment(c.Request.Context(), titleID, reviewID, commentID, currentUser(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCommentResponse(comment))
}

func (h *ReviewHandler) DeleteComment(c *gin.Context) {
	titleID, reviewID, commentID, ok := commentPath(c)
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	if err := h.reviewService.DeleteComment(c.Request.Context(), titleID, reviewID, commentID, currentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func reviewPath(c *gin.Context) (titleID, reviewID int64, ok bool) {
	titleID, ok = parseIDParam(c, "title_id")
	if !ok {
		return 0, 0, false
	}
	reviewID, ok = parseIDParam(c, "review_id")
	if !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

func commentPath(c *gin.Context) (titleID, reviewID, commentID int64, ok bool) {
	titleID, reviewID, ok = reviewPath(c)
	if !ok {
		return 0, 0, 0, false
	}
	commentID, ok = parseIDParam(c, "comment_id")
	if !ok {
		return 0, 0, 0, false
	}
	return titleID, reviewID, commentID, true
}

// toReviewResponse подставляет username автора вместо внутреннего id
func toReviewResponse(review *entity.Review) entity.ReviewResponse {
	resp := entity.ReviewResponse{
		ID:      review.ID,
		Text:    review.Text,
		Score:   review.Score,
		PubDate: review.PubDate,
	}
	if review.Author != nil {
		resp.Author = review.Author.Username
	}
	return resp
}

func toCommentResponse(comment *entity.Comment) entity.CommentResponse {
	resp := entity.CommentResponse{
		ID:      comment.ID,
		Text:    comment.Text,
		PubDate: comment.PubDate,
	}
	if comment.Author != nil {
		resp.Author = comment.Author.Username
	}
	return resp
}
