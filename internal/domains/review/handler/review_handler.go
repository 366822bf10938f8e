package handler

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	bookmodel "biblioconnect-backend/internal/domains/book/model"
	"biblioconnect-backend/internal/domains/review/model"
	"biblioconnect-backend/internal/domains/review/service"
	"biblioconnect-backend/internal/shared/middleware"
	"biblioconnect-backend/internal/shared/response"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// Submit stores a review
// POST /api/v1/books/:book_id/reviews
func (h *ReviewHandler) Submit(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	bookID, err := uuid.Parse(c.Param("book_id"))
	if err != nil {
		response.BadRequest(c, "validation_error", "invalid book ID")
		return
	}

	var req model.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "validation_error", err.Error())
		return
	}

	review, err := h.reviewService.Submit(c.Request.Context(), userID, bookID, req)
	if err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, review)
}

// ListByBook lists a book's reviews
// GET /api/v1/books/:book_id/reviews
func (h *ReviewHandler) ListByBook(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("book_id"))
	if err != nil {
		response.BadRequest(c, "validation_error", "invalid book ID")
		return
	}

	reviews, err := h.reviewService.ListByBook(c.Request.Context(), bookID)
	if err != nil {
		h.mapError(c, err)
		return
	}

	resp := reviews
	if resp == nil {
		resp = []*model.ReviewWithUser{}
	}
	response.Success(c, http.StatusOK, resp)
}

// CanAdd reports whether the caller may review the book
// GET /api/v1/reviews/can_add/:book_id
func (h *ReviewHandler) CanAdd(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	bookID, err := uuid.Parse(c.Param("book_id"))
	if err != nil {
		response.BadRequest(c, "validation_error", "invalid book ID")
		return
	}

	resp, err := h.reviewService.CanAdd(c.Request.Context(), userID, bookID)
	if err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func (h *ReviewHandler) mapError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, model.CodeValidationError, "invalid review", verrs)
	case errors.Is(err, bookmodel.ErrBookNotFound):
		response.NotFound(c, "book not found")
	case errors.Is(err, model.ErrAlreadyReviewed):
		response.ErrorResponse(c, http.StatusConflict, model.CodeAlreadyReviewed, "review already exists")
	case errors.Is(err, model.ErrNotBorrowed):
		response.ErrorResponse(c, http.StatusForbidden, model.CodeNotBorrowed, "a completed rental is required")
	case errors.Is(err, model.ErrAccessRestricted):
		response.ErrorResponse(c, http.StatusForbidden, model.CodeAccessRestricted, "overdue rentals block this action")
	default:
		response.InternalServerError(c)
	}
}
