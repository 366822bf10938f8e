package handler

import (
	"errors"
	"io"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"biblioconnect-backend/internal/domains/book/model"
	"biblioconnect-backend/internal/domains/book/service"
	"biblioconnect-backend/internal/shared/response"
)

const maxCoverBytes = 5 << 20 // 5 MiB

type BookHandler struct {
	bookService service.BookService
}

func NewBookHandler(bookService service.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// ListBooks returns the catalog
// GET /api/v1/books
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.bookService.ListBooks(c.Request.Context())
	if err != nil {
		response.InternalServerError(c)
		return
	}

	resp := make([]*model.BookResponse, 0, len(books))
	for _, b := range books {
		resp = append(resp, model.NewBookResponse(b))
	}

	response.Success(c, http.StatusOK, resp)
}

// GetBook returns one book
// GET /api/v1/books/:book_id
func (h *BookHandler) GetBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("book_id"))
	if err != nil {
		response.BadRequest(c, "validation_error", "invalid book ID")
		return
	}

	book, err := h.bookService.GetBook(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrBookNotFound) {
			response.NotFound(c, "book not found")
			return
		}
		response.InternalServerError(c)
		return
	}

	response.Success(c, http.StatusOK, model.NewBookResponse(book))
}

// CreateBook adds a catalog entry
// POST /api/v1/books
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "validation_error", err.Error())
		return
	}

	book, err := h.bookService.CreateBook(c.Request.Context(), req)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			response.ErrorWithDetails(c, http.StatusBadRequest, "validation_error", "invalid book", verrs)
			return
		}
		response.InternalServerError(c)
		return
	}

	response.Success(c, http.StatusCreated, model.NewBookResponse(book))
}

// UploadCover stores a cover image for a book
// PUT /api/v1/books/:book_id/cover
func (h *BookHandler) UploadCover(c *gin.Context) {
	id, err := uuid.Parse(c.Param("book_id"))
	if err != nil {
		response.BadRequest(c, "validation_error", "invalid book ID")
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCoverBytes))
	if err != nil || len(data) == 0 {
		response.BadRequest(c, "validation_error", "missing image body")
		return
	}

	url, err := h.bookService.UploadCover(c.Request.Context(), id, data, c.ContentType())
	if err != nil {
		if errors.Is(err, model.ErrBookNotFound) {
			response.NotFound(c, "book not found")
			return
		}
		response.InternalServerError(c)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cover_source": url})
}
