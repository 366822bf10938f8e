package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	bookmodel "biblioconnect-backend/internal/domains/book/model"
	"biblioconnect-backend/internal/domains/rental/gateway"
	"biblioconnect-backend/internal/domains/rental/model"
	"biblioconnect-backend/internal/domains/rental/service"
	"biblioconnect-backend/internal/shared/middleware"
	"biblioconnect-backend/internal/shared/response"
)

const maxCallbackBytes = 1 << 20

type RentalHandler struct {
	rentalService service.RentalService
}

func NewRentalHandler(rentalService service.RentalService) *RentalHandler {
	return &RentalHandler{rentalService: rentalService}
}

// Borrow starts a rental and hands back the payment URL
// POST /api/v1/borrow/:book_id
func (h *RentalHandler) Borrow(c *gin.Context) {
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

	rental, err := h.rentalService.Create(c.Request.Context(), userID, bookID)
	if err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, model.BorrowResponse{
		RentalID:   rental.ID,
		Status:     rental.Status,
		PaymentURL: deref(rental.PaymentURL),
	})
}

// Return closes an active rental
// POST /api/v1/return/:rental_id
func (h *RentalHandler) Return(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	rentalID, err := uuid.Parse(c.Param("rental_id"))
	if err != nil {
		response.BadRequest(c, "validation_error", "invalid rental ID")
		return
	}

	if err := h.rentalService.Return(c.Request.Context(), userID, rentalID); err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"returned": true})
}

// BorrowStatus reports borrow eligibility plus the caller's current
// rental of the book
// GET /api/v1/book/status/:book_id
func (h *RentalHandler) BorrowStatus(c *gin.Context) {
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

	snap, err := h.rentalService.Snapshot(c.Request.Context(), userID, bookID)
	if err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, http.StatusOK, snap)
}

// ListBorrows returns the caller's rental history
// GET /api/v1/borrows
func (h *RentalHandler) ListBorrows(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	items, err := h.rentalService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

// GetBorrow returns one rental owned by the caller
// GET /api/v1/borrows/:rental_id
func (h *RentalHandler) GetBorrow(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	rentalID, err := uuid.Parse(c.Param("rental_id"))
	if err != nil {
		response.BadRequest(c, "validation_error", "invalid rental ID")
		return
	}

	rental, err := h.rentalService.GetByID(c.Request.Context(), userID, rentalID)
	if err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, http.StatusOK, rental)
}

// GetInvoice returns the invoice data of a paid rental
// GET /api/v1/invoices/:rental_id
func (h *RentalHandler) GetInvoice(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	rentalID, err := uuid.Parse(c.Param("rental_id"))
	if err != nil {
		response.BadRequest(c, "validation_error", "invalid rental ID")
		return
	}

	invoice, err := h.rentalService.GetInvoice(c.Request.Context(), userID, rentalID)
	if err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, http.StatusOK, invoice)
}

// PaymentWebhook receives signed status pushes from the gateway. The
// route is unauthenticated; the HMAC signature is the authentication.
// POST /api/v1/webhooks/payment
func (h *RentalHandler) PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBytes))
	if err != nil || len(body) == 0 {
		response.BadRequest(c, "validation_error", "missing callback body")
		return
	}

	err = h.rentalService.HandleCallback(c.Request.Context(), body, c.GetHeader("X-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrBadSignature):
			response.Unauthorized(c, "signature mismatch")
		case errors.Is(err, gateway.ErrMalformed):
			response.BadRequest(c, "validation_error", "malformed callback")
		default:
			h.mapError(c, err)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"processed": true})
}

// mapError turns ledger errors into envelope responses with stable
// reason codes.
func (h *RentalHandler) mapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, bookmodel.ErrBookNotFound):
		response.NotFound(c, "book not found")
	case errors.Is(err, model.ErrRentalNotFound):
		response.NotFound(c, "rental not found")
	case errors.Is(err, model.ErrInvoiceNotFound):
		response.NotFound(c, "invoice not found")
	case errors.Is(err, model.ErrNotAvailable):
		response.ErrorResponse(c, http.StatusConflict, model.CodeNotAvailable, "no copies available")
	case errors.Is(err, model.ErrAlreadyBorrowed):
		response.ErrorResponse(c, http.StatusConflict, model.CodeAlreadyBorrowed, "book already borrowed")
	case errors.Is(err, model.ErrAccessRestricted):
		response.ErrorResponse(c, http.StatusForbidden, model.CodeAccessRestricted, "overdue rentals block this action")
	case errors.Is(err, model.ErrInvalidState):
		response.ErrorResponse(c, http.StatusConflict, model.CodeInvalidState, "transition not allowed from current state")
	case errors.Is(err, model.ErrGatewayUnavailable):
		response.ErrorResponse(c, http.StatusBadGateway, model.CodeGatewayUnavailable, "payment gateway unavailable, try again")
	default:
		response.InternalServerError(c)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
