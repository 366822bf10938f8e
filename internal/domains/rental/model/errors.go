package model

import "errors"

// Stable reason codes. Every expected outcome maps to exactly one of
// these; the presentation layer localizes them.
const (
	CodeNotAvailable       = "not_available"
	CodeAlreadyBorrowed    = "already_borrowed"
	CodeAccessRestricted   = "access_restricted"
	CodeInvalidState       = "invalid_state"
	CodeGatewayUnavailable = "gateway_unavailable"
)

var (
	ErrRentalNotFound   = errors.New("rental not found")
	ErrNotAvailable     = errors.New("no copies available")
	ErrAlreadyBorrowed  = errors.New("an active or pending rental already exists for this book")
	ErrAccessRestricted = errors.New("borrowing is blocked while overdue rentals exist")
	ErrInvalidState     = errors.New("transition not allowed from current rental state")
	ErrInvoiceNotFound  = errors.New("invoice not found")

	// ErrGatewayUnavailable is transient: the caller may retry, rental
	// state is never left half-transitioned behind it.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)
