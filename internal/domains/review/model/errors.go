package model

import "errors"

const (
	CodeAlreadyReviewed  = "already_reviewed"
	CodeNotBorrowed      = "not_borrowed"
	CodeAccessRestricted = "access_restricted"
	CodeValidationError  = "validation_error"
)

var (
	ErrAlreadyReviewed = errors.New("a review for this book already exists")
	ErrNotBorrowed     = errors.New("reviewing requires a completed rental of the book")

	// ErrAccessRestricted mirrors the borrow-side lockout: overdue
	// rentals block reviewing too.
	ErrAccessRestricted = errors.New("reviewing is blocked while overdue rentals exist")
)
