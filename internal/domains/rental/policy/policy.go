// Package policy holds the pure eligibility rules for borrowing and
// reviewing. It never touches the database or the clock: callers pass
// the user's full rental history and the evaluation instant, so the
// same decision can be replayed in tests and in the status endpoints.
package policy

import (
	"time"

	"github.com/google/uuid"

	"biblioconnect-backend/internal/domains/rental/model"
)

// Reason is the stable machine-readable explanation for a denied action.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonOverdueLimit    Reason = "overdue_limit"
	ReasonAlreadyBorrowed Reason = "already_borrowed"
	ReasonNotBorrowed     Reason = "not_borrowed"
	ReasonAlreadyReviewed Reason = "already_reviewed"
)

// Decision is one gate outcome. Allowed decisions carry ReasonNone.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision        { return Decision{Allowed: true} }
func deny(r Reason) Decision { return Decision{Allowed: false, Reason: r} }

// HasOverdue reports whether any rental in the slice is overdue at now.
// A single overdue rental locks the whole account, not just the late book.
func HasOverdue(rentals []*model.Rental, now time.Time) bool {
	for _, r := range rentals {
		if r.IsOverdue(now) {
			return true
		}
	}
	return false
}

// CanBorrow gates starting a new rental of bookID. Overdue lockout is
// checked before the per-book duplicate rule so a locked account always
// sees the same reason regardless of which book it asks about.
func CanBorrow(rentals []*model.Rental, bookID uuid.UUID, now time.Time) Decision {
	if HasOverdue(rentals, now) {
		return deny(ReasonOverdueLimit)
	}
	for _, r := range rentals {
		if r.BookID == bookID && !r.Status.IsTerminal() {
			return deny(ReasonAlreadyBorrowed)
		}
	}
	return allow()
}

// CanReview gates submitting a review of bookID. hasReview is whether a
// review by this user for this book already exists. Check order is
// fixed: duplicate review, then completed-rental requirement, then the
// overdue lockout.
func CanReview(rentals []*model.Rental, bookID uuid.UUID, hasReview bool, now time.Time) Decision {
	if hasReview {
		return deny(ReasonAlreadyReviewed)
	}
	if !hasReturned(rentals, bookID) {
		return deny(ReasonNotBorrowed)
	}
	if HasOverdue(rentals, now) {
		return deny(ReasonOverdueLimit)
	}
	return allow()
}

func hasReturned(rentals []*model.Rental, bookID uuid.UUID) bool {
	for _, r := range rentals {
		if r.BookID == bookID && r.Status == model.StatusReturned {
			return true
		}
	}
	return false
}

// CurrentForBook returns the user's non-terminal rental of bookID, or
// nil. At most one can exist; the ledger enforces that with a partial
// unique index.
func CurrentForBook(rentals []*model.Rental, bookID uuid.UUID) *model.Rental {
	for _, r := range rentals {
		if r.BookID == bookID && !r.Status.IsTerminal() {
			return r
		}
	}
	return nil
}
