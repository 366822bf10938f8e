package model

import (
	"time"

	rentalmodel "biblioconnect-backend/internal/domains/rental/model"
)

// Severity orders how the frontend renders a notification.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification types.
const (
	TypeUpcomingReturns = "upcoming_returns"
	TypeOverdueReturns  = "overdue_returns"
)

// Notification is a derived alert about the user's rentals. Nothing is
// stored or pushed; the set is recomputed from the ledger on every read.
type Notification struct {
	Severity Severity `json:"severity"`
	Type     string   `json:"type"`
	Value    int      `json:"value"`
}

// Derive projects a user's rentals into notifications at the given
// instant. upcomingWindow is how far ahead a due date counts as
// "upcoming", inclusive of the boundary. Zero counts are omitted;
// warnings precede errors.
func Derive(rentals []*rentalmodel.Rental, now time.Time, upcomingWindow time.Duration) []Notification {
	upcoming, overdue := 0, 0
	horizon := now.Add(upcomingWindow)

	for _, r := range rentals {
		if r.Status != rentalmodel.StatusActive || r.ReturnByDate == nil {
			continue
		}
		switch {
		case r.IsOverdue(now):
			overdue++
		case !r.ReturnByDate.After(horizon):
			upcoming++
		}
	}

	var out []Notification
	if upcoming > 0 {
		out = append(out, Notification{
			Severity: SeverityWarning,
			Type:     TypeUpcomingReturns,
			Value:    upcoming,
		})
	}
	if overdue > 0 {
		out = append(out, Notification{
			Severity: SeverityError,
			Type:     TypeOverdueReturns,
			Value:    overdue,
		})
	}
	return out
}
