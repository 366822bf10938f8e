package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	rentalmodel "biblioconnect-backend/internal/domains/rental/model"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

const window = 5 * 24 * time.Hour

func active(dueInDays int) *rentalmodel.Rental {
	due := now.AddDate(0, 0, dueInDays)
	return &rentalmodel.Rental{
		ID:           uuid.New(),
		Status:       rentalmodel.StatusActive,
		ReturnByDate: &due,
	}
}

func TestDerive(t *testing.T) {
	t.Run("no rentals yields nothing", func(t *testing.T) {
		assert.Empty(t, Derive(nil, now, window))
	})

	t.Run("due beyond the window yields nothing", func(t *testing.T) {
		assert.Empty(t, Derive([]*rentalmodel.Rental{active(6)}, now, window))
	})

	t.Run("window boundary is inclusive", func(t *testing.T) {
		got := Derive([]*rentalmodel.Rental{active(5)}, now, window)
		assert.Equal(t, []Notification{
			{Severity: SeverityWarning, Type: TypeUpcomingReturns, Value: 1},
		}, got)
	})

	t.Run("overdue counts separately from upcoming", func(t *testing.T) {
		rentals := []*rentalmodel.Rental{
			active(1),
			active(4),
			active(-1),
			active(-10),
		}

		got := Derive(rentals, now, window)
		assert.Equal(t, []Notification{
			{Severity: SeverityWarning, Type: TypeUpcomingReturns, Value: 2},
			{Severity: SeverityError, Type: TypeOverdueReturns, Value: 2},
		}, got)
	})

	t.Run("only active rentals count", func(t *testing.T) {
		due := now.AddDate(0, 0, -1)
		rentals := []*rentalmodel.Rental{
			{ID: uuid.New(), Status: rentalmodel.StatusReturned, ReturnByDate: &due},
			{ID: uuid.New(), Status: rentalmodel.StatusPendingPayment},
			{ID: uuid.New(), Status: rentalmodel.StatusCanceled},
		}
		assert.Empty(t, Derive(rentals, now, window))
	})

	t.Run("due exactly now is upcoming, not overdue", func(t *testing.T) {
		got := Derive([]*rentalmodel.Rental{active(0)}, now, window)
		assert.Equal(t, []Notification{
			{Severity: SeverityWarning, Type: TypeUpcomingReturns, Value: 1},
		}, got)
	})
}
