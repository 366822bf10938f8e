package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"biblioconnect-backend/internal/domains/notification/model"
	rentalrepo "biblioconnect-backend/internal/domains/rental/repository"
)

type NotificationService interface {
	// ForUser derives the user's current notifications from the ledger
	ForUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
}

type notificationService struct {
	rentals        rentalrepo.Repository
	upcomingWindow time.Duration

	now func() time.Time
}

func NewNotificationService(rentals rentalrepo.Repository, upcomingWindow time.Duration) NotificationService {
	return &notificationService{
		rentals:        rentals,
		upcomingWindow: upcomingWindow,
		now:            time.Now,
	}
}

func (s *notificationService) ForUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	rentals, err := s.rentals.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return model.Derive(rentals, s.now(), s.upcomingWindow), nil
}
