package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"

	rentalService "biblioconnect-backend/internal/domains/rental/service"
	"biblioconnect-backend/pkg/container"
)

// Task types
const (
	TypeRentalReconcile = "rental:reconcile"
)

// HandlerRegistry binds task types to their handlers.
type HandlerRegistry struct {
	rentals rentalService.RentalService
}

func newHandlerRegistry(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{rentals: c.RentalService}
}

func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeRentalReconcile, h.handleRentalReconcile)
}

// handleRentalReconcile backstops lost payment webhooks: it polls the
// gateway for rentals stuck in pending_payment and applies the
// resulting transitions.
func (h *HandlerRegistry) handleRentalReconcile(ctx context.Context, t *asynq.Task) error {
	changed, err := h.rentals.Reconcile(ctx)
	if err != nil {
		return err
	}
	log.Printf("[Reconcile] ✓ Done, %d rental(s) transitioned", changed)
	return nil
}
