package main

import (
	"log"

	"github.com/hibiken/asynq"
)

// asynqScheduler wraps asynq.Scheduler with registration and shutdown
// logging
type asynqScheduler struct {
	*asynq.Scheduler
}

func setupScheduler(cfg *WorkerConfig) *asynqScheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		&asynq.SchedulerOpts{},
	)

	// Periodic jobs
	entryID, err := scheduler.Register(
		cfg.ReconcileSchedule,
		asynq.NewTask(TypeRentalReconcile, nil),
	)
	if err != nil {
		log.Fatalf("[Scheduler] Failed to register reconcile job: %v", err)
	}
	log.Printf("[Scheduler] Registered %s (%s) as %s", TypeRentalReconcile, cfg.ReconcileSchedule, entryID)

	go func() {
		log.Println("[Scheduler] Starting...")
		if err := scheduler.Run(); err != nil {
			log.Fatalf("[Scheduler] Failed: %v", err)
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

// Shutdown gracefully shuts down the scheduler
func (s *asynqScheduler) Shutdown() {
	log.Println("[Scheduler] Shutting down...")
	s.Scheduler.Shutdown()
	log.Println("[Scheduler] ✓ Stopped")
}
