package main

import (
	"log"
	"os"
)

// WorkerConfig holds the worker-process settings. Business constants
// live in the shared container config; this only covers the queue.
type WorkerConfig struct {
	RedisAddr         string
	ReconcileSchedule string
}

func loadWorkerConfig() *WorkerConfig {
	cfg := &WorkerConfig{
		RedisAddr:         getEnvVariable("REDIS_HOST", "localhost:6379"),
		ReconcileSchedule: getEnvVariable("RECONCILE_SCHEDULE", "@every 5m"),
	}

	log.Printf("[Config] Redis: %s, Reconcile: %s", cfg.RedisAddr, cfg.ReconcileSchedule)
	return cfg
}

func getEnvVariable(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
