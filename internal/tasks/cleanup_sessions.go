package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// SessionCleaner deletes expired staff session rows.
type SessionCleaner interface {
	DeleteExpiredSessions() (int64, error)
}

// CleanupSessionsTask removes expired staff sessions from the database.
type CleanupSessionsTask struct{}

// Config returns the queue configuration for session cleanup.
func (t CleanupSessionsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_sessions",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupSessionsProcessor creates a processor function for CleanupSessionsTask.
func CleanupSessionsProcessor(cleaner SessionCleaner) backlite.QueueProcessor[CleanupSessionsTask] {
	return func(ctx context.Context, task CleanupSessionsTask) error {
		if cleaner == nil {
			return fmt.Errorf("session cleaner not configured")
		}

		deleted, err := cleaner.DeleteExpiredSessions()
		if err != nil {
			return fmt.Errorf("cleanup sessions: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d expired session(s)", deleted)
		return nil
	}
}

// NewCleanupSessionsQueue creates a backlite queue for session cleanup.
func NewCleanupSessionsQueue(cleaner SessionCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupSessionsProcessor(cleaner))
}
