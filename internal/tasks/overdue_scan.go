package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// OverdueNoticeWriter records overdue notices for open borrows past due.
type OverdueNoticeWriter interface {
	RecordOverdueNotices(asOf time.Time) (created int, err error)
}

// OverdueScanTask walks open borrows and records one overdue notice per
// overdue borrow per day. Re-running on the same day is a no-op.
type OverdueScanTask struct {
	AsOf string `json:"as_of,omitempty"` // YYYY-MM-DD, defaults to today
}

// Config returns the queue configuration for overdue scans.
func (t OverdueScanTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "overdue_scan",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// OverdueScanProcessor creates a processor function for OverdueScanTask.
func OverdueScanProcessor(writer OverdueNoticeWriter) backlite.QueueProcessor[OverdueScanTask] {
	return func(ctx context.Context, task OverdueScanTask) error {
		if writer == nil {
			return fmt.Errorf("overdue notice writer not configured")
		}

		asOf := time.Now()
		if task.AsOf != "" {
			parsed, err := time.Parse("2006-01-02", task.AsOf)
			if err != nil {
				return fmt.Errorf("invalid as_of date %q: %w", task.AsOf, err)
			}
			asOf = parsed
		}

		created, err := writer.RecordOverdueNotices(asOf)
		if err != nil {
			return fmt.Errorf("overdue scan: %w", err)
		}

		log.Printf("[TASK] Overdue scan recorded %d notice(s)", created)
		return nil
	}
}

// NewOverdueScanQueue creates a backlite queue for overdue scans.
func NewOverdueScanQueue(writer OverdueNoticeWriter) backlite.Queue {
	return backlite.NewQueue(OverdueScanProcessor(writer))
}
