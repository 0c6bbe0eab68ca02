// Package scheduler runs recurring maintenance jobs on cron schedules.
// Jobs are not executed in-process: each tick enqueues a task on the
// queue so that retries, timeouts, and visibility follow the same path
// as manually triggered runs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/config"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/tasks"
)

// MaintenanceScheduler enqueues the overdue scan and session cleanup
// tasks on their configured cron schedules.
type MaintenanceScheduler struct {
	client *tasks.Client
	config config.Scheduler

	cron      *cron.Cron
	overdueID cron.EntryID
	sessionID cron.EntryID

	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewMaintenanceScheduler creates a new scheduler instance.
func NewMaintenanceScheduler(client *tasks.Client, cfg config.Scheduler) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		client: client,
		config: cfg,
		cron:   cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// ValidateCronSchedule checks that a schedule is a valid 5-field cron expression.
func ValidateCronSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	return err
}

// Start begins the scheduler if it is enabled in the configuration.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("Maintenance scheduler: disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.config.OverdueSchedule); err != nil {
		return fmt.Errorf("invalid overdue schedule '%s': %w", s.config.OverdueSchedule, err)
	}
	if err := ValidateCronSchedule(s.config.SessionSchedule); err != nil {
		return fmt.Errorf("invalid session cleanup schedule '%s': %w", s.config.SessionSchedule, err)
	}

	overdueID, err := s.cron.AddFunc(s.config.OverdueSchedule, func() {
		s.enqueueOverdueScan()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule overdue scan: %w", err)
	}
	s.overdueID = overdueID

	sessionID, err := s.cron.AddFunc(s.config.SessionSchedule, func() {
		s.enqueueSessionCleanup()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule session cleanup: %w", err)
	}
	s.sessionID = sessionID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Maintenance scheduler: started (overdue scan '%s', session cleanup '%s')",
		s.config.OverdueSchedule, s.config.SessionSchedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs to complete.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		// Release the watcher goroutine started in Start.
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Maintenance scheduler: stopped")
}

// RunOverdueScanNow enqueues an overdue scan immediately.
func (s *MaintenanceScheduler) RunOverdueScanNow() {
	s.enqueueOverdueScan()
}

// IsRunning returns whether the scheduler is active.
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextOverdueScan returns when the next overdue scan will be enqueued.
func (s *MaintenanceScheduler) NextOverdueScan() *time.Time {
	return s.nextRun(s.overdueID)
}

// NextSessionCleanup returns when the next session cleanup will be enqueued.
func (s *MaintenanceScheduler) NextSessionCleanup() *time.Time {
	return s.nextRun(s.sessionID)
}

func (s *MaintenanceScheduler) nextRun(id cron.EntryID) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == id {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *MaintenanceScheduler) enqueueOverdueScan() {
	_, err := s.client.Add(tasks.OverdueScanTask{}).Save()
	if err != nil {
		log.Printf("Maintenance scheduler: failed to enqueue overdue scan: %v", err)
		return
	}
	log.Printf("Maintenance scheduler: enqueued overdue scan")
}

func (s *MaintenanceScheduler) enqueueSessionCleanup() {
	_, err := s.client.Add(tasks.CleanupSessionsTask{}).Save()
	if err != nil {
		log.Printf("Maintenance scheduler: failed to enqueue session cleanup: %v", err)
		return
	}
	log.Printf("Maintenance scheduler: enqueued session cleanup")
}
