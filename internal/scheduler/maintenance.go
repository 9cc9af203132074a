package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/grocery-share/internal/tasks"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// EnqueueFunc hands a maintenance task to whatever runs it.
type EnqueueFunc func(ctx context.Context, task tasks.StoreMaintenanceTask) error

// MaintenanceConfig controls the periodic store maintenance job.
type MaintenanceConfig struct {
	Enabled             bool
	Schedule            string
	PruneOrphanProducts bool
}

// MaintenanceScheduler periodically enqueues store maintenance.
type MaintenanceScheduler struct {
	config  MaintenanceConfig
	enqueue EnqueueFunc

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

func NewMaintenanceScheduler(config MaintenanceConfig, enqueue EnqueueFunc) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		config:  config,
		enqueue: enqueue,
		cron:    cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler if maintenance is enabled. The scheduler stops
// when ctx is cancelled.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		slog.Info("maintenance scheduler disabled")
		return nil
	}

	if err := ValidateSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		if err := s.RunNow(context.Background()); err != nil {
			slog.Error("scheduled maintenance failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	slog.Info("maintenance scheduler started", "schedule", s.config.Schedule, "next_run", s.cron.Entry(entryID).Next)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job and stops the scheduler.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	slog.Info("maintenance scheduler stopped")
}

// RunNow enqueues maintenance immediately.
func (s *MaintenanceScheduler) RunNow(ctx context.Context) error {
	if s.enqueue == nil {
		return fmt.Errorf("maintenance runner not configured")
	}
	return s.enqueue(ctx, tasks.StoreMaintenanceTask{PruneOrphanProducts: s.config.PruneOrphanProducts})
}

// IsRunning returns whether the scheduler is active
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next maintenance will occur
func (s *MaintenanceScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	next := entry.Next
	return &next
}
