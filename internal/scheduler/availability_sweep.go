// Package scheduler drives periodic maintenance: the source availability
// sweep and provenance retention cleanup. The cron entries only enqueue
// tasks; the actual work runs on the task queue workers.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/duobook/studio/internal/library"
	"github.com/duobook/studio/internal/tasks"
)

// Config holds the sweep schedules. Schedules use standard 5-field cron
// expressions.
type Config struct {
	// AvailabilitySchedule is how often sources are pinged. Empty disables
	// the sweep.
	AvailabilitySchedule string
	// CleanupSchedule is how often old provenance is purged. Empty disables
	// cleanup.
	CleanupSchedule string
	// RetentionDays is how long provenance rows are kept.
	RetentionDays int
}

// AvailabilitySweepScheduler enqueues one availability check per pingable
// source on a cron schedule, plus a provenance cleanup task.
type AvailabilitySweepScheduler struct {
	registry   *library.Registry
	taskClient *tasks.Client
	config     Config

	cron       *cron.Cron
	mu         sync.RWMutex
	isRunning  bool
	isSweeping bool
	cancelFunc context.CancelFunc
}

func NewAvailabilitySweepScheduler(registry *library.Registry, taskClient *tasks.Client, cfg Config) *AvailabilitySweepScheduler {
	return &AvailabilitySweepScheduler{
		registry:   registry,
		taskClient: taskClient,
		config:     cfg,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler. With no schedules configured it is a no-op.
func (s *AvailabilitySweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.taskClient == nil {
		log.Printf("Availability sweep: task queue not configured, scheduler disabled")
		return nil
	}

	scheduled := 0
	if s.config.AvailabilitySchedule != "" {
		if err := ValidateCronSchedule(s.config.AvailabilitySchedule); err != nil {
			return fmt.Errorf("invalid availability schedule %q: %w", s.config.AvailabilitySchedule, err)
		}
		if _, err := s.cron.AddFunc(s.config.AvailabilitySchedule, s.runSweep); err != nil {
			return fmt.Errorf("failed to schedule availability sweep: %w", err)
		}
		scheduled++
	}
	if s.config.CleanupSchedule != "" {
		if err := ValidateCronSchedule(s.config.CleanupSchedule); err != nil {
			return fmt.Errorf("invalid cleanup schedule %q: %w", s.config.CleanupSchedule, err)
		}
		if _, err := s.cron.AddFunc(s.config.CleanupSchedule, s.runCleanup); err != nil {
			return fmt.Errorf("failed to schedule provenance cleanup: %w", err)
		}
		scheduled++
	}
	if scheduled == 0 {
		log.Printf("Availability sweep: no schedules configured, scheduler disabled")
		return nil
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true
	log.Printf("Availability sweep: started (availability %q, cleanup %q)",
		s.config.AvailabilitySchedule, s.config.CleanupSchedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *AvailabilitySweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Availability sweep: stopped")
}

// RunNow triggers an immediate sweep.
func (s *AvailabilitySweepScheduler) RunNow() {
	s.runSweep()
}

// IsRunning returns whether the scheduler is active.
func (s *AvailabilitySweepScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// runSweep enqueues one check per pingable source.
func (s *AvailabilitySweepScheduler) runSweep() {
	s.mu.Lock()
	if s.isSweeping {
		s.mu.Unlock()
		log.Printf("Availability sweep: skipped (already sweeping)")
		return
	}
	s.isSweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSweeping = false
		s.mu.Unlock()
	}()

	enqueued := 0
	for _, id := range s.registry.List() {
		entry, ok := s.registry.Get(id)
		if !ok || !entry.Capabilities.Ping {
			continue
		}
		if _, err := s.taskClient.Add(tasks.CheckAvailabilityTask{SourceID: id}).Save(); err != nil {
			log.Printf("Availability sweep: failed to enqueue check for %s: %v", id, err)
			continue
		}
		enqueued++
	}
	log.Printf("Availability sweep: enqueued %d checks", enqueued)
}

func (s *AvailabilitySweepScheduler) runCleanup() {
	task := tasks.CleanupImportRecordsTask{RetentionDays: s.config.RetentionDays}
	if _, err := s.taskClient.Add(task).Save(); err != nil {
		log.Printf("Provenance cleanup: failed to enqueue: %v", err)
	}
}

// ValidateCronSchedule checks a 5-field cron expression.
func ValidateCronSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	return err
}

// NextRunTime returns when a schedule next fires.
func NextRunTime(schedule string) (time.Time, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	spec, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return spec.Next(time.Now()), nil
}
