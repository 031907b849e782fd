package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/duobook/studio/internal/library"
)

// CheckAvailabilityTask pings one source's upstream and records the result
// in the registry's availability view. The scheduler enqueues one per
// pingable source each sweep.
type CheckAvailabilityTask struct {
	SourceID string `json:"source_id"`
}

func (t CheckAvailabilityTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "check_availability",
		MaxAttempts: 1, // the next sweep is the retry
		Backoff:     time.Minute,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   6 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CheckAvailabilityProcessor creates a processor function for
// CheckAvailabilityTask. A failed ping marks the source unavailable and
// still completes the task; only a misconfigured task errors.
func CheckAvailabilityProcessor(registry *library.Registry) backlite.QueueProcessor[CheckAvailabilityTask] {
	return func(ctx context.Context, task CheckAvailabilityTask) error {
		entry, ok := registry.Get(task.SourceID)
		if !ok {
			return fmt.Errorf("unknown source %q", task.SourceID)
		}

		pinger, ok := entry.Adapter.(library.Pinger)
		if !ok {
			// Sources that cannot be pinged stay in the available view.
			return nil
		}

		err := pinger.Ping(ctx)
		registry.SetAvailable(task.SourceID, err == nil)
		if err != nil {
			log.Printf("[TASK] Source %s is unavailable: %v", task.SourceID, err)
		}
		return nil
	}
}

// NewCheckAvailabilityQueue creates a backlite queue for availability checks.
func NewCheckAvailabilityQueue(registry *library.Registry) backlite.Queue {
	return backlite.NewQueue(CheckAvailabilityProcessor(registry))
}
