package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duobook/studio/internal/entities"
	"github.com/duobook/studio/internal/library"
	"github.com/duobook/studio/internal/tasks"
)

type pingableAdapter struct {
	id string
}

func (p *pingableAdapter) SourceID() string    { return p.id }
func (p *pingableAdapter) DisplayName() string { return p.id }
func (p *pingableAdapter) License() entities.LicenseInfo {
	return entities.LicenseInfo{Type: entities.LicenseCommercialSafe, Name: "Public Domain"}
}
func (p *pingableAdapter) Fetch(context.Context, entities.WizardConfig) (*entities.IngestedContent, error) {
	return nil, nil
}
func (p *pingableAdapter) Ping(context.Context) error { return nil }

func TestValidateCronSchedule(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("*/15 * * * *"))
	assert.NoError(t, ValidateCronSchedule("0 3 * * *"))
	assert.Error(t, ValidateCronSchedule("not a schedule"))
	assert.Error(t, ValidateCronSchedule("* * * *"))
}

func TestNextRunTime(t *testing.T) {
	next, err := NextRunTime("*/5 * * * *")
	require.NoError(t, err)
	assert.True(t, next.After(time.Now()))
}

func TestSweepEnqueuesChecksForPingableSources(t *testing.T) {
	cfg := tasks.DefaultConfig()
	cfg.Workers = 1

	client, err := tasks.NewClient(filepath.Join(t.TempDir(), "studio.db"), cfg)
	require.NoError(t, err)
	defer client.Close()

	registry := library.NewRegistry()
	require.NoError(t, registry.Register(&pingableAdapter{id: "alpha"}))
	require.NoError(t, registry.Register(&pingableAdapter{id: "beta"}))

	executed := make(chan string, 2)
	client.Register(backlite.NewQueue(func(ctx context.Context, task tasks.CheckAvailabilityTask) error {
		executed <- task.SourceID
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	scheduler := NewAvailabilitySweepScheduler(registry, client, Config{})
	scheduler.RunNow()

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-executed:
			got[id] = true
		case <-time.After(5 * time.Second):
			t.Fatal("availability checks were not executed within timeout")
		}
	}
	assert.True(t, got["alpha"])
	assert.True(t, got["beta"])
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	cfg := tasks.DefaultConfig()
	cfg.Workers = 1

	client, err := tasks.NewClient(filepath.Join(t.TempDir(), "studio.db"), cfg)
	require.NoError(t, err)
	defer client.Close()

	scheduler := NewAvailabilitySweepScheduler(library.NewRegistry(), client, Config{
		AvailabilitySchedule: "bogus",
	})
	assert.Error(t, scheduler.Start(context.Background()))
}

func TestStartWithoutSchedulesIsNoop(t *testing.T) {
	cfg := tasks.DefaultConfig()
	cfg.Workers = 1

	client, err := tasks.NewClient(filepath.Join(t.TempDir(), "studio.db"), cfg)
	require.NoError(t, err)
	defer client.Close()

	scheduler := NewAvailabilitySweepScheduler(library.NewRegistry(), client, Config{})
	require.NoError(t, scheduler.Start(context.Background()))
	assert.False(t, scheduler.IsRunning())
}

func TestStartAndStop(t *testing.T) {
	cfg := tasks.DefaultConfig()
	cfg.Workers = 1

	client, err := tasks.NewClient(filepath.Join(t.TempDir(), "studio.db"), cfg)
	require.NoError(t, err)
	defer client.Close()

	scheduler := NewAvailabilitySweepScheduler(library.NewRegistry(), client, Config{
		AvailabilitySchedule: "*/15 * * * *",
		CleanupSchedule:      "0 3 * * *",
		RetentionDays:        30,
	})
	require.NoError(t, scheduler.Start(context.Background()))
	assert.True(t, scheduler.IsRunning())

	scheduler.Stop()
	assert.False(t, scheduler.IsRunning())
}
