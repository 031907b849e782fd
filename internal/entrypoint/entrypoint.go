package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/duobook/studio/internal/audit"
	"github.com/duobook/studio/internal/config"
	"github.com/duobook/studio/internal/database"
	"github.com/duobook/studio/internal/database/imports"
	http_controllers "github.com/duobook/studio/internal/http"
	"github.com/duobook/studio/internal/library"
	"github.com/duobook/studio/internal/scheduler"
	"github.com/duobook/studio/internal/sources"
	"github.com/duobook/studio/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background workers before the listener so in-flight imports can
	// still write their provenance.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Duobook Studio v%s", version)

	// Initialize provenance database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	auditService := audit.NewService(imports.NewRepository(db.DB))

	// Build the compiled-in source catalog
	registry := sources.Catalog(library.DefaultRand())
	log.Printf("Registered %d content sources", len(registry.List()))

	// Initialize task queue and maintenance scheduler if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var sweep *scheduler.AvailabilitySweepScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewCheckAvailabilityQueue(registry),
			tasks.NewCleanupImportRecordsQueue(auditService),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		sweep = scheduler.NewAvailabilitySweepScheduler(registry, taskClient, scheduler.Config{
			AvailabilitySchedule: cfg.Sweep.AvailabilitySchedule,
			CleanupSchedule:      cfg.Sweep.CleanupSchedule,
			RetentionDays:        cfg.Audit.RetentionDays,
		})
		if err := sweep.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start maintenance scheduler: %v", err)
		}
		// Seed the availability view instead of waiting for the first tick.
		sweep.RunNow()
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Registry: registry,
		Database: db,
		Auditor:  auditService,
		Version:  version,
	})

	onShutdown := func(ctx context.Context) {
		if sweep != nil {
			sweep.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
