package http

import (
	"github.com/gin-gonic/gin"

	"github.com/duobook/studio/internal/audit"
	"github.com/duobook/studio/internal/database"
	"github.com/duobook/studio/internal/library"
)

// RouterConfig carries every dependency the router needs, so tests can
// assemble a router from stubs without touching the entrypoint.
type RouterConfig struct {
	Registry *library.Registry
	Database *database.Database
	Auditor  *audit.Service
	Version  string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	sources := NewSourcesController(cfg.Registry)

	// The Auditor interface is satisfied by a nil *audit.Service only via an
	// explicit check; a typed nil in the interface would dodge the nil
	// guards in the wizard controller.
	var auditor Auditor
	if cfg.Auditor != nil {
		auditor = cfg.Auditor
	}
	wizards := NewWizardController(cfg.Registry, auditor)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Source catalog endpoints
	router.GET("/api/sources", sources.ListSources)
	router.GET("/api/sources/:id", sources.GetSource)
	router.GET("/api/sources/:id/search", sources.SearchSource)

	// Wizard session endpoints
	router.POST("/api/wizard", wizards.CreateSession)
	router.GET("/api/wizard/:id", wizards.GetSession)
	router.POST("/api/wizard/:id/acknowledge", wizards.Acknowledge)
	router.POST("/api/wizard/:id/start", wizards.Start)
	router.PUT("/api/wizard/:id/config", wizards.Configure)
	router.POST("/api/wizard/:id/import", wizards.Import)
	router.POST("/api/wizard/:id/sample", wizards.Sample)
	router.POST("/api/wizard/:id/accept", wizards.Accept)
	router.DELETE("/api/wizard/:id", wizards.Abandon)

	// Provenance log
	if cfg.Auditor != nil {
		importsController := NewImportsController(cfg.Auditor)
		router.GET("/api/imports", importsController.History)
	}

	return router
}
