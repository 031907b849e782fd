package http

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/duobook/studio/internal/entities"
	"github.com/duobook/studio/internal/library"
	"github.com/duobook/studio/internal/license"
	"github.com/duobook/studio/internal/wizard"
)

// Auditor records import provenance. Implemented by audit.Service; nil
// disables recording.
type Auditor interface {
	RecordAsync(sourceID string, tier entities.LicenseType, content *entities.IngestedContent, cfg entities.WizardConfig, duration time.Duration, importErr error)
}

type wizardSession struct {
	id         string
	sourceID   string
	controller *wizard.Controller
	createdAt  time.Time
}

// WizardController exposes the import wizard over HTTP. Each session wraps
// one wizard.Controller; sessions live in memory only, an abandoned or
// accepted session leaves nothing behind.
type WizardController struct {
	registry *library.Registry
	auditor  Auditor

	mu       sync.RWMutex
	sessions map[string]*wizardSession
}

func NewWizardController(registry *library.Registry, auditor Auditor) *WizardController {
	return &WizardController{
		registry: registry,
		auditor:  auditor,
		sessions: make(map[string]*wizardSession),
	}
}

type createSessionRequest struct {
	SourceID string `json:"source_id" binding:"required"`
}

type sessionResponse struct {
	SessionID string                `json:"session_id"`
	SourceID  string                `json:"source_id"`
	State     wizard.State          `json:"state"`
	Config    entities.WizardConfig `json:"config"`
	LastError string                `json:"last_error,omitempty"`
	Warning   string                `json:"warning,omitempty"`
}

// CreateSession opens a wizard for one source in the preview state.
func (w *WizardController) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "source_id is required")
		return
	}

	entry, ok := w.registry.Get(req.SourceID)
	if !ok {
		respondNotFound(c, "source")
		return
	}

	session := &wizardSession{
		id:         uuid.New().String(),
		sourceID:   req.SourceID,
		controller: wizard.New(entry.Adapter),
		createdAt:  time.Now(),
	}

	w.mu.Lock()
	w.sessions[session.id] = session
	w.mu.Unlock()

	respondCreated(c, w.sessionBody(session))
}

// GetSession reports the wizard's current state.
func (w *WizardController) GetSession(c *gin.Context) {
	session, ok := w.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, w.sessionBody(session))
}

// Acknowledge satisfies the personal-only gate for this attempt.
func (w *WizardController) Acknowledge(c *gin.Context) {
	session, ok := w.session(c)
	if !ok {
		return
	}
	session.controller.Acknowledge()
	respondSuccess(c, "acknowledged")
}

// Start moves the wizard from preview to configure.
func (w *WizardController) Start(c *gin.Context) {
	session, ok := w.session(c)
	if !ok {
		return
	}
	if err := session.controller.Start(); err != nil {
		w.respondWizardError(c, session, err)
		return
	}
	c.JSON(http.StatusOK, w.sessionBody(session))
}

// Configure records the user's import parameters.
func (w *WizardController) Configure(c *gin.Context) {
	session, ok := w.session(c)
	if !ok {
		return
	}

	var cfg entities.WizardConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		respondBadRequest(c, "invalid wizard config")
		return
	}
	if err := session.controller.SetConfig(cfg); err != nil {
		w.respondWizardError(c, session, err)
		return
	}
	c.JSON(http.StatusOK, w.sessionBody(session))
}

// Import runs the fetch and, on success, moves the wizard to confirm. The
// attempt is recorded in the provenance log whether it succeeds or not.
func (w *WizardController) Import(c *gin.Context) {
	session, ok := w.session(c)
	if !ok {
		return
	}

	tier := w.sessionTier(session)
	cfg := session.controller.Config()

	started := time.Now()
	result, err := session.controller.Import(c.Request.Context())
	duration := time.Since(started)

	if err != nil {
		// Gate and transition failures never reached the adapter, so they
		// are not import attempts and are not recorded.
		var transitionErr *wizard.InvalidTransitionError
		if errors.Is(err, license.ErrAcknowledgmentRequired) ||
			errors.Is(err, wizard.ErrImportInFlight) ||
			errors.Is(err, wizard.ErrAbandoned) ||
			errors.As(err, &transitionErr) {
			w.respondWizardError(c, session, err)
			return
		}

		if w.auditor != nil {
			w.auditor.RecordAsync(session.sourceID, tier, nil, cfg, duration, err)
		}
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error(), Code: "fetch_failed"})
		return
	}

	if w.auditor != nil {
		w.auditor.RecordAsync(session.sourceID, tier, result.Content, cfg, duration, nil)
	}
	c.JSON(http.StatusOK, gin.H{
		"state":  session.controller.State(),
		"result": result,
	})
}

// Sample returns an out-of-band preview, or null when the source cannot
// preview or the preview failed.
func (w *WizardController) Sample(c *gin.Context) {
	session, ok := w.session(c)
	if !ok {
		return
	}
	sample := session.controller.Sample(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"sample": sample})
}

// Accept finalizes the import and hands over the result. The session is
// closed; a new import starts a fresh wizard.
func (w *WizardController) Accept(c *gin.Context) {
	session, ok := w.session(c)
	if !ok {
		return
	}

	result, err := session.controller.Accept()
	if err != nil {
		w.respondWizardError(c, session, err)
		return
	}

	w.mu.Lock()
	delete(w.sessions, session.id)
	w.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// Abandon cancels the wizard with no side effects and closes the session.
func (w *WizardController) Abandon(c *gin.Context) {
	session, ok := w.session(c)
	if !ok {
		return
	}

	session.controller.Abandon()

	w.mu.Lock()
	delete(w.sessions, session.id)
	w.mu.Unlock()

	respondSuccess(c, "wizard abandoned")
}

func (w *WizardController) session(c *gin.Context) (*wizardSession, bool) {
	w.mu.RLock()
	session, ok := w.sessions[c.Param("id")]
	w.mu.RUnlock()
	if !ok {
		respondNotFound(c, "wizard session")
		return nil, false
	}
	return session, true
}

func (w *WizardController) sessionBody(session *wizardSession) sessionResponse {
	return sessionResponse{
		SessionID: session.id,
		SourceID:  session.sourceID,
		State:     session.controller.State(),
		Config:    session.controller.Config(),
		LastError: session.controller.LastError(),
		Warning:   session.controller.Warning(),
	}
}

func (w *WizardController) sessionTier(session *wizardSession) entities.LicenseType {
	entry, ok := w.registry.Get(session.sourceID)
	if !ok {
		return ""
	}
	return entry.Adapter.License().Type
}

func (w *WizardController) respondWizardError(c *gin.Context, session *wizardSession, err error) {
	switch {
	case errors.Is(err, license.ErrAcknowledgmentRequired):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error: err.Error(),
			Code:  "acknowledgment_required",
		})
	case errors.Is(err, wizard.ErrImportInFlight):
		respondConflict(c, err.Error())
	case errors.Is(err, wizard.ErrAbandoned):
		c.JSON(http.StatusGone, ErrorResponse{Error: err.Error()})
	default:
		var transitionErr *wizard.InvalidTransitionError
		if errors.As(err, &transitionErr) {
			respondConflict(c, err.Error())
			return
		}
		respondInternalError(c, err, "wizard "+session.id)
	}
}
