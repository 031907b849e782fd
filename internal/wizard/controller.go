// Package wizard implements the import wizard state machine that sequences
// source selection, license gating, parameter configuration, fetch and
// confirmation for one import attempt.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/duobook/studio/internal/entities"
	"github.com/duobook/studio/internal/library"
	"github.com/duobook/studio/internal/license"
)

type State string

const (
	StatePreview   State = "preview"
	StateConfigure State = "configure"
	StateLoading   State = "loading"
	StateConfirm   State = "confirm"
	StateCreating  State = "creating"
)

var (
	// ErrImportInFlight is returned when Import is called while a fetch is
	// already loading. The wizard is single-flight per instance.
	ErrImportInFlight = errors.New("an import is already in flight")
	// ErrAbandoned is returned to a fetch whose wizard was abandoned while
	// it was loading; its result has been discarded.
	ErrAbandoned = errors.New("wizard was abandoned during the fetch")
)

// InvalidTransitionError reports a trigger fired from a state that does not
// accept it.
type InvalidTransitionError struct {
	From    State
	Trigger string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s from state %q", e.Trigger, e.From)
}

// Result is what a confirmed import hands to the caller: the normalized
// content plus the attribution obligations, if any.
type Result struct {
	Content *entities.IngestedContent `json:"content"`
	Credits *entities.ProjectCredits  `json:"credits,omitempty"`
}

// Controller drives one wizard instance through
// preview → configure → loading → {confirm | configure}, with a terminal
// creating state once the caller accepts. No state is shared between
// instances; abandoning one has no side effects.
type Controller struct {
	adapter   library.Adapter
	previewer library.Previewer // nil when the source has no preview

	mu         sync.Mutex
	state      State
	ack        license.Acknowledgment
	cfg        entities.WizardConfig
	lastError  string
	result     *Result
	generation int
}

// New creates a controller in the preview state for the given source.
func New(adapter library.Adapter) *Controller {
	previewer, _ := adapter.(library.Previewer)
	return &Controller{
		adapter:   adapter,
		previewer: previewer,
		state:     StatePreview,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Config() entities.WizardConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// LastError is the message carried back to configure after a failed fetch.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// Warning returns the gate text a caller must show before a personal-only
// import can be acknowledged. Empty for ungated sources.
func (c *Controller) Warning() string {
	return license.WarningFor(c.adapter.License())
}

// Acknowledge satisfies the personal-only gate for this attempt only.
func (c *Controller) Acknowledge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ack.Give()
}

// Start moves preview → configure. For personal-only sources the transition
// is intercepted by the acknowledgment gate: without acknowledgment the
// state stays preview and ErrAcknowledgmentRequired is returned.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePreview {
		return &InvalidTransitionError{From: c.state, Trigger: "start"}
	}
	if err := c.ack.Check(c.adapter.License()); err != nil {
		return err
	}
	c.state = StateConfigure
	return nil
}

// SetConfig records the user's parameters. Only meaningful while
// configuring.
func (c *Controller) SetConfig(cfg entities.WizardConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateConfigure {
		return &InvalidTransitionError{From: c.state, Trigger: "configure"}
	}
	c.cfg = cfg
	return nil
}

// Import runs the adapter's fetch: configure → loading, then confirm on
// success or back to configure with the error message on failure. The
// entered config is left untouched either way so the user can retry without
// re-entering parameters.
//
// The license gate is re-checked before the adapter is invoked; an
// unacknowledged personal-only flow never reaches the adapter layer.
func (c *Controller) Import(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	if c.state == StateLoading {
		c.mu.Unlock()
		return nil, ErrImportInFlight
	}
	if c.state != StateConfigure {
		from := c.state
		c.mu.Unlock()
		return nil, &InvalidTransitionError{From: from, Trigger: "import"}
	}
	if err := c.ack.Check(c.adapter.License()); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.state = StateLoading
	c.lastError = ""
	gen := c.generation
	cfg := c.cfg
	c.mu.Unlock()

	content, err := c.adapter.Fetch(ctx, cfg)

	c.mu.Lock()
	defer c.mu.Unlock()

	// A fetch resolving after the wizard was abandoned (or reopened) must
	// be discarded, not applied to the new attempt.
	if gen != c.generation {
		return nil, ErrAbandoned
	}

	if err != nil {
		c.state = StateConfigure
		c.lastError = err.Error()
		return nil, err
	}

	license.Attach(content)
	if verr := content.Validate(); verr != nil {
		c.state = StateConfigure
		c.lastError = verr.Error()
		return nil, fmt.Errorf("%s returned malformed content: %w", c.adapter.SourceID(), verr)
	}

	c.state = StateConfirm
	c.result = &Result{Content: content, Credits: content.Credits}
	return c.result, nil
}

// Sample runs the adapter's preview out of band to populate a read-only
// sample panel. It never transitions the wizard and its failure is
// advisory: logged and swallowed, with nil returned.
func (c *Controller) Sample(ctx context.Context) *entities.IngestedContent {
	c.mu.Lock()
	if c.state != StateConfigure || c.previewer == nil {
		c.mu.Unlock()
		return nil
	}
	cfg := c.cfg
	c.mu.Unlock()

	sample, err := c.previewer.Preview(ctx, cfg)
	if err != nil {
		log.Printf("Preview for %s failed (ignored): %v", c.adapter.SourceID(), err)
		return nil
	}
	return sample
}

// Accept moves confirm → creating and hands over the import result. The
// acknowledgment is consumed; a later attempt needs a fresh one.
func (c *Controller) Accept() (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateConfirm {
		return nil, &InvalidTransitionError{From: c.state, Trigger: "accept"}
	}
	c.state = StateCreating
	c.ack.Reset()
	return c.result, nil
}

// Abandon cancels the flow from any state with no side effects: nothing was
// persisted, any in-flight fetch result will be discarded, and the
// acknowledgment is consumed. The controller returns to preview for a fresh
// attempt.
func (c *Controller) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.state = StatePreview
	c.cfg = entities.WizardConfig{}
	c.lastError = ""
	c.result = nil
	c.ack.Reset()
}
