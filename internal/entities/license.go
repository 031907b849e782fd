package entities

import (
	"fmt"
	"time"
)

// LicenseType is the three-tier commercial-safety classification. It is the
// only value downstream commercial-safety tooling may rely on.
type LicenseType string

const (
	// LicenseCommercialSafe content may be used in commercial output with
	// no further obligations.
	LicenseCommercialSafe LicenseType = "commercial-safe"
	// LicenseAttribution content may be used commercially but the
	// attribution text must be durably attached to the project.
	LicenseAttribution LicenseType = "attribution"
	// LicensePersonalOnly content must not appear in commercial output;
	// imports are gated behind an explicit per-attempt acknowledgment.
	LicensePersonalOnly LicenseType = "personal-only"
)

// LicenseInfo is a source's fixed license classification, embedded by each
// adapter. The adapter's embedded value is authoritative; registry views are
// derived from it.
type LicenseInfo struct {
	Type            LicenseType `json:"type"`
	Name            string      `json:"name"`
	URL             string      `json:"url,omitempty"`
	AttributionText string      `json:"attribution_text,omitempty"`
	WarningText     string      `json:"warning_text,omitempty"`
}

// Validate enforces the tier/companion-text invariant: attribution requires
// AttributionText, personal-only requires WarningText. A violation is a
// data-integrity defect, not a user error.
func (l LicenseInfo) Validate() error {
	switch l.Type {
	case LicenseCommercialSafe:
	case LicenseAttribution:
		if l.AttributionText == "" {
			return fmt.Errorf("license %q: attribution tier without attribution text", l.Name)
		}
	case LicensePersonalOnly:
		if l.WarningText == "" {
			return fmt.Errorf("license %q: personal-only tier without warning text", l.Name)
		}
	default:
		return fmt.Errorf("license %q: unknown tier %q", l.Name, l.Type)
	}
	if l.Name == "" {
		return fmt.Errorf("license has no name")
	}
	return nil
}

// Credit is one attribution obligation carried by an imported project.
type Credit struct {
	Name            string `json:"name"`
	License         string `json:"license"`
	AttributionText string `json:"attribution_text"`
	URL             string `json:"url,omitempty"`
}

// ProjectCredits is the durable attribution payload produced for
// attribution-tier imports. The importer must attach it to any project
// created from the import; propagation past the hand-off is its problem.
type ProjectCredits struct {
	ID          string    `json:"id"`
	Credits     []Credit  `json:"credits"`
	GeneratedAt time.Time `json:"generated_at"`
}
