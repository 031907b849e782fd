// Package license holds the classification predicates and the procedural
// gating rules over the three commercial-safety tiers.
package license

import (
	"errors"

	"github.com/duobook/studio/internal/entities"
)

// ErrAcknowledgmentRequired is returned when a personal-only import is
// attempted before the user has acknowledged the warning for this attempt.
var ErrAcknowledgmentRequired = errors.New("personal-only source requires acknowledgment before import")

func IsCommercialSafe(info entities.LicenseInfo) bool {
	return info.Type == entities.LicenseCommercialSafe
}

func RequiresAttribution(info entities.LicenseInfo) bool {
	return info.Type == entities.LicenseAttribution
}

func IsPersonalOnly(info entities.LicenseInfo) bool {
	return info.Type == entities.LicensePersonalOnly
}

// WarningFor returns the human-facing text shown before a gated import.
// Empty for tiers that carry no gate.
func WarningFor(info entities.LicenseInfo) string {
	if IsPersonalOnly(info) {
		return info.WarningText
	}
	return ""
}

// Acknowledgment is the single-use gate for personal-only imports. The user
// sets it per import attempt; it is consumed when the flow completes or is
// abandoned, never persisted as an opt-out.
type Acknowledgment struct {
	given bool
}

// Give records the user's acknowledgment for the current attempt.
func (a *Acknowledgment) Give() { a.given = true }

// Check returns nil when the license does not gate, or when the gate has
// been satisfied for this attempt.
func (a *Acknowledgment) Check(info entities.LicenseInfo) error {
	if !IsPersonalOnly(info) {
		return nil
	}
	if !a.given {
		return ErrAcknowledgmentRequired
	}
	return nil
}

// Reset consumes the acknowledgment. Called after every completed or
// cancelled flow.
func (a *Acknowledgment) Reset() { a.given = false }
