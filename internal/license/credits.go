package license

import (
	"time"

	"github.com/google/uuid"

	"github.com/duobook/studio/internal/entities"
)

// BuildCredits produces the durable attribution payload for an import.
// Returns nil for tiers that carry no attribution obligation, so callers
// can attach the result unconditionally.
func BuildCredits(sourceName string, info entities.LicenseInfo, sourceURL string) *entities.ProjectCredits {
	if !RequiresAttribution(info) {
		return nil
	}

	url := info.URL
	if url == "" {
		url = sourceURL
	}

	return &entities.ProjectCredits{
		ID: uuid.New().String(),
		Credits: []entities.Credit{
			{
				Name:            sourceName,
				License:         info.Name,
				AttributionText: info.AttributionText,
				URL:             url,
			},
		},
		GeneratedAt: time.Now().UTC(),
	}
}

// Attach stamps the credits implied by the content's own license onto it,
// keeping the credits ⇔ attribution-tier invariant intact no matter what
// the adapter set.
func Attach(content *entities.IngestedContent) {
	if content == nil {
		return
	}
	if !RequiresAttribution(content.Meta.License) {
		content.Credits = nil
		return
	}
	if content.Credits == nil {
		content.Credits = BuildCredits(content.Meta.Source, content.Meta.License, content.Meta.SourceURL)
	}
}
