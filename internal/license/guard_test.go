package license

import (
	"testing"

	"github.com/duobook/studio/internal/entities"
	"github.com/stretchr/testify/assert"
)

var (
	safeInfo = entities.LicenseInfo{Type: entities.LicenseCommercialSafe, Name: "Public Domain"}
	attrInfo = entities.LicenseInfo{
		Type:            entities.LicenseAttribution,
		Name:            "CC BY-SA 4.0",
		URL:             "https://creativecommons.org/licenses/by-sa/4.0/",
		AttributionText: "Text from Wikipedia, CC BY-SA 4.0",
	}
	gatedInfo = entities.LicenseInfo{
		Type:        entities.LicensePersonalOnly,
		Name:        "Trademarked Content",
		WarningText: "This content is trademarked and may only be used in personal projects.",
	}
)

func TestPredicates(t *testing.T) {
	assert.True(t, IsCommercialSafe(safeInfo))
	assert.False(t, IsCommercialSafe(attrInfo))

	assert.True(t, RequiresAttribution(attrInfo))
	assert.False(t, RequiresAttribution(gatedInfo))

	assert.True(t, IsPersonalOnly(gatedInfo))
	assert.False(t, IsPersonalOnly(safeInfo))
}

func TestWarningFor(t *testing.T) {
	assert.Equal(t, gatedInfo.WarningText, WarningFor(gatedInfo))
	assert.Empty(t, WarningFor(safeInfo))
	assert.Empty(t, WarningFor(attrInfo))
}

func TestAcknowledgmentGate(t *testing.T) {
	var ack Acknowledgment

	// Ungated tiers pass without acknowledgment.
	assert.NoError(t, ack.Check(safeInfo))
	assert.NoError(t, ack.Check(attrInfo))

	// Personal-only blocks until given, and is single-use.
	assert.ErrorIs(t, ack.Check(gatedInfo), ErrAcknowledgmentRequired)

	ack.Give()
	assert.NoError(t, ack.Check(gatedInfo))

	ack.Reset()
	assert.ErrorIs(t, ack.Check(gatedInfo), ErrAcknowledgmentRequired)
}

func TestBuildCredits(t *testing.T) {
	credits := BuildCredits("Wikipedia", attrInfo, "https://en.wikipedia.org")
	assert.NotNil(t, credits)
	assert.NotEmpty(t, credits.ID)
	assert.False(t, credits.GeneratedAt.IsZero())
	assert.Len(t, credits.Credits, 1)
	assert.Equal(t, "Wikipedia", credits.Credits[0].Name)
	assert.Equal(t, attrInfo.AttributionText, credits.Credits[0].AttributionText)
	assert.Equal(t, attrInfo.URL, credits.Credits[0].URL)

	assert.Nil(t, BuildCredits("Gutenberg", safeInfo, ""))
	assert.Nil(t, BuildCredits("PokeAPI", gatedInfo, ""))
}

func TestAttach(t *testing.T) {
	content := &entities.IngestedContent{
		Title: "Cats",
		Meta:  entities.ContentMeta{Source: "wikipedia", License: attrInfo},
	}
	Attach(content)
	assert.NotNil(t, content.Credits)

	// Credits wrongly set by an adapter on a safe source are stripped.
	safe := &entities.IngestedContent{
		Title:   "Genesis",
		Meta:    entities.ContentMeta{Source: "bible-api", License: safeInfo},
		Credits: content.Credits,
	}
	Attach(safe)
	assert.Nil(t, safe.Credits)
}
