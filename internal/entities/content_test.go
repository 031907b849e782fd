package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validContent() *IngestedContent {
	return &IngestedContent{
		Title:      "Genesis 1",
		SourceLang: "en",
		Layout:     LayoutBook,
		Pages: []IngestedPage{
			{
				Title: "Genesis 1",
				Lines: []IngestedLine{
					{ID: "h1", Type: LineTypeHeading, L1: "Genesis 1"},
					{ID: "v1", Type: LineTypeText, L1: "In the beginning..."},
				},
			},
		},
		Meta: ContentMeta{
			Source:       "bible-api",
			PublicDomain: true,
			FetchedAt:    time.Now(),
			License:      LicenseInfo{Type: LicenseCommercialSafe, Name: "Public Domain"},
		},
	}
}

func TestContentValidateOK(t *testing.T) {
	assert.NoError(t, validContent().Validate())
}

func TestContentValidateStructure(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*IngestedContent)
	}{
		{"no pages", func(c *IngestedContent) { c.Pages = nil }},
		{"no lines", func(c *IngestedContent) { c.Pages[0].Lines = nil }},
		{"empty line id", func(c *IngestedContent) { c.Pages[0].Lines[1].ID = "" }},
		{"duplicate line id", func(c *IngestedContent) { c.Pages[0].Lines[1].ID = "h1" }},
		{"separator with text", func(c *IngestedContent) {
			c.Pages[0].Lines = append(c.Pages[0].Lines, IngestedLine{ID: "s1", Type: LineTypeSeparator, L1: "---"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validContent()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestContentValidateLicenseConsistency(t *testing.T) {
	// Attribution tier requires credits on the content.
	c := validContent()
	c.Meta.License = LicenseInfo{
		Type:            LicenseAttribution,
		Name:            "CC BY-SA 4.0",
		AttributionText: "Text from Example",
	}
	assert.Error(t, c.Validate())

	c.Credits = &ProjectCredits{
		ID:          "batch-1",
		Credits:     []Credit{{Name: "Example", License: "CC BY-SA 4.0", AttributionText: "Text from Example"}},
		GeneratedAt: time.Now(),
	}
	assert.NoError(t, c.Validate())

	// And credits on a commercial-safe import are a defect.
	c2 := validContent()
	c2.Credits = c.Credits
	assert.Error(t, c2.Validate())
}

func TestLicenseInfoValidate(t *testing.T) {
	tests := []struct {
		name    string
		license LicenseInfo
		wantErr bool
	}{
		{"commercial safe", LicenseInfo{Type: LicenseCommercialSafe, Name: "Public Domain"}, false},
		{"attribution with text", LicenseInfo{Type: LicenseAttribution, Name: "CC BY", AttributionText: "by X"}, false},
		{"attribution without text", LicenseInfo{Type: LicenseAttribution, Name: "CC BY"}, true},
		{"personal-only with warning", LicenseInfo{Type: LicensePersonalOnly, Name: "Fan", WarningText: "no commercial use"}, false},
		{"personal-only without warning", LicenseInfo{Type: LicensePersonalOnly, Name: "Fan"}, true},
		{"unknown tier", LicenseInfo{Type: "freeware", Name: "X"}, true},
		{"missing name", LicenseInfo{Type: LicenseCommercialSafe}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.license.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWizardConfigSelectors(t *testing.T) {
	assert.True(t, WizardConfig{Book: "John"}.HasReference())
	assert.False(t, WizardConfig{Book: "  "}.HasReference())
	assert.True(t, WizardConfig{SelectedID: "84"}.HasSelection())
	assert.False(t, WizardConfig{}.HasSelection())
}
