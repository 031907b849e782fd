package entities

import "strings"

// WizardConfig is the union of all adapter parameters collected by the
// import wizard. Each adapter reads only the subset relevant to it and
// ignores the rest; unknown fields are never an error.
type WizardConfig struct {
	// SelectedID fetches one specific record by source-native id.
	SelectedID string `json:"selected_id,omitempty"`
	// SearchQuery is a free-text or author/region/category filter,
	// interpreted per adapter.
	SearchQuery string `json:"search_query,omitempty"`

	// Canonical reference locator for scripture-like sources.
	Book    string `json:"book,omitempty"`
	Chapter int    `json:"chapter,omitempty"`
	Verse   int    `json:"verse,omitempty"`

	// Range bounds for long-form works.
	StartChapter int  `json:"start_chapter,omitempty"`
	EndChapter   int  `json:"end_chapter,omitempty"`
	ImportRange  bool `json:"import_range,omitempty"`

	// Date selects a dated record (historical newspapers, picture-of-day).
	Date string `json:"date,omitempty"`

	// RandomCount is the number of items for "surprise me" imports.
	RandomCount int `json:"random_count,omitempty"`

	// Layout overrides the adapter's default presentation archetype.
	Layout Layout `json:"layout,omitempty"`

	// Utility toggles.
	IncludeImages bool `json:"include_images,omitempty"`
}

// HasReference reports whether a scripture-style locator was entered.
func (c WizardConfig) HasReference() bool {
	return strings.TrimSpace(c.Book) != ""
}

// HasSelection reports whether the user picked a specific record, either
// directly or via a search result.
func (c WizardConfig) HasSelection() bool {
	return strings.TrimSpace(c.SelectedID) != ""
}
