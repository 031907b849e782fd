package entities

import (
	"fmt"
	"time"
)

type LineType string

const (
	LineTypeText      LineType = "text"
	LineTypeImage     LineType = "image"
	LineTypeHeading   LineType = "heading"
	LineTypeSeparator LineType = "separator"
	LineTypeQuiz      LineType = "quiz"
)

// Layout names one of the presentation archetypes the editor can render
// an imported document into. Adapters pick the archetype that best matches
// the shape of the source material; the wizard config may override it.
type Layout string

const (
	LayoutBook        Layout = "book"
	LayoutWorkbook    Layout = "workbook"
	LayoutPoster      Layout = "poster"
	LayoutSocial      Layout = "social"
	LayoutFlashcard   Layout = "flashcard"
	LayoutNewspaper   Layout = "newspaper"
	LayoutSplitPanel  Layout = "split-panel"
	LayoutPictureBook Layout = "picture-book"
	LayoutSpreadsheet Layout = "spreadsheet"
	LayoutArticle     Layout = "article"
	LayoutAcademic    Layout = "academic"
)

// IngestedLine is one paragraph/verse/fact/image unit of a normalized page.
// L1 holds source-language text, L2 the target-language text. L2 is usually
// empty at ingestion time and filled later by translation, which is not this
// subsystem's job.
type IngestedLine struct {
	ID   string            `json:"id"`
	Type LineType          `json:"type"`
	L1   string            `json:"l1,omitempty"`
	L2   string            `json:"l2,omitempty"`
	Meta map[string]string `json:"meta,omitempty"`
}

// IngestedPage is an ordered list of lines. Line order is presentation
// order; pages are never reordered after normalization.
type IngestedPage struct {
	Title  string         `json:"title,omitempty"`
	Number int            `json:"number,omitempty"`
	Lines  []IngestedLine `json:"lines"`
}

// ContentMeta carries provenance for an imported document. License is
// mandatory and is the single authoritative classification for the content.
type ContentMeta struct {
	Source       string      `json:"source"`
	SourceURL    string      `json:"source_url,omitempty"`
	PublicDomain bool        `json:"public_domain"`
	FetchedAt    time.Time   `json:"fetched_at"`
	License      LicenseInfo `json:"license"`
}

// IngestedContent is the unit returned by an adapter's Fetch: the sole
// hand-off artifact to the project importer. Credits is set if and only if
// the license tier requires attribution.
type IngestedContent struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	SourceLang  string          `json:"source_lang"`
	TargetLang  string          `json:"target_lang,omitempty"`
	Layout      Layout          `json:"layout"`
	Pages       []IngestedPage  `json:"pages"`
	Meta        ContentMeta     `json:"meta"`
	Credits     *ProjectCredits `json:"credits,omitempty"`
}

// Validate checks the structural invariants of a normalized document:
// at least one page with at least one line, line ids unique within their
// page, no text on separators, a self-consistent license, and credits
// present exactly when the license tier requires attribution.
func (c *IngestedContent) Validate() error {
	if len(c.Pages) == 0 {
		return fmt.Errorf("content %q has no pages", c.Title)
	}

	total := 0
	for i, page := range c.Pages {
		seen := make(map[string]bool, len(page.Lines))
		for _, line := range page.Lines {
			if line.ID == "" {
				return fmt.Errorf("page %d has a line with an empty id", i)
			}
			if seen[line.ID] {
				return fmt.Errorf("page %d has duplicate line id %q", i, line.ID)
			}
			seen[line.ID] = true

			if line.Type == LineTypeSeparator && (line.L1 != "" || line.L2 != "") {
				return fmt.Errorf("page %d line %q: separator carries text", i, line.ID)
			}
		}
		total += len(page.Lines)
	}
	if total == 0 {
		return fmt.Errorf("content %q has no lines", c.Title)
	}

	if err := c.Meta.License.Validate(); err != nil {
		return err
	}

	if c.Meta.License.Type == LicenseAttribution && c.Credits == nil {
		return fmt.Errorf("content %q: attribution-tier import without credits", c.Title)
	}
	if c.Meta.License.Type != LicenseAttribution && c.Credits != nil {
		return fmt.Errorf("content %q: credits attached to a %s import", c.Title, c.Meta.License.Type)
	}

	return nil
}

// SearchResult is the lightweight projection returned by an adapter's
// optional search capability.
type SearchResult struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Subtitle  string            `json:"subtitle,omitempty"`
	Thumbnail string            `json:"thumbnail,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
}
