// Package bibleapi ingests scripture from bible-api.com.
//
// The adapter is strict and deterministic: a reference locator resolves to
// exactly one chapter (or verse range) or the fetch fails. There is no
// partial-failure policy because every fetch is a single request.
package bibleapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/duobook/studio/internal/entities"
	"github.com/duobook/studio/internal/langs"
)

const (
	defaultBaseURL     = "https://bible-api.com"
	defaultTranslation = "web" // World English Bible, public domain
	defaultTimeout     = 10 * time.Second

	previewVerseLimit = 5
)

// Adapter fetches bible chapters and normalizes verses into one line each.
type Adapter struct {
	httpClient  *http.Client
	baseURL     string
	translation string
}

func New() *Adapter {
	return &Adapter{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		baseURL:     defaultBaseURL,
		translation: defaultTranslation,
	}
}

// NewWithBaseURL is used by tests and by deployments that proxy the API.
func NewWithBaseURL(baseURL string) *Adapter {
	a := New()
	a.baseURL = baseURL
	return a
}

func (a *Adapter) SourceID() string    { return "bible-api" }
func (a *Adapter) DisplayName() string { return "Bible (World English Bible)" }

func (a *Adapter) License() entities.LicenseInfo {
	return entities.LicenseInfo{
		Type: entities.LicenseCommercialSafe,
		Name: "Public Domain",
		URL:  "https://worldenglish.bible",
	}
}

// Fetch retrieves one chapter (or a single verse when cfg.Verse is set) and
// emits a single page: a heading line followed by one text line per verse,
// each carrying its canonical reference in meta.
func (a *Adapter) Fetch(ctx context.Context, cfg entities.WizardConfig) (*entities.IngestedContent, error) {
	resp, err := a.fetchPassage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return a.normalize(resp, 0)
}

// Preview returns the same passage truncated to the first few verses.
// Deterministic: previewing twice with the same config yields the same
// sample.
func (a *Adapter) Preview(ctx context.Context, cfg entities.WizardConfig) (*entities.IngestedContent, error) {
	resp, err := a.fetchPassage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return a.normalize(resp, previewVerseLimit)
}

// Ping checks upstream reachability with a minimal known reference.
func (a *Adapter) Ping(ctx context.Context) error {
	_, err := a.get(ctx, "john 3:16")
	return err
}

func (a *Adapter) fetchPassage(ctx context.Context, cfg entities.WizardConfig) (*passageResponse, error) {
	if !cfg.HasReference() {
		return nil, fmt.Errorf("a book reference is required (e.g. book=John chapter=1)")
	}

	chapter := cfg.Chapter
	if chapter <= 0 {
		chapter = 1
	}

	ref := fmt.Sprintf("%s %d", strings.TrimSpace(cfg.Book), chapter)
	if cfg.Verse > 0 {
		ref = fmt.Sprintf("%s:%d", ref, cfg.Verse)
	}

	return a.get(ctx, ref)
}

func (a *Adapter) get(ctx context.Context, reference string) (*passageResponse, error) {
	u := fmt.Sprintf("%s/%s?translation=%s", a.baseURL, url.PathEscape(reference), a.translation)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "DuobookStudio/1.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch passage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("passage not found: %s", reference)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, reference)
	}

	var passage passageResponse
	if err := json.NewDecoder(resp.Body).Decode(&passage); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(passage.Verses) == 0 {
		return nil, fmt.Errorf("passage %s contains no verses", reference)
	}

	return &passage, nil
}

func (a *Adapter) normalize(passage *passageResponse, verseLimit int) (*entities.IngestedContent, error) {
	verses := passage.Verses
	if verseLimit > 0 && len(verses) > verseLimit {
		verses = verses[:verseLimit]
	}

	lines := make([]entities.IngestedLine, 0, len(verses)+1)
	lines = append(lines, entities.IngestedLine{
		ID:   "heading",
		Type: entities.LineTypeHeading,
		L1:   passage.Reference,
	})

	for _, v := range verses {
		lines = append(lines, entities.IngestedLine{
			ID:   fmt.Sprintf("v%d-%d", v.Chapter, v.Verse),
			Type: entities.LineTypeText,
			L1:   strings.TrimSpace(v.Text),
			Meta: map[string]string{
				"reference": fmt.Sprintf("%s %d:%d", v.BookName, v.Chapter, v.Verse),
			},
		})
	}

	return &entities.IngestedContent{
		Title:       passage.Reference,
		Description: fmt.Sprintf("%s (%s)", passage.Reference, passage.TranslationName),
		SourceLang:  langs.Normalize("en"),
		Layout:      entities.LayoutBook,
		Pages: []entities.IngestedPage{{
			Title:  passage.Reference,
			Number: 1,
			Lines:  lines,
		}},
		Meta: entities.ContentMeta{
			Source:       a.SourceID(),
			SourceURL:    a.baseURL,
			PublicDomain: true,
			FetchedAt:    time.Now().UTC(),
			License:      a.License(),
		},
	}, nil
}

// bible-api.com response types

type passageResponse struct {
	Reference       string  `json:"reference"`
	Verses          []verse `json:"verses"`
	TranslationID   string  `json:"translation_id"`
	TranslationName string  `json:"translation_name"`
	TranslationNote string  `json:"translation_note"`
}

type verse struct {
	BookID   string `json:"book_id"`
	BookName string `json:"book_name"`
	Chapter  int    `json:"chapter"`
	Verse    int    `json:"verse"`
	Text     string `json:"text"`
}
