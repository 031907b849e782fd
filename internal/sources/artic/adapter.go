// Package artic ingests artworks from the Art Institute of Chicago API
// (api.artic.edu).
//
// Multi-item fetches are best-effort: detail requests run concurrently and
// individual failures are filtered out; only a fully empty result fails the
// import.
package artic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/duobook/studio/internal/entities"
	"github.com/duobook/studio/internal/library"
	"github.com/duobook/studio/internal/license"
)

const (
	defaultBaseURL = "https://api.artic.edu"
	defaultTimeout = 15 * time.Second

	detailFields = "id,title,artist_display,date_display,medium_display,credit_line,image_id"
	poolSize     = 40
)

type Adapter struct {
	httpClient *http.Client
	baseURL    string
	rand       library.Rand
}

func New(r library.Rand) *Adapter {
	return &Adapter{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		rand:       r,
	}
}

func NewWithBaseURL(baseURL string, r library.Rand) *Adapter {
	a := New(r)
	a.baseURL = baseURL
	return a
}

func (a *Adapter) SourceID() string    { return "artic" }
func (a *Adapter) DisplayName() string { return "Art Institute of Chicago" }

func (a *Adapter) License() entities.LicenseInfo {
	return entities.LicenseInfo{
		Type:            entities.LicenseAttribution,
		Name:            "CC0 images, Art Institute of Chicago data terms",
		URL:             "https://www.artic.edu/open-access/open-access-images",
		AttributionText: "Artwork data courtesy of the Art Institute of Chicago.",
	}
}

// Search queries the collection. Best-effort.
func (a *Adapter) Search(ctx context.Context, query string, limit int) []entities.SearchResult {
	if limit <= 0 || limit > poolSize {
		limit = poolSize
	}
	hits, _, err := a.searchArtworks(ctx, query, limit)
	if err != nil {
		return []entities.SearchResult{}
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]entities.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, entities.SearchResult{
			ID:       strconv.Itoa(hit.ID),
			Title:    hit.Title,
			Subtitle: hit.ArtistDisplay,
		})
	}
	return results
}

// Fetch returns one page per artwork: a specific piece for SelectedID, or
// RandomCount random picks from the search pool (the whole collection when
// no query is given).
func (a *Adapter) Fetch(ctx context.Context, cfg entities.WizardConfig) (*entities.IngestedContent, error) {
	if cfg.HasSelection() {
		art, iiif, err := a.getArtwork(ctx, cfg.SelectedID)
		if err != nil {
			return nil, err
		}
		return a.normalize([]artwork{*art}, iiif), nil
	}

	count := cfg.RandomCount
	if count <= 0 {
		count = 1
	}

	hits, iiif, err := a.searchArtworks(ctx, cfg.SearchQuery, poolSize)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("no artworks found for %q", cfg.SearchQuery)
	}

	picked := library.PickN(a.rand, len(hits), count)

	// Detail fan-out, bounded by the requested count. Best-effort: a
	// failed sub-request drops that artwork instead of failing the fetch.
	type slot struct {
		art *artwork
	}
	slots := make([]slot, len(picked))
	var wg sync.WaitGroup
	for i, idx := range picked {
		wg.Add(1)
		go func(i int, id int) {
			defer wg.Done()
			art, _, err := a.getArtwork(ctx, strconv.Itoa(id))
			if err != nil {
				return
			}
			slots[i].art = art
		}(i, hits[idx].ID)
	}
	wg.Wait()

	arts := make([]artwork, 0, len(slots))
	for _, s := range slots {
		if s.art != nil {
			arts = append(arts, *s.art)
		}
	}
	if len(arts) == 0 {
		return nil, fmt.Errorf("all %d artwork detail requests failed", len(picked))
	}

	return a.normalize(arts, iiif), nil
}

// Preview fetches a single random artwork as a sample. It may pick a
// different piece than a later Fetch; previews only have to be
// individually useful.
func (a *Adapter) Preview(ctx context.Context, cfg entities.WizardConfig) (*entities.IngestedContent, error) {
	sampleCfg := cfg
	sampleCfg.RandomCount = 1
	return a.Fetch(ctx, sampleCfg)
}

// Ping fetches a one-item collection page.
func (a *Adapter) Ping(ctx context.Context) error {
	_, _, err := a.searchArtworks(ctx, "", 1)
	return err
}

func (a *Adapter) searchArtworks(ctx context.Context, query string, limit int) ([]artworkHit, string, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("fields", "id,title,artist_display")
	endpoint := "/api/v1/artworks"
	if query != "" {
		endpoint = "/api/v1/artworks/search"
		q.Set("q", query)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "DuobookStudio/1.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("search artworks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d from collection", resp.StatusCode)
	}

	var page searchPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, "", fmt.Errorf("decode collection page: %w", err)
	}
	return page.Data, page.Config.IIIFURL, nil
}

func (a *Adapter) getArtwork(ctx context.Context, id string) (*artwork, string, error) {
	u := fmt.Sprintf("%s/api/v1/artworks/%s?fields=%s", a.baseURL, url.PathEscape(id), detailFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "DuobookStudio/1.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch artwork %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", fmt.Errorf("artwork %s not found", id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d for artwork %s", resp.StatusCode, id)
	}

	var detail detailResponse
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, "", fmt.Errorf("decode artwork %s: %w", id, err)
	}
	return &detail.Data, detail.Config.IIIFURL, nil
}

func (a *Adapter) normalize(arts []artwork, iiifURL string) *entities.IngestedContent {
	pages := make([]entities.IngestedPage, 0, len(arts))
	for i, art := range arts {
		var lines []entities.IngestedLine

		if art.ImageID != "" {
			lines = append(lines, entities.IngestedLine{
				ID:   "image",
				Type: entities.LineTypeImage,
				Meta: map[string]string{"url": imageURL(iiifURL, art.ImageID)},
			})
		}
		lines = append(lines, entities.IngestedLine{
			ID:   "heading",
			Type: entities.LineTypeHeading,
			L1:   art.Title,
		})
		if art.ArtistDisplay != "" {
			lines = append(lines, entities.IngestedLine{
				ID:   "artist",
				Type: entities.LineTypeText,
				L1:   art.ArtistDisplay,
			})
		}
		if art.DateDisplay != "" || art.MediumDisplay != "" {
			lines = append(lines, entities.IngestedLine{
				ID:   "medium",
				Type: entities.LineTypeText,
				L1:   joinNonEmpty(art.DateDisplay, art.MediumDisplay),
			})
		}
		if art.CreditLine != "" {
			lines = append(lines, entities.IngestedLine{
				ID:   "credit",
				Type: entities.LineTypeText,
				L1:   art.CreditLine,
				Meta: map[string]string{"attribution": art.CreditLine},
			})
		}

		pages = append(pages, entities.IngestedPage{
			Title:  art.Title,
			Number: i + 1,
			Lines:  lines,
		})
	}

	title := "Artworks from the Art Institute of Chicago"
	if len(arts) == 1 {
		title = arts[0].Title
	}

	content := &entities.IngestedContent{
		Title:       title,
		Description: fmt.Sprintf("%d artwork(s) from the Art Institute of Chicago collection", len(arts)),
		SourceLang:  "en",
		Layout:      entities.LayoutPictureBook,
		Pages:       pages,
		Meta: entities.ContentMeta{
			Source:    a.SourceID(),
			SourceURL: "https://www.artic.edu",
			FetchedAt: time.Now().UTC(),
			License:   a.License(),
		},
	}
	license.Attach(content)
	return content
}

func imageURL(iiifURL, imageID string) string {
	if iiifURL == "" {
		iiifURL = "https://www.artic.edu/iiif/2"
	}
	return fmt.Sprintf("%s/%s/full/843,/0/default.jpg", iiifURL, imageID)
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + ", " + b
	}
}

// api.artic.edu response types

type searchPage struct {
	Data   []artworkHit `json:"data"`
	Config apiConfig    `json:"config"`
}

type artworkHit struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	ArtistDisplay string `json:"artist_display"`
}

type detailResponse struct {
	Data   artwork   `json:"data"`
	Config apiConfig `json:"config"`
}

type apiConfig struct {
	IIIFURL string `json:"iiif_url"`
}

type artwork struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	ArtistDisplay string `json:"artist_display"`
	DateDisplay   string `json:"date_display"`
	MediumDisplay string `json:"medium_display"`
	CreditLine    string `json:"credit_line"`
	ImageID       string `json:"image_id"`
}
