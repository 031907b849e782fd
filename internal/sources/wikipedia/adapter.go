// Package wikipedia ingests encyclopedia articles from the Wikipedia APIs.
//
// Every fetch resolves to a single article, so there is no partial-failure
// policy: the article either loads or the import fails.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/duobook/studio/internal/entities"
	"github.com/duobook/studio/internal/langs"
	"github.com/duobook/studio/internal/license"
)

const (
	defaultBaseURL = "https://en.wikipedia.org"
	defaultTimeout = 15 * time.Second
)

// Appendix sections that make no sense in a reading project.
var skippedSections = map[string]bool{
	"references":      true,
	"external links":  true,
	"see also":        true,
	"further reading": true,
	"notes":           true,
	"bibliography":    true,
	"sources":         true,
}

var (
	sectionPattern = regexp.MustCompile(`(?m)^==+\s*(.+?)\s*==+\s*$`)
	tagPattern     = regexp.MustCompile(`<[^>]+>`)
)

type Adapter struct {
	httpClient *http.Client
	baseURL    string
	lang       string
}

func New() *Adapter {
	return &Adapter{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		lang:       "en",
	}
}

func NewWithBaseURL(baseURL string) *Adapter {
	a := New()
	a.baseURL = baseURL
	return a
}

func (a *Adapter) SourceID() string    { return "wikipedia" }
func (a *Adapter) DisplayName() string { return "Wikipedia" }

func (a *Adapter) License() entities.LicenseInfo {
	return entities.LicenseInfo{
		Type:            entities.LicenseAttribution,
		Name:            "CC BY-SA 4.0",
		URL:             "https://creativecommons.org/licenses/by-sa/4.0/",
		AttributionText: "Text from Wikipedia, licensed under CC BY-SA 4.0.",
	}
}

// Search queries article titles. Best-effort.
func (a *Adapter) Search(ctx context.Context, query string, limit int) []entities.SearchResult {
	if limit <= 0 {
		limit = 10
	}

	u := fmt.Sprintf("%s/w/rest.php/v1/search/page?q=%s&limit=%d", a.baseURL, url.QueryEscape(query), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return []entities.SearchResult{}
	}
	req.Header.Set("User-Agent", "DuobookStudio/1.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return []entities.SearchResult{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return []entities.SearchResult{}
	}

	var page searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return []entities.SearchResult{}
	}

	results := make([]entities.SearchResult, 0, len(page.Pages))
	for _, hit := range page.Pages {
		result := entities.SearchResult{
			ID:       hit.Key,
			Title:    hit.Title,
			Subtitle: hit.Description,
		}
		if hit.Thumbnail != nil {
			result.Thumbnail = hit.Thumbnail.URL
		}
		results = append(results, result)
	}
	return results
}

// Fetch resolves an article (SelectedID title key, top search hit, or a
// random article when neither is given) and splits its plaintext extract
// into one page per section.
func (a *Adapter) Fetch(ctx context.Context, cfg entities.WizardConfig) (*entities.IngestedContent, error) {
	title, err := a.resolveTitle(ctx, cfg)
	if err != nil {
		return nil, err
	}

	extract, resolvedTitle, err := a.getExtract(ctx, title)
	if err != nil {
		return nil, err
	}

	pages := a.sectionPages(resolvedTitle, extract)
	if len(pages) == 0 {
		return nil, fmt.Errorf("article %q has no usable text", resolvedTitle)
	}

	content := &entities.IngestedContent{
		Title:       resolvedTitle,
		Description: fmt.Sprintf("Wikipedia article: %s", resolvedTitle),
		SourceLang:  langs.Normalize(a.lang),
		Layout:      entities.LayoutArticle,
		Pages:       pages,
		Meta: entities.ContentMeta{
			Source:    a.SourceID(),
			SourceURL: fmt.Sprintf("%s/wiki/%s", a.baseURL, url.PathEscape(strings.ReplaceAll(resolvedTitle, " ", "_"))),
			FetchedAt: time.Now().UTC(),
			License:   a.License(),
		},
	}
	license.Attach(content)
	return content, nil
}

// Preview fetches the article's summary: one page, lead paragraph only.
func (a *Adapter) Preview(ctx context.Context, cfg entities.WizardConfig) (*entities.IngestedContent, error) {
	title, err := a.resolveTitle(ctx, cfg)
	if err != nil {
		return nil, err
	}

	summary, err := a.getSummary(ctx, title)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(summary.Extract) == "" {
		return nil, fmt.Errorf("article %q has no summary", title)
	}

	content := &entities.IngestedContent{
		Title:       summary.Title,
		Description: summary.Description,
		SourceLang:  langs.Normalize(a.lang),
		Layout:      entities.LayoutArticle,
		Pages: []entities.IngestedPage{{
			Title:  summary.Title,
			Number: 1,
			Lines: []entities.IngestedLine{
				{ID: "heading", Type: entities.LineTypeHeading, L1: summary.Title},
				{ID: "p1", Type: entities.LineTypeText, L1: stripMarkup(summary.Extract)},
			},
		}},
		Meta: entities.ContentMeta{
			Source:    a.SourceID(),
			FetchedAt: time.Now().UTC(),
			License:   a.License(),
		},
	}
	license.Attach(content)
	return content, nil
}

// Ping fetches the main page summary.
func (a *Adapter) Ping(ctx context.Context) error {
	_, err := a.getSummary(ctx, "Main_Page")
	return err
}

func (a *Adapter) resolveTitle(ctx context.Context, cfg entities.WizardConfig) (string, error) {
	if cfg.HasSelection() {
		return cfg.SelectedID, nil
	}

	if q := strings.TrimSpace(cfg.SearchQuery); q != "" {
		hits := a.Search(ctx, q, 1)
		if len(hits) == 0 {
			return "", fmt.Errorf("no articles found for %q", q)
		}
		return hits[0].ID, nil
	}

	summary, err := a.getRandomSummary(ctx)
	if err != nil {
		return "", err
	}
	return summary.Title, nil
}

func (a *Adapter) getExtract(ctx context.Context, title string) (extract, resolvedTitle string, err error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("prop", "extracts")
	q.Set("explaintext", "1")
	q.Set("redirects", "1")
	q.Set("format", "json")
	q.Set("titles", title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/w/api.php?"+q.Encode(), nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "DuobookStudio/1.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch article %q: %w", title, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("unexpected status %d for article %q", resp.StatusCode, title)
	}

	var body extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", "", fmt.Errorf("decode article %q: %w", title, err)
	}

	for _, page := range body.Query.Pages {
		if page.Missing != nil {
			return "", "", fmt.Errorf("article %q not found", title)
		}
		if strings.TrimSpace(page.Extract) == "" {
			return "", "", fmt.Errorf("article %q has no extractable text", title)
		}
		return page.Extract, page.Title, nil
	}
	return "", "", fmt.Errorf("article %q not found", title)
}

func (a *Adapter) getSummary(ctx context.Context, title string) (*summaryResponse, error) {
	u := fmt.Sprintf("%s/api/rest_v1/page/summary/%s", a.baseURL, url.PathEscape(strings.ReplaceAll(title, " ", "_")))
	return a.fetchSummary(ctx, u)
}

func (a *Adapter) getRandomSummary(ctx context.Context) (*summaryResponse, error) {
	return a.fetchSummary(ctx, a.baseURL+"/api/rest_v1/page/random/summary")
}

func (a *Adapter) fetchSummary(ctx context.Context, u string) (*summaryResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "DuobookStudio/1.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("article not found")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching summary", resp.StatusCode)
	}

	var summary summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &summary, nil
}

// sectionPages splits a plaintext extract on "== Heading ==" markers into
// one page per section, dropping appendix sections. The lead before the
// first heading becomes the opening page.
func (a *Adapter) sectionPages(articleTitle, extract string) []entities.IngestedPage {
	extract = stripMarkup(extract)

	type section struct {
		title string
		body  string
	}

	var sections []section
	locs := sectionPattern.FindAllStringSubmatchIndex(extract, -1)

	if lead := strings.TrimSpace(extract[:leadEnd(extract, locs)]); lead != "" {
		sections = append(sections, section{title: articleTitle, body: lead})
	}
	for i, loc := range locs {
		title := extract[loc[2]:loc[3]]
		end := len(extract)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		sections = append(sections, section{title: title, body: extract[loc[1]:end]})
	}

	var pages []entities.IngestedPage
	for _, s := range sections {
		if skippedSections[strings.ToLower(strings.TrimSpace(s.title))] {
			continue
		}

		paras := toParagraphs(s.body)
		if len(paras) == 0 {
			continue
		}

		lines := make([]entities.IngestedLine, 0, len(paras)+1)
		lines = append(lines, entities.IngestedLine{
			ID:   "heading",
			Type: entities.LineTypeHeading,
			L1:   s.title,
		})
		for j, para := range paras {
			lines = append(lines, entities.IngestedLine{
				ID:   fmt.Sprintf("p%d", j+1),
				Type: entities.LineTypeText,
				L1:   para,
			})
		}

		pages = append(pages, entities.IngestedPage{
			Title:  s.title,
			Number: len(pages) + 1,
			Lines:  lines,
		})
	}
	return pages
}

func leadEnd(extract string, locs [][]int) int {
	if len(locs) == 0 {
		return len(extract)
	}
	return locs[0][0]
}

// stripMarkup removes any HTML tags that survive the plaintext extract and
// collapses entity leftovers.
func stripMarkup(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return s
}

func toParagraphs(body string) []string {
	blocks := strings.Split(body, "\n")
	var paras []string
	for _, block := range blocks {
		trimmed := strings.TrimSpace(block)
		if trimmed == "" {
			continue
		}
		paras = append(paras, trimmed)
	}
	return paras
}

// Wikipedia API response types

type searchResponse struct {
	Pages []searchHit `json:"pages"`
}

type searchHit struct {
	ID          int        `json:"id"`
	Key         string     `json:"key"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Thumbnail   *thumbnail `json:"thumbnail"`
}

type thumbnail struct {
	URL string `json:"url"`
}

type extractResponse struct {
	Query struct {
		Pages map[string]extractPage `json:"pages"`
	} `json:"query"`
}

type extractPage struct {
	PageID  int    `json:"pageid"`
	Title   string `json:"title"`
	Extract string `json:"extract"`
	// The action API marks missing pages with an empty "missing" member.
	Missing *string `json:"missing"`
}

type summaryResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Extract     string `json:"extract"`
}
