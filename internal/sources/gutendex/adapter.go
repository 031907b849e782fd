// Package gutendex ingests public-domain books from gutendex.com, the
// JSON front-end to Project Gutenberg.
//
// A fetch is strict up to the selected book: resolving the record and
// downloading its plain text either fully succeeds or fails the import.
package gutendex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/duobook/studio/internal/entities"
	"github.com/duobook/studio/internal/langs"
	"github.com/duobook/studio/internal/library"
)

const (
	defaultBaseURL = "https://gutendex.com"
	defaultTimeout = 30 * time.Second

	// Plain-text editions can be tens of megabytes; cap what we pull.
	maxBookBytes = 8 << 20

	previewChapterLimit   = 1
	previewParagraphLimit = 6
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

func (a *Adapter) SourceID() string    { return "gutendex" }
func (a *Adapter) DisplayName() string { return "Project Gutenberg" }

func (a *Adapter) License() entities.LicenseInfo {
	return entities.LicenseInfo{
		Type: entities.LicenseCommercialSafe,
		Name: "Public Domain",
		URL:  "https://www.gutenberg.org/policy/permission.html",
	}
}

// Search queries the catalog. Best-effort: transport failures yield an
// empty result set so manual id entry keeps working.
func (a *Adapter) Search(ctx context.Context, query string, limit int) []entities.SearchResult {
	books, err := a.searchBooks(ctx, query)
	if err != nil {
		return []entities.SearchResult{}
	}

	if limit > 0 && len(books) > limit {
		books = books[:limit]
	}

	results := make([]entities.SearchResult, 0, len(books))
	for _, b := range books {
		results = append(results, entities.SearchResult{
			ID:        strconv.Itoa(b.ID),
			Title:     b.Title,
			Subtitle:  b.authorLine(),
			Thumbnail: b.Formats["image/jpeg"],
			Meta:      map[string]string{"downloads": strconv.Itoa(b.DownloadCount)},
		})
	}
	return results
}

// Fetch resolves a book (by SelectedID, by SearchQuery, or a random pick
// from the most-downloaded titles), downloads its plain text, strips the
// Gutenberg boilerplate and splits it into chapter pages. StartChapter/
// EndChapter bound a range import for long works.
func (a *Adapter) Fetch(ctx context.Context, cfg entities.WizardConfig) (*entities.IngestedContent, error) {
	book, err := a.resolveBook(ctx, cfg)
	if err != nil {
		return nil, err
	}

	text, err := a.downloadText(ctx, book)
	if err != nil {
		return nil, err
	}

	chapters := splitChapters(stripBoilerplate(text))
	if len(chapters) == 0 {
		return nil, fmt.Errorf("book %d (%s) contains no usable text", book.ID, book.Title)
	}

	chapters, err = applyRange(chapters, cfg)
	if err != nil {
		return nil, err
	}

	return a.normalize(book, chapters), nil
}

// Preview downloads the selected book but keeps only the opening chapter,
// truncated, as a non-committal sample.
func (a *Adapter) Preview(ctx context.Context, cfg entities.WizardConfig) (*entities.IngestedContent, error) {
	book, err := a.resolveBook(ctx, cfg)
	if err != nil {
		return nil, err
	}

	text, err := a.downloadText(ctx, book)
	if err != nil {
		return nil, err
	}

	chapters := splitChapters(stripBoilerplate(text))
	if len(chapters) == 0 {
		return nil, fmt.Errorf("book %d (%s) contains no usable text", book.ID, book.Title)
	}

	chapters = chapters[:previewChapterLimit]
	if len(chapters[0].Paragraphs) > previewParagraphLimit {
		chapters[0].Paragraphs = chapters[0].Paragraphs[:previewParagraphLimit]
	}

	return a.normalize(book, chapters), nil
}

// Ping fetches the first catalog page.
func (a *Adapter) Ping(ctx context.Context) error {
	_, err := a.searchBooks(ctx, "")
	return err
}

func (a *Adapter) resolveBook(ctx context.Context, cfg entities.WizardConfig) (*bookRecord, error) {
	if cfg.HasSelection() {
		return a.getBook(ctx, cfg.SelectedID)
	}

	query := strings.TrimSpace(cfg.SearchQuery)
	books, err := a.searchBooks(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		if query != "" {
			return nil, fmt.Errorf("no books found for %q", query)
		}
		return nil, fmt.Errorf("the catalog returned no books")
	}

	if query != "" {
		// Search ordering is relevance-ish; take the top hit.
		return &books[0], nil
	}

	// "Surprise me": random pick from the most-downloaded page.
	return &books[a.rand.Intn(len(books))], nil
}

func (a *Adapter) searchBooks(ctx context.Context, query string) ([]bookRecord, error) {
	u := a.baseURL + "/books"
	if query != "" {
		u += "?search=" + url.QueryEscape(query)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "DuobookStudio/1.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from catalog", resp.StatusCode)
	}

	var page catalogPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode catalog page: %w", err)
	}
	return page.Results, nil
}

func (a *Adapter) getBook(ctx context.Context, id string) (*bookRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/books/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "DuobookStudio/1.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch book %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("book %s not found", id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for book %s", resp.StatusCode, id)
	}

	var book bookRecord
	if err := json.NewDecoder(resp.Body).Decode(&book); err != nil {
		return nil, fmt.Errorf("decode book %s: %w", id, err)
	}
	return &book, nil
}

func (a *Adapter) downloadText(ctx context.Context, book *bookRecord) (string, error) {
	textURL := book.plainTextURL()
	if textURL == "" {
		return "", fmt.Errorf("book %d (%s) has no plain-text edition", book.ID, book.Title)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, textURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "DuobookStudio/1.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download text for book %d: %w", book.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d downloading book %d", resp.StatusCode, book.ID)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBookBytes))
	if err != nil {
		return "", fmt.Errorf("read text for book %d: %w", book.ID, err)
	}
	return string(data), nil
}

func applyRange(chapters []chapter, cfg entities.WizardConfig) ([]chapter, error) {
	if !cfg.ImportRange && cfg.StartChapter == 0 && cfg.EndChapter == 0 {
		return chapters, nil
	}

	start := cfg.StartChapter
	if start < 1 {
		start = 1
	}
	end := cfg.EndChapter
	if end == 0 || end > len(chapters) {
		end = len(chapters)
	}
	if start > len(chapters) || start > end {
		return nil, fmt.Errorf("chapter range %d-%d is outside the book's %d chapters", cfg.StartChapter, cfg.EndChapter, len(chapters))
	}
	return chapters[start-1 : end], nil
}

func (a *Adapter) normalize(book *bookRecord, chapters []chapter) *entities.IngestedContent {
	pages := make([]entities.IngestedPage, 0, len(chapters))
	for i, ch := range chapters {
		title := ch.Title
		if title == "" {
			title = fmt.Sprintf("Section %d", i+1)
		}

		lines := make([]entities.IngestedLine, 0, len(ch.Paragraphs)+1)
		lines = append(lines, entities.IngestedLine{
			ID:   "heading",
			Type: entities.LineTypeHeading,
			L1:   title,
		})
		for j, para := range ch.Paragraphs {
			lines = append(lines, entities.IngestedLine{
				ID:   fmt.Sprintf("p%d", j+1),
				Type: entities.LineTypeText,
				L1:   para,
			})
		}

		pages = append(pages, entities.IngestedPage{
			Title:  title,
			Number: i + 1,
			Lines:  lines,
		})
	}

	sourceLang := "en"
	if len(book.Languages) > 0 {
		sourceLang = langs.Normalize(book.Languages[0])
	}

	return &entities.IngestedContent{
		Title:       book.Title,
		Description: book.authorLine(),
		SourceLang:  sourceLang,
		Layout:      entities.LayoutBook,
		Pages:       pages,
		Meta: entities.ContentMeta{
			Source:       a.SourceID(),
			SourceURL:    fmt.Sprintf("https://www.gutenberg.org/ebooks/%d", book.ID),
			PublicDomain: true,
			FetchedAt:    time.Now().UTC(),
			License:      a.License(),
		},
	}
}

// gutendex.com response types

type catalogPage struct {
	Count   int          `json:"count"`
	Next    *string      `json:"next"`
	Results []bookRecord `json:"results"`
}

type bookRecord struct {
	ID            int               `json:"id"`
	Title         string            `json:"title"`
	Authors       []author          `json:"authors"`
	Languages     []string          `json:"languages"`
	Formats       map[string]string `json:"formats"`
	DownloadCount int               `json:"download_count"`
}

type author struct {
	Name string `json:"name"`
}

func (b *bookRecord) authorLine() string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// plainTextURL picks a plain-text format, skipping zipped variants.
func (b *bookRecord) plainTextURL() string {
	for mime, u := range b.Formats {
		if strings.HasPrefix(mime, "text/plain") && !strings.HasSuffix(u, ".zip") {
			return u
		}
	}
	return ""
}
