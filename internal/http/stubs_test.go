package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/duobook/studio/internal/entities"
	"github.com/duobook/studio/internal/library"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func safeLicense() entities.LicenseInfo {
	return entities.LicenseInfo{
		Type: entities.LicenseCommercialSafe,
		Name: "Public Domain",
	}
}

func attributionLicense() entities.LicenseInfo {
	return entities.LicenseInfo{
		Type:            entities.LicenseAttribution,
		Name:            "CC BY-SA 4.0",
		AttributionText: "Content from Stubpedia, CC BY-SA 4.0.",
	}
}

func personalLicense() entities.LicenseInfo {
	return entities.LicenseInfo{
		Type:        entities.LicensePersonalOnly,
		Name:        "Trademarked",
		WarningText: "Personal projects only.",
	}
}

func stubContent(title string, info entities.LicenseInfo) *entities.IngestedContent {
	return &entities.IngestedContent{
		Title:      title,
		SourceLang: "en",
		Layout:     entities.LayoutArticle,
		Pages: []entities.IngestedPage{{
			Title:  title,
			Number: 1,
			Lines: []entities.IngestedLine{{
				ID:   "l1",
				Type: entities.LineTypeText,
				L1:   "stub line",
			}},
		}},
		Meta: entities.ContentMeta{
			Source:    "stub",
			FetchedAt: time.Now().UTC(),
			License:   info,
		},
	}
}

type stubAdapter struct {
	id   string
	name string
	info entities.LicenseInfo

	fetchErr   error
	fetchCalls int
}

func (s *stubAdapter) SourceID() string              { return s.id }
func (s *stubAdapter) DisplayName() string           { return s.name }
func (s *stubAdapter) License() entities.LicenseInfo { return s.info }

func (s *stubAdapter) Fetch(_ context.Context, _ entities.WizardConfig) (*entities.IngestedContent, error) {
	s.fetchCalls++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return stubContent(s.name, s.info), nil
}

// searchableAdapter additionally implements library.Searcher.
type searchableAdapter struct {
	stubAdapter
	results []entities.SearchResult
}

func (s *searchableAdapter) Search(_ context.Context, query string, limit int) []entities.SearchResult {
	var out []entities.SearchResult
	for _, r := range s.results {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(r.Title), strings.ToLower(query)) {
			out = append(out, r)
		}
	}
	return out
}

type recordedImport struct {
	sourceID string
	tier     entities.LicenseType
	content  *entities.IngestedContent
	err      error
}

type stubAuditor struct {
	mu      sync.Mutex
	records []recordedImport
}

func (a *stubAuditor) RecordAsync(sourceID string, tier entities.LicenseType, content *entities.IngestedContent, _ entities.WizardConfig, _ time.Duration, importErr error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, recordedImport{sourceID: sourceID, tier: tier, content: content, err: importErr})
}

func (a *stubAuditor) all() []recordedImport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]recordedImport(nil), a.records...)
}

func testRegistry(t *testing.T, adapters ...library.Adapter) *library.Registry {
	t.Helper()
	registry := library.NewRegistry()
	for _, a := range adapters {
		require.NoError(t, registry.Register(a))
	}
	return registry
}

func performRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
