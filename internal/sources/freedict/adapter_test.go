package freedict

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/duobook/studio/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serendipityEntry = `[{
	"word": "serendipity",
	"phonetics": [
		{"text": "", "audio": ""},
		{"text": "/ˌsɛ.ɹən.ˈdɪ.pɪ.ti/", "audio": "https://audio.example/serendipity.mp3"}
	],
	"meanings": [
		{
			"partOfSpeech": "noun",
			"definitions": [
				{"definition": "A combination of events which have come together by chance to make a surprisingly good outcome.", "example": "Not a single experiment was planned; it was pure serendipity."},
				{"definition": "An unsought, unintended, and/or unexpected, but fortunate, discovery.", "example": ""},
				{"definition": "A gift for finding valuable things not sought for.", "example": ""},
				{"definition": "A fourth definition to push past the preview cut.", "example": ""}
			]
		}
	]
}]`

func dictServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/serendipity", "/hello":
			_, _ = w.Write([]byte(serendipityEntry))
		case "/blank":
			_, _ = w.Write([]byte(`[{"word": "blank", "phonetics": [], "meanings": []}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestFetchBuildsDefinitionPage(t *testing.T) {
	server := dictServer(t)
	defer server.Close()

	adapter := NewWithBaseURL(server.URL)
	content, err := adapter.Fetch(context.Background(), entities.WizardConfig{SearchQuery: "Serendipity"})
	require.NoError(t, err)
	require.NoError(t, content.Validate())

	assert.Equal(t, "serendipity", content.Title)
	require.Len(t, content.Pages, 1)
	lines := content.Pages[0].Lines

	assert.Equal(t, entities.LineTypeHeading, lines[0].Type)
	assert.Equal(t, "serendipity", lines[0].L1)

	// The first non-empty phonetic entry wins.
	assert.Equal(t, "/ˌsɛ.ɹən.ˈdɪ.pɪ.ti/", lines[1].L1)
	assert.Equal(t, "https://audio.example/serendipity.mp3", lines[1].Meta["audio_url"])

	first := lines[2]
	assert.Equal(t, "noun", first.Meta["part_of_speech"])
	assert.Contains(t, first.Meta["example"], "pure serendipity")
	assert.Contains(t, first.L1, "surprisingly good outcome")

	// heading + pronunciation + four definitions
	assert.Len(t, lines, 6)
}

func TestFetchAttachesWiktionaryCredits(t *testing.T) {
	server := dictServer(t)
	defer server.Close()

	adapter := NewWithBaseURL(server.URL)
	content, err := adapter.Fetch(context.Background(), entities.WizardConfig{SelectedID: "serendipity"})
	require.NoError(t, err)

	assert.Equal(t, entities.LicenseAttribution, content.Meta.License.Type)
	require.NotNil(t, content.Credits)
	assert.Contains(t, content.Credits.Credits[0].AttributionText, "Wiktionary")
}

func TestFetchRequiresWord(t *testing.T) {
	adapter := New()
	_, err := adapter.Fetch(context.Background(), entities.WizardConfig{})
	assert.ErrorContains(t, err, "word to look up")
}

func TestFetchUnknownWord(t *testing.T) {
	server := dictServer(t)
	defer server.Close()

	adapter := NewWithBaseURL(server.URL)
	_, err := adapter.Fetch(context.Background(), entities.WizardConfig{SearchQuery: "xyzzyx"})
	assert.ErrorContains(t, err, "not found")
}

func TestFetchWordWithoutDefinitions(t *testing.T) {
	server := dictServer(t)
	defer server.Close()

	adapter := NewWithBaseURL(server.URL)
	_, err := adapter.Fetch(context.Background(), entities.WizardConfig{SearchQuery: "blank"})
	assert.ErrorContains(t, err, "no definitions")
}

func TestPreviewTruncatesDefinitions(t *testing.T) {
	server := dictServer(t)
	defer server.Close()

	adapter := NewWithBaseURL(server.URL)
	sample, err := adapter.Preview(context.Background(), entities.WizardConfig{SearchQuery: "serendipity"})
	require.NoError(t, err)

	// heading + pronunciation + three definitions
	assert.Len(t, sample.Pages[0].Lines, 5)
}
