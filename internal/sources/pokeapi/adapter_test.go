package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/duobook/studio/internal/entities"
	"github.com/duobook/studio/internal/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dexServer(t *testing.T, failing map[int]bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idStr := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		id, err := strconv.Atoi(idStr)
		if err != nil || id < 1 || id > 5 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if failing[id] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v2/pokemon-species/"):
			_, _ = w.Write([]byte(fmt.Sprintf(`{
				"flavor_text_entries": [
					{"flavor_text": "A strange seed was\nplanted on its\fback at birth.", "language": {"name": "en"}},
					{"flavor_text": "Une graine étrange.", "language": {"name": "fr"}}
				],
				"genera": [{"genus": "Seed Creature %d", "language": {"name": "en"}}]
			}`, id)))

		case strings.HasPrefix(r.URL.Path, "/api/v2/pokemon/"):
			p := pokemonResponse{ID: id, Name: fmt.Sprintf("creature-%d", id)}
			p.Sprites.Other.OfficialArtwork.FrontDefault = fmt.Sprintf("https://img.example/%d.png", id)
			p.Types = []struct {
				Type struct {
					Name string `json:"name"`
				} `json:"type"`
			}{{Type: struct {
				Name string `json:"name"`
			}{Name: "grass"}}}
			_ = json.NewEncoder(w).Encode(p)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestFetchBySelectedID(t *testing.T) {
	server := dexServer(t, nil)
	defer server.Close()

	adapter := NewWithBaseURL(server.URL, library.NewRand(1), 5)
	content, err := adapter.Fetch(context.Background(), entities.WizardConfig{SelectedID: "3", IncludeImages: true})
	require.NoError(t, err)
	require.NoError(t, content.Validate())

	require.Len(t, content.Pages, 1)
	page := content.Pages[0]
	assert.Equal(t, "Creature-3", page.Title)

	assert.Equal(t, entities.LineTypeImage, page.Lines[0].Type)
	assert.Equal(t, entities.LineTypeHeading, page.Lines[1].Type)
	assert.Equal(t, "Seed Creature 3", page.Lines[2].L1)
	// Control characters in flavor text are flattened.
	assert.Equal(t, "A strange seed was planted on its back at birth.", page.Lines[3].L1)

	quiz := page.Lines[4]
	assert.Equal(t, entities.LineTypeQuiz, quiz.Type)
	assert.Equal(t, "grass", quiz.Meta["answer"])

	assert.Equal(t, entities.LicensePersonalOnly, content.Meta.License.Type)
	assert.NotEmpty(t, content.Meta.License.WarningText)
	assert.Nil(t, content.Credits)
}

func TestFetchRandomCount(t *testing.T) {
	server := dexServer(t, nil)
	defer server.Close()

	adapter := NewWithBaseURL(server.URL, library.NewRand(9), 5)
	content, err := adapter.Fetch(context.Background(), entities.WizardConfig{RandomCount: 3})
	require.NoError(t, err)
	assert.Len(t, content.Pages, 3)
}

func TestFetchStrictOnPartialFailure(t *testing.T) {
	server := dexServer(t, map[int]bool{2: true})
	defer server.Close()

	adapter := NewWithBaseURL(server.URL, library.NewRand(9), 5)
	_, err := adapter.Fetch(context.Background(), entities.WizardConfig{RandomCount: 5})
	assert.Error(t, err, "strict adapter propagates any sub-request failure")
}

func TestFetchNotFound(t *testing.T) {
	server := dexServer(t, nil)
	defer server.Close()

	adapter := NewWithBaseURL(server.URL, library.NewRand(1), 5)
	_, err := adapter.Fetch(context.Background(), entities.WizardConfig{SelectedID: "999"})
	assert.ErrorContains(t, err, "not found")
}

func TestImagesOmittedByDefault(t *testing.T) {
	server := dexServer(t, nil)
	defer server.Close()

	adapter := NewWithBaseURL(server.URL, library.NewRand(1), 5)
	content, err := adapter.Fetch(context.Background(), entities.WizardConfig{SelectedID: "1"})
	require.NoError(t, err)
	for _, line := range content.Pages[0].Lines {
		assert.NotEqual(t, entities.LineTypeImage, line.Type)
	}
}

func TestPreviewSamplesSingleEntry(t *testing.T) {
	server := dexServer(t, nil)
	defer server.Close()

	adapter := NewWithBaseURL(server.URL, library.NewRand(2), 5)
	sample, err := adapter.Preview(context.Background(), entities.WizardConfig{RandomCount: 4})
	require.NoError(t, err)
	assert.Len(t, sample.Pages, 1)
}
