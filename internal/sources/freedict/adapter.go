// Package freedict ingests word definitions from the Free Dictionary API
// (dictionaryapi.dev), whose data originates from Wiktionary.
//
// A fetch resolves exactly one word, so there is no partial-failure
// policy. The source offers no search endpoint; the wizard hides the
// search affordance for it.
package freedict

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/duobook/studio/internal/entities"
	"github.com/duobook/studio/internal/license"
)

const (
	defaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"
	defaultTimeout = 10 * time.Second

	previewDefinitionLimit = 3
)

type Adapter struct {
	httpClient *http.Client
	baseURL    string
}

func New() *Adapter {
	return &Adapter{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
	}
}

func NewWithBaseURL(baseURL string) *Adapter {
	a := New()
	a.baseURL = baseURL
	return a
}

func (a *Adapter) SourceID() string    { return "freedictionary" }
func (a *Adapter) DisplayName() string { return "Dictionary" }

func (a *Adapter) License() entities.LicenseInfo {
	return entities.LicenseInfo{
		Type:            entities.LicenseAttribution,
		Name:            "CC BY-SA 4.0 (Wiktionary)",
		URL:             "https://creativecommons.org/licenses/by-sa/4.0/",
		AttributionText: "Definitions from Wiktionary via the Free Dictionary API, CC BY-SA 4.0.",
	}
}

// Fetch looks up the word in SearchQuery (or SelectedID) and emits a
// single page of definition lines annotated with part of speech,
// pronunciation and usage examples.
func (a *Adapter) Fetch(ctx context.Context, cfg entities.WizardConfig) (*entities.IngestedContent, error) {
	return a.lookup(ctx, cfg, 0)
}

// Preview returns the same lookup truncated to the first few definitions.
func (a *Adapter) Preview(ctx context.Context, cfg entities.WizardConfig) (*entities.IngestedContent, error) {
	return a.lookup(ctx, cfg, previewDefinitionLimit)
}

// Ping looks up a word that always exists.
func (a *Adapter) Ping(ctx context.Context) error {
	_, err := a.getWord(ctx, "hello")
	return err
}

func (a *Adapter) lookup(ctx context.Context, cfg entities.WizardConfig, definitionLimit int) (*entities.IngestedContent, error) {
	word := strings.TrimSpace(strings.ToLower(cfg.SearchQuery))
	if word == "" {
		word = strings.TrimSpace(strings.ToLower(cfg.SelectedID))
	}
	if word == "" {
		return nil, fmt.Errorf("a word to look up is required")
	}

	dictEntry, err := a.getWord(ctx, word)
	if err != nil {
		return nil, err
	}

	return a.normalize(word, dictEntry, definitionLimit)
}

func (a *Adapter) getWord(ctx context.Context, word string) (*dictionaryEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/"+url.PathEscape(word), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "DuobookStudio/1.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch definition: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("word not found: %s", word)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %q", resp.StatusCode, word)
	}

	var apiResponse []dictionaryEntry
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResponse) == 0 {
		return nil, fmt.Errorf("empty response for word %q", word)
	}

	return &apiResponse[0], nil
}

func (a *Adapter) normalize(word string, dictEntry *dictionaryEntry, definitionLimit int) (*entities.IngestedContent, error) {
	pronunciation, audioURL := dictEntry.phonetics()

	lines := []entities.IngestedLine{{
		ID:   "heading",
		Type: entities.LineTypeHeading,
		L1:   word,
	}}
	if pronunciation != "" {
		meta := map[string]string{}
		if audioURL != "" {
			meta["audio_url"] = audioURL
		}
		lines = append(lines, entities.IngestedLine{
			ID:   "pronunciation",
			Type: entities.LineTypeText,
			L1:   pronunciation,
			Meta: meta,
		})
	}

	n := 0
	for _, meaning := range dictEntry.Meanings {
		if definitionLimit > 0 && n >= definitionLimit {
			break
		}
		for _, def := range meaning.Definitions {
			if definitionLimit > 0 && n >= definitionLimit {
				break
			}
			n++
			meta := map[string]string{"part_of_speech": meaning.PartOfSpeech}
			if def.Example != "" {
				meta["example"] = def.Example
			}
			lines = append(lines, entities.IngestedLine{
				ID:   fmt.Sprintf("def%d", n),
				Type: entities.LineTypeText,
				L1:   def.Definition,
				Meta: meta,
			})
		}
	}
	if n == 0 {
		return nil, fmt.Errorf("word %q has no definitions", word)
	}

	content := &entities.IngestedContent{
		Title:       word,
		Description: fmt.Sprintf("Dictionary entry for %q", word),
		SourceLang:  "en",
		Layout:      entities.LayoutFlashcard,
		Pages: []entities.IngestedPage{{
			Title:  word,
			Number: 1,
			Lines:  lines,
		}},
		Meta: entities.ContentMeta{
			Source:    a.SourceID(),
			SourceURL: "https://dictionaryapi.dev",
			FetchedAt: time.Now().UTC(),
			License:   a.License(),
		},
	}
	license.Attach(content)
	return content, nil
}

// Free Dictionary API response types

type dictionaryEntry struct {
	Word      string     `json:"word"`
	Phonetics []phonetic `json:"phonetics"`
	Meanings  []meaning  `json:"meanings"`
}

type phonetic struct {
	Text  string `json:"text"`
	Audio string `json:"audio"`
}

type meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []definition `json:"definitions"`
}

type definition struct {
	Definition string `json:"definition"`
	Example    string `json:"example"`
}

func (e *dictionaryEntry) phonetics() (text, audio string) {
	for _, p := range e.Phonetics {
		if text == "" && p.Text != "" {
			text = p.Text
		}
		if audio == "" && p.Audio != "" {
			audio = p.Audio
		}
	}
	return text, audio
}
