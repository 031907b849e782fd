// Package pokeapi ingests trivia entries from pokeapi.co.
//
// The source is trademarked game data and is classified personal-only:
// imports are gated behind an explicit acknowledgment upstream of this
// adapter. Multi-item fetches are strict: every requested entry must load
// or the whole fetch fails, because a trivia set with silent holes is worse
// than an error.
package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/duobook/studio/internal/entities"
	"github.com/duobook/studio/internal/library"
)

const (
	defaultBaseURL = "https://pokeapi.co"
	defaultTimeout = 15 * time.Second

	// Highest id in the national dex served by the API.
	maxEntryID = 1025
)

type Adapter struct {
	httpClient *http.Client
	baseURL    string
	rand       library.Rand
	maxID      int
}

func New(r library.Rand) *Adapter {
	return &Adapter{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		rand:       r,
		maxID:      maxEntryID,
	}
}

func NewWithBaseURL(baseURL string, r library.Rand, maxID int) *Adapter {
	a := New(r)
	a.baseURL = baseURL
	a.maxID = maxID
	return a
}

func (a *Adapter) SourceID() string    { return "pokeapi" }
func (a *Adapter) DisplayName() string { return "Pokémon Trivia" }

func (a *Adapter) License() entities.LicenseInfo {
	return entities.LicenseInfo{
		Type: entities.LicensePersonalOnly,
		Name: "Trademarked Game Data",
		URL:  "https://pokeapi.co/docs/v2",
		WarningText: "Pokémon names and artwork are trademarks of their respective owners. " +
			"Content from this source may only be used in personal, non-commercial projects.",
	}
}

// Fetch returns one flashcard page per entry: a specific one by
// SelectedID, or RandomCount random picks. Strict: any failed entry fails
// the import.
func (a *Adapter) Fetch(ctx context.Context, cfg entities.WizardConfig) (*entities.IngestedContent, error) {
	ids := a.resolveIDs(cfg)

	entries := make([]*entry, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			e, err := a.getEntry(gctx, id)
			if err != nil {
				return err
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return a.normalize(entries, cfg.IncludeImages), nil
}

// Preview samples a single random entry, independently of what a later
// Fetch will pick.
func (a *Adapter) Preview(ctx context.Context, cfg entities.WizardConfig) (*entities.IngestedContent, error) {
	sampleCfg := cfg
	sampleCfg.SelectedID = ""
	sampleCfg.RandomCount = 1
	return a.Fetch(ctx, sampleCfg)
}

// Ping fetches the first entry.
func (a *Adapter) Ping(ctx context.Context) error {
	_, err := a.getPokemon(ctx, "1")
	return err
}

func (a *Adapter) resolveIDs(cfg entities.WizardConfig) []string {
	if cfg.HasSelection() {
		return []string{strings.ToLower(strings.TrimSpace(cfg.SelectedID))}
	}

	count := cfg.RandomCount
	if count <= 0 {
		count = 1
	}
	picked := library.PickN(a.rand, a.maxID, count)
	ids := make([]string, len(picked))
	for i, p := range picked {
		ids[i] = strconv.Itoa(p + 1) // dex ids are 1-based
	}
	return ids
}

func (a *Adapter) getEntry(ctx context.Context, id string) (*entry, error) {
	p, err := a.getPokemon(ctx, id)
	if err != nil {
		return nil, err
	}

	s, err := a.getSpecies(ctx, strconv.Itoa(p.ID))
	if err != nil {
		return nil, err
	}

	return &entry{pokemon: *p, species: *s}, nil
}

func (a *Adapter) getPokemon(ctx context.Context, id string) (*pokemonResponse, error) {
	var p pokemonResponse
	if err := a.getJSON(ctx, "/api/v2/pokemon/"+url.PathEscape(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *Adapter) getSpecies(ctx context.Context, id string) (*speciesResponse, error) {
	var s speciesResponse
	if err := a.getJSON(ctx, "/api/v2/pokemon-species/"+url.PathEscape(id), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (a *Adapter) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "DuobookStudio/1.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("entry not found: %s", path)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (a *Adapter) normalize(entries []*entry, includeImages bool) *entities.IngestedContent {
	pages := make([]entities.IngestedPage, 0, len(entries))
	for i, e := range entries {
		name := titleCase(e.pokemon.Name)

		var lines []entities.IngestedLine
		if includeImages {
			if img := e.pokemon.artworkURL(); img != "" {
				lines = append(lines, entities.IngestedLine{
					ID:   "image",
					Type: entities.LineTypeImage,
					Meta: map[string]string{"url": img},
				})
			}
		}
		lines = append(lines, entities.IngestedLine{
			ID:   "heading",
			Type: entities.LineTypeHeading,
			L1:   name,
		})
		if genus := e.species.englishGenus(); genus != "" {
			lines = append(lines, entities.IngestedLine{
				ID:   "genus",
				Type: entities.LineTypeText,
				L1:   genus,
			})
		}
		if flavor := e.species.englishFlavor(); flavor != "" {
			lines = append(lines, entities.IngestedLine{
				ID:   "flavor",
				Type: entities.LineTypeText,
				L1:   flavor,
			})
		}
		if types := e.pokemon.typeNames(); len(types) > 0 {
			lines = append(lines, entities.IngestedLine{
				ID:   "quiz",
				Type: entities.LineTypeQuiz,
				L1:   fmt.Sprintf("What type is %s?", name),
				Meta: map[string]string{"answer": strings.Join(types, "/")},
			})
		}

		pages = append(pages, entities.IngestedPage{
			Title:  name,
			Number: i + 1,
			Lines:  lines,
		})
	}

	title := "Pokémon Trivia"
	if len(entries) == 1 {
		title = titleCase(entries[0].pokemon.Name)
	}

	return &entities.IngestedContent{
		Title:       title,
		Description: fmt.Sprintf("%d trivia entries from PokeAPI", len(entries)),
		SourceLang:  "en",
		Layout:      entities.LayoutFlashcard,
		Pages:       pages,
		Meta: entities.ContentMeta{
			Source:    a.SourceID(),
			SourceURL: "https://pokeapi.co",
			FetchedAt: time.Now().UTC(),
			License:   a.License(),
		},
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type entry struct {
	pokemon pokemonResponse
	species speciesResponse
}

// pokeapi.co response types

type pokemonResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
		Other        struct {
			OfficialArtwork struct {
				FrontDefault string `json:"front_default"`
			} `json:"official-artwork"`
		} `json:"other"`
	} `json:"sprites"`
	Types []struct {
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
}

func (p *pokemonResponse) artworkURL() string {
	if u := p.Sprites.Other.OfficialArtwork.FrontDefault; u != "" {
		return u
	}
	return p.Sprites.FrontDefault
}

func (p *pokemonResponse) typeNames() []string {
	names := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		names = append(names, t.Type.Name)
	}
	return names
}

type speciesResponse struct {
	FlavorTextEntries []struct {
		FlavorText string `json:"flavor_text"`
		Language   struct {
			Name string `json:"name"`
		} `json:"language"`
	} `json:"flavor_text_entries"`
	Genera []struct {
		Genus    string `json:"genus"`
		Language struct {
			Name string `json:"name"`
		} `json:"language"`
	} `json:"genera"`
}

func (s *speciesResponse) englishFlavor() string {
	for _, e := range s.FlavorTextEntries {
		if e.Language.Name == "en" {
			// Flavor text carries page-break control characters.
			cleaned := strings.NewReplacer("\n", " ", "\f", " ", "­ ", "").Replace(e.FlavorText)
			return strings.Join(strings.Fields(cleaned), " ")
		}
	}
	return ""
}

func (s *speciesResponse) englishGenus() string {
	for _, g := range s.Genera {
		if g.Language.Name == "en" {
			return g.Genus
		}
	}
	return ""
}
