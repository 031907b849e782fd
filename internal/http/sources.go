package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/duobook/studio/internal/entities"
	"github.com/duobook/studio/internal/library"
	"github.com/duobook/studio/internal/license"
)

const defaultSearchLimit = 10

// SourceTile is the catalog entry rendered as a picker tile: identity,
// license tier and which affordances to show.
type SourceTile struct {
	ID           string               `json:"id"`
	DisplayName  string               `json:"display_name"`
	Tier         entities.LicenseType `json:"tier"`
	License      entities.LicenseInfo `json:"license"`
	Capabilities library.Capabilities `json:"capabilities"`
	Available    bool                 `json:"available"`
}

type SourcesController struct {
	registry *library.Registry
}

func NewSourcesController(registry *library.Registry) *SourcesController {
	return &SourcesController{registry: registry}
}

// ListSources returns every registered source as a tile, optionally
// filtered by ?tier=.
func (s *SourcesController) ListSources(c *gin.Context) {
	ids := s.registry.List()
	if tier := c.Query("tier"); tier != "" {
		ids = s.registry.ListByTier(entities.LicenseType(tier))
	}

	tiles := make([]SourceTile, 0, len(ids))
	for _, id := range ids {
		entry, ok := s.registry.Get(id)
		if !ok {
			continue
		}
		tiles = append(tiles, s.tile(id, entry))
	}
	c.JSON(http.StatusOK, gin.H{"sources": tiles})
}

// GetSource returns one tile plus the gate warning shown before a
// personal-only import.
func (s *SourcesController) GetSource(c *gin.Context) {
	id := c.Param("id")
	entry, ok := s.registry.Get(id)
	if !ok {
		respondNotFound(c, "source")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"source":  s.tile(id, entry),
		"warning": license.WarningFor(entry.Adapter.License()),
	})
}

// SearchSource runs a free-text search against one source. Sources without
// the search capability report it as unsupported; clients hide the search
// box for them instead of calling this.
func (s *SourcesController) SearchSource(c *gin.Context) {
	entry, ok := s.registry.Get(c.Param("id"))
	if !ok {
		respondNotFound(c, "source")
		return
	}

	searcher, ok := entry.Adapter.(library.Searcher)
	if !ok {
		respondBadRequest(c, "source does not support search")
		return
	}

	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "q is required")
		return
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondBadRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}

	results := searcher.Search(c.Request.Context(), query, limit)
	if results == nil {
		results = []entities.SearchResult{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *SourcesController) tile(id string, entry *library.Entry) SourceTile {
	info := entry.Adapter.License()
	return SourceTile{
		ID:           id,
		DisplayName:  entry.Adapter.DisplayName(),
		Tier:         info.Type,
		License:      info,
		Capabilities: entry.Capabilities,
		Available:    s.registry.Available(id),
	}
}
