// Package library defines the ingestion contract every content source
// implements and the registry the wizard resolves sources through.
//
// # Architecture
//
// Each external source (scripture API, public-domain text repository,
// museum collection, ...) lives in its own package under internal/sources
// and implements Adapter. Optional capabilities (search, preview, ping) are
// separate interfaces discovered once at registration time, never re-derived
// from the source id at call sites.
//
// Adding a new source:
//
//  1. Create a package under internal/sources (e.g. rijks).
//  2. Define an Adapter struct holding an *http.Client and base URL,
//     embedding the source's fixed LicenseInfo.
//  3. Implement Fetch, plus Searcher/Previewer/Pinger where the source
//     supports them.
//  4. Register it in internal/sources.Catalog.
package library

import (
	"context"

	"github.com/duobook/studio/internal/entities"
)

// Adapter is the ingestion contract implemented once per external source.
//
// Fetch resolves which record(s) to retrieve (SelectedID, SearchQuery, a
// reference locator, or a source-appropriate random/default pick), retrieves
// the raw data, and normalizes it into one IngestedPage per logical unit.
// On transport failure, not-found, or an empty result set it returns a
// descriptive error, never an empty success.
type Adapter interface {
	// SourceID is the stable identifier persisted in project provenance.
	// Renaming one is a breaking change.
	SourceID() string
	DisplayName() string
	// License is the source's fixed classification and the single
	// authoritative copy of it.
	License() entities.LicenseInfo
	Fetch(ctx context.Context, cfg entities.WizardConfig) (*entities.IngestedContent, error)
}

// Searcher is implemented by adapters whose source supports free-text
// search. Search is best-effort: on transport failure it returns an empty
// slice rather than an error, because search must never block manual
// reference entry.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) []entities.SearchResult
}

// Previewer is implemented by adapters that can produce a cheap, truncated
// sample before a full import. A preview need not agree with a later Fetch
// (a random source may sample differently); it only has to be individually
// useful.
type Previewer interface {
	Preview(ctx context.Context, cfg entities.WizardConfig) (*entities.IngestedContent, error)
}

// Pinger is implemented by adapters that can cheaply check whether their
// upstream is reachable. The availability sweep uses it to feed the
// registry's by-availability view.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Capabilities records which optional interfaces an adapter implements.
// Computed once at registration; UI affordances for absent capabilities are
// hidden, not errors.
type Capabilities struct {
	Search  bool `json:"search"`
	Preview bool `json:"preview"`
	Ping    bool `json:"ping"`
}

// CapabilitiesOf inspects an adapter's optional interfaces.
func CapabilitiesOf(a Adapter) Capabilities {
	_, search := a.(Searcher)
	_, preview := a.(Previewer)
	_, ping := a.(Pinger)
	return Capabilities{Search: search, Preview: preview, Ping: ping}
}
