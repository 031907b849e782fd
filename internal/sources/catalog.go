// Package sources assembles the compiled-in source catalog.
package sources

import (
	"github.com/duobook/studio/internal/library"
	"github.com/duobook/studio/internal/sources/artic"
	"github.com/duobook/studio/internal/sources/bibleapi"
	"github.com/duobook/studio/internal/sources/freedict"
	"github.com/duobook/studio/internal/sources/gutendex"
	"github.com/duobook/studio/internal/sources/pokeapi"
	"github.com/duobook/studio/internal/sources/wikipedia"
)

// Catalog builds the registry holding every shipped source. Registration
// order is the order source tiles appear in the wizard. The shared Rand
// drives random picks in the sources that support them; tests inject a
// seeded one for determinism.
func Catalog(r library.Rand) *library.Registry {
	registry := library.NewRegistry()
	registry.MustRegister(bibleapi.New())
	registry.MustRegister(gutendex.New(r))
	registry.MustRegister(wikipedia.New())
	registry.MustRegister(freedict.New())
	registry.MustRegister(artic.New(r))
	registry.MustRegister(pokeapi.New(r))
	return registry
}
