package library

import (
	"context"
	"testing"

	"github.com/duobook/studio/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	id      string
	license entities.LicenseInfo
}

func (s *stubAdapter) SourceID() string              { return s.id }
func (s *stubAdapter) DisplayName() string           { return s.id }
func (s *stubAdapter) License() entities.LicenseInfo { return s.license }
func (s *stubAdapter) Fetch(ctx context.Context, cfg entities.WizardConfig) (*entities.IngestedContent, error) {
	return nil, nil
}

type stubSearchAdapter struct{ stubAdapter }

func (s *stubSearchAdapter) Search(ctx context.Context, query string, limit int) []entities.SearchResult {
	return nil
}

func safeLicense() entities.LicenseInfo {
	return entities.LicenseInfo{Type: entities.LicenseCommercialSafe, Name: "Public Domain"}
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry()

	entry, ok := r.Get("no-such-source")
	assert.Nil(t, entry)
	assert.False(t, ok)
	assert.False(t, r.Has("no-such-source"))
}

func TestRegistryDuplicateRejected(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubAdapter{id: "a", license: safeLicense()}))

	err := r.Register(&stubAdapter{id: "a", license: safeLicense()})
	assert.Error(t, err)
	assert.Len(t, r.List(), 1)
}

func TestRegistryRejectsInvalidLicense(t *testing.T) {
	r := NewRegistry()

	// Personal-only without warning text violates the tier invariant.
	err := r.Register(&stubAdapter{id: "bad", license: entities.LicenseInfo{
		Type: entities.LicensePersonalOnly,
		Name: "Fan Content",
	}})
	assert.Error(t, err)
	assert.False(t, r.Has("bad"))
}

func TestRegistryTierView(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubAdapter{id: "safe", license: safeLicense()}))
	require.NoError(t, r.Register(&stubAdapter{id: "credited", license: entities.LicenseInfo{
		Type:            entities.LicenseAttribution,
		Name:            "CC BY-SA 4.0",
		AttributionText: "Content from Credited",
	}}))
	require.NoError(t, r.Register(&stubAdapter{id: "gated", license: entities.LicenseInfo{
		Type:        entities.LicensePersonalOnly,
		Name:        "Fan Content Policy",
		WarningText: "Personal projects only.",
	}}))

	assert.Equal(t, []string{"safe"}, r.ListByTier(entities.LicenseCommercialSafe))
	assert.Equal(t, []string{"credited"}, r.ListByTier(entities.LicenseAttribution))
	assert.Equal(t, []string{"gated"}, r.ListByTier(entities.LicensePersonalOnly))
}

func TestRegistryCapabilitiesComputedAtRegistration(t *testing.T) {
	r := NewRegistry()
	plain := &stubAdapter{id: "plain", license: safeLicense()}
	searchable := &stubSearchAdapter{stubAdapter{id: "searchable", license: safeLicense()}}
	require.NoError(t, r.Register(plain))
	require.NoError(t, r.Register(searchable))

	entry, _ := r.Get("plain")
	assert.False(t, entry.Capabilities.Search)

	entry, _ = r.Get("searchable")
	assert.True(t, entry.Capabilities.Search)
	assert.False(t, entry.Capabilities.Preview)
}

func TestRegistryAvailability(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubAdapter{id: "up", license: safeLicense()}))
	require.NoError(t, r.Register(&stubAdapter{id: "down", license: safeLicense()}))

	// Sources default to available.
	assert.True(t, r.Available("down"))
	assert.ElementsMatch(t, []string{"up", "down"}, r.ListAvailable())

	r.SetAvailable("down", false)
	assert.False(t, r.Available("down"))
	assert.Equal(t, []string{"up"}, r.ListAvailable())

	r.SetAvailable("down", true)
	assert.True(t, r.Available("down"))

	// Unknown ids are ignored, not recorded.
	r.SetAvailable("ghost", false)
	assert.ElementsMatch(t, []string{"up", "down"}, r.ListAvailable())
}

func TestPickN(t *testing.T) {
	r := NewRand(42)

	picked := PickN(r, 10, 3)
	assert.Len(t, picked, 3)
	seen := make(map[int]bool)
	for _, i := range picked {
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, 10)
		assert.False(t, seen[i], "duplicate index %d", i)
		seen[i] = true
	}

	assert.Len(t, PickN(r, 2, 5), 2)
	assert.Nil(t, PickN(r, 0, 3))
	assert.Nil(t, PickN(r, 3, 0))
}
