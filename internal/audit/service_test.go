package audit

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duobook/studio/internal/database"
	"github.com/duobook/studio/internal/database/imports"
	"github.com/duobook/studio/internal/entities"
)

func newService(t *testing.T) *Service {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewService(imports.NewRepository(db.DB))
}

func sampleContent() *entities.IngestedContent {
	return &entities.IngestedContent{
		Title: "Genesis 1",
		Pages: []entities.IngestedPage{{Number: 1}, {Number: 2}},
	}
}

func TestRecordSuccessfulImport(t *testing.T) {
	service := newService(t)

	err := service.Record("bible-api", entities.LicenseCommercialSafe, sampleContent(),
		entities.WizardConfig{SearchQuery: "genesis"}, 120*time.Millisecond, nil)
	require.NoError(t, err)

	records, total, err := service.History("", 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	record := records[0]
	assert.Equal(t, "bible-api", record.SourceID)
	assert.Equal(t, entities.LicenseCommercialSafe, record.LicenseTier)
	assert.Equal(t, "Genesis 1", record.Title)
	assert.Equal(t, 2, record.Pages)
	assert.True(t, record.Succeeded)
	assert.Empty(t, record.ErrorMessage)
	assert.EqualValues(t, 120, record.DurationMS)
}

func TestRecordFailedImport(t *testing.T) {
	service := newService(t)

	err := service.Record("gutendex", entities.LicenseCommercialSafe, nil,
		entities.WizardConfig{}, time.Second, errors.New("book not found"))
	require.NoError(t, err)

	records, _, err := service.History("gutendex", 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Succeeded)
	assert.Equal(t, "book not found", records[0].ErrorMessage)
	assert.Zero(t, records[0].Pages)
}

func TestHistoryFiltersBySource(t *testing.T) {
	service := newService(t)

	require.NoError(t, service.Record("bible-api", entities.LicenseCommercialSafe, sampleContent(), entities.WizardConfig{}, 0, nil))
	require.NoError(t, service.Record("wikipedia", entities.LicenseAttribution, sampleContent(), entities.WizardConfig{}, 0, nil))

	records, total, err := service.History("wikipedia", 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "wikipedia", records[0].SourceID)
}

func TestErrorMessageTruncated(t *testing.T) {
	service := newService(t)

	long := strings.Repeat("x", 5000)
	require.NoError(t, service.Record("artic", entities.LicenseAttribution, nil,
		entities.WizardConfig{}, 0, errors.New(long)))

	records, _, err := service.History("artic", 1, 0)
	require.NoError(t, err)
	assert.Len(t, records[0].ErrorMessage, 1024)
	assert.True(t, strings.HasSuffix(records[0].ErrorMessage, "..."))
}

func TestDeleteOldRecords(t *testing.T) {
	service := newService(t)
	repo := service.repo

	old := &entities.ImportRecord{SourceID: "pokeapi", CreatedAt: time.Now().Add(-72 * time.Hour)}
	fresh := &entities.ImportRecord{SourceID: "pokeapi", CreatedAt: time.Now()}
	require.NoError(t, repo.Save(old))
	require.NoError(t, repo.Save(fresh))

	deleted, err := service.DeleteOldRecords(24 * time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, total, err := service.History("pokeapi", 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
