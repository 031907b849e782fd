// Package audit records import provenance: which source, which query, how
// many pages, under which license tier. It exists for accountability, not
// analytics; failed attempts are recorded alongside successes.
package audit

import (
	"log"
	"time"

	"github.com/duobook/studio/internal/database/imports"
	"github.com/duobook/studio/internal/entities"
)

type Service struct {
	repo *imports.Repository
}

func NewService(repo *imports.Repository) *Service {
	return &Service{repo: repo}
}

// Record writes one provenance row for a finished import attempt.
func (s *Service) Record(sourceID string, tier entities.LicenseType, content *entities.IngestedContent, cfg entities.WizardConfig, duration time.Duration, importErr error) error {
	return s.repo.Save(s.buildRecord(sourceID, tier, content, cfg, duration, importErr))
}

// RecordAsync records in the background. Recording is best-effort: a write
// failure is logged and never fails the import itself.
func (s *Service) RecordAsync(sourceID string, tier entities.LicenseType, content *entities.IngestedContent, cfg entities.WizardConfig, duration time.Duration, importErr error) {
	record := s.buildRecord(sourceID, tier, content, cfg, duration, importErr)
	go func() {
		if err := s.repo.Save(record); err != nil {
			log.Printf("Failed to record import for %s: %v", sourceID, err)
		}
	}()
}

func (s *Service) buildRecord(sourceID string, tier entities.LicenseType, content *entities.IngestedContent, cfg entities.WizardConfig, duration time.Duration, importErr error) *entities.ImportRecord {
	record := &entities.ImportRecord{
		SourceID:    sourceID,
		LicenseTier: tier,
		Query:       truncate(cfg.SearchQuery, 512),
		Succeeded:   importErr == nil,
		DurationMS:  duration.Milliseconds(),
	}
	if content != nil {
		record.Title = truncate(content.Title, 512)
		record.Pages = len(content.Pages)
	}
	if importErr != nil {
		record.ErrorMessage = truncate(importErr.Error(), 1024)
	}
	return record
}

// History retrieves paginated provenance rows, newest first. Pass an empty
// sourceID for all sources.
func (s *Service) History(sourceID string, limit, offset int) ([]entities.ImportRecord, int64, error) {
	if sourceID == "" {
		return s.repo.List(limit, offset)
	}
	return s.repo.ListBySource(sourceID, limit, offset)
}

// DeleteOldRecords removes provenance older than the retention window.
func (s *Service) DeleteOldRecords(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldRecords(cutoff)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
