package imports

import (
	"time"

	"gorm.io/gorm"

	"github.com/duobook/studio/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save writes one provenance row.
func (r *Repository) Save(record *entities.ImportRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	return r.db.Create(record).Error
}

// List retrieves paginated import records, most recent first.
func (r *Repository) List(limit, offset int) ([]entities.ImportRecord, int64, error) {
	var records []entities.ImportRecord
	var total int64

	if err := r.db.Model(&entities.ImportRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&records).Error
	return records, total, err
}

// ListBySource retrieves records for one source, most recent first.
func (r *Repository) ListBySource(sourceID string, limit, offset int) ([]entities.ImportRecord, int64, error) {
	var records []entities.ImportRecord
	var total int64

	query := r.db.Model(&entities.ImportRecord{}).Where("source_id = ?", sourceID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&records).Error
	return records, total, err
}

// DeleteOldRecords removes records older than the given time. Returns the
// number of deleted rows.
func (r *Repository) DeleteOldRecords(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.ImportRecord{})
	return result.RowsAffected, result.Error
}
