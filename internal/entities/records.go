package entities

import "time"

// ImportRecord is the provenance row written after every completed or
// failed import attempt. Only provenance is persisted; the imported
// content itself never touches storage.
type ImportRecord struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	SourceID     string      `gorm:"index;size:64" json:"source_id"`
	LicenseTier  LicenseType `gorm:"size:32" json:"license_tier"`
	Title        string      `gorm:"size:512" json:"title,omitempty"`
	Query        string      `gorm:"size:512" json:"query,omitempty"`
	Pages        int         `json:"pages"`
	Succeeded    bool        `gorm:"index" json:"succeeded"`
	ErrorMessage string      `gorm:"size:1024" json:"error_message,omitempty"`
	DurationMS   int64       `json:"duration_ms"`
	CreatedAt    time.Time   `gorm:"index" json:"created_at"`
}
