package models

import (
	"time"

	"github.com/uptrace/bun"
)

type MetadataCandidate struct {
	bun.BaseModel `bun:"table:metadata_candidates,alias:mc"`

	ID              int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt       time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	ImportJobID     int       `bun:",notnull" json:"import_job_id"`
	Title           string    `bun:",notnull" json:"title"`
	Author          string    `bun:",notnull" json:"author"`
	Source          string    `bun:",notnull" json:"source"`
	ExternalID      string    `bun:",notnull" json:"external_id"`
	ConfidenceScore float64   `bun:",notnull" json:"confidence_score"`
}
