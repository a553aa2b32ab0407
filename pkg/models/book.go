package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID          int       `bun:",pk,autoincrement" json:"id"`
	ImportJobID *int      `json:"import_job_id"`
	Title       string    `bun:",notnull" json:"title"`
	Author      string    `bun:",notnull" json:"author"`
	Source      string    `bun:",notnull" json:"source"`
	ExternalID  string    `bun:",notnull" json:"external_id"`
	FilePath    string    `bun:",notnull" json:"file_path"`
	ImportedAt  time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"imported_at"`
}
