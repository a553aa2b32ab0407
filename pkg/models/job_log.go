package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	JobLogLevelInfo  = "info"
	JobLogLevelWarn  = "warn"
	JobLogLevelError = "error"
)

type JobLog struct {
	bun.BaseModel `bun:"table:job_logs,alias:jl"`

	ID          int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt   time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	ImportJobID int       `bun:",notnull" json:"import_job_id"`
	Level       string    `bun:",notnull" json:"level"`
	Message     string    `bun:",notnull" json:"message"`
	Data        *string   `json:"data,omitempty"`
	StackTrace  *string   `json:"stack_trace,omitempty"`
}
