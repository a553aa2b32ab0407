package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	ImportJobStatusPending          = "pending"
	ImportJobStatusProcessing       = "processing"
	ImportJobStatusAwaitingApproval = "awaiting_approval"
	ImportJobStatusCompleted        = "completed"
	ImportJobStatusFailed           = "failed"
)

// ImportJobStatuses lists every status a job can be in, in lifecycle order.
var ImportJobStatuses = []string{
	ImportJobStatusPending,
	ImportJobStatusProcessing,
	ImportJobStatusAwaitingApproval,
	ImportJobStatusCompleted,
	ImportJobStatusFailed,
}

// IsImportJobStatus reports whether s is one of ImportJobStatuses.
func IsImportJobStatus(s string) bool {
	for _, status := range ImportJobStatuses {
		if status == s {
			return true
		}
	}
	return false
}

type ImportJob struct {
	bun.BaseModel `bun:"table:import_jobs,alias:ij"`

	ID         int                  `bun:",pk,autoincrement" json:"id"`
	CreatedAt  time.Time            `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time            `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt  *time.Time           `json:"deleted_at,omitempty"`
	FilePath   string               `bun:",notnull" json:"file_path"`
	FileHash   string               `bun:",notnull" json:"file_hash"`
	Status     string               `bun:",notnull" json:"status"`
	Candidates []*MetadataCandidate `bun:"rel:has-many,join:id=import_job_id" json:"candidates"`
	Book       *Book                `bun:"rel:has-one,join:id=import_job_id" json:"book,omitempty"`
}

// Candidate returns the job's candidate with the given id, if it was loaded.
func (j *ImportJob) Candidate(id int) *MetadataCandidate {
	for _, c := range j.Candidates {
		if c.ID == id {
			return c
		}
	}
	return nil
}
