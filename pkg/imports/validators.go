package imports

type ListImportJobsQuery struct {
	Limit  int      `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=100"`
	Offset int      `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Status []string `query:"status" json:"status,omitempty" validate:"dive,import_status"`
}
