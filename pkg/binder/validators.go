package binder

import (
	"github.com/go-playground/validator/v10"
	"github.com/paparr/paparr/pkg/models"
)

const importStatus = "import_status"

// importStatusValidator accepts the empty string or any known import job
// status.
func importStatusValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.IsImportJobStatus(value)
}
