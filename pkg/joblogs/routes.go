package joblogs

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers job log routes on the imports group.
func RegisterRoutes(importsGroup *echo.Group, db *bun.DB) {
	h := &handler{
		jobLogService: NewService(db),
	}

	// GET /imports/:id/logs
	importsGroup.GET("/:id/logs", h.list)
}
