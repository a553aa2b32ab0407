package imports

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers import job routes on the /imports group.
func RegisterRoutes(g *echo.Group, pipeline *Pipeline) {
	h := &handler{
		pipeline: pipeline,
	}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("/:id/accept/:candidateId", h.accept)
	g.POST("/:id/retry", h.retry)
}
