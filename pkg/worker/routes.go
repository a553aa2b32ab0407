package worker

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers scan routes on the /scans group.
func RegisterRoutes(g *echo.Group, w *Worker) {
	h := &handler{worker: w}

	g.POST("", h.create)
}
