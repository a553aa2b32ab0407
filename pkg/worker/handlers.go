package worker

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	worker *Worker
}

// create queues a scan for the poller. The scan itself runs asynchronously.
func (h *handler) create(c echo.Context) error {
	resp := struct {
		Queued bool `json:"queued"`
	}{h.worker.Trigger()}

	return errors.WithStack(c.JSON(http.StatusAccepted, resp))
}
