package imports

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/paparr/paparr/pkg/errcodes"
	"github.com/paparr/paparr/pkg/models"
	"github.com/pkg/errors"
)

type handler struct {
	pipeline *Pipeline
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListImportJobsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	jobs, total, err := h.pipeline.Service().ListImportJobsWithTotal(ctx, ListImportJobsOptions{
		Limit:    &params.Limit,
		Offset:   &params.Offset,
		Statuses: params.Status,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Jobs  []*models.ImportJob `json:"jobs"`
		Total int                 `json:"total"`
	}{jobs, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Import job")
	}

	job, err := h.pipeline.RetrieveJob(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, job))
}

func (h *handler) accept(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Import job")
	}
	candidateID, err := strconv.Atoi(c.Param("candidateId"))
	if err != nil {
		return errcodes.BadRequest("candidate not found for this job")
	}

	job, err := h.pipeline.Accept(ctx, id, candidateID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, job))
}

func (h *handler) retry(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Import job")
	}

	job, err := h.pipeline.Retry(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, job))
}
