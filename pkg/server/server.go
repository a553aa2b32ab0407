package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/paparr/paparr/pkg/binder"
	"github.com/paparr/paparr/pkg/books"
	"github.com/paparr/paparr/pkg/config"
	"github.com/paparr/paparr/pkg/errcodes"
	"github.com/paparr/paparr/pkg/imports"
	"github.com/paparr/paparr/pkg/joblogs"
	"github.com/paparr/paparr/pkg/worker"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB, pipeline *imports.Pipeline, w *worker.Worker) (*http.Server, error) {
	e, err := newEcho(db, pipeline, w)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func newEcho(db *bun.DB, pipeline *imports.Pipeline, w *worker.Worker) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())

	health.RegisterRoutes(e)

	importsGroup := e.Group("/imports")
	imports.RegisterRoutes(importsGroup, pipeline)
	joblogs.RegisterRoutes(importsGroup, db)

	books.RegisterRoutes(e.Group("/books"), db)
	worker.RegisterRoutes(e.Group("/scans"), w)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
