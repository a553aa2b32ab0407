package main

import (
	"context"
	"net"
	"net/http"

	"github.com/paparr/paparr/pkg/config"
	"github.com/paparr/paparr/pkg/database"
	"github.com/paparr/paparr/pkg/imports"
	"github.com/paparr/paparr/pkg/migrations"
	"github.com/paparr/paparr/pkg/server"
	"github.com/paparr/paparr/pkg/version"
	"github.com/paparr/paparr/pkg/worker"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting paparr", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	pipeline := imports.NewPipelineFromConfig(db, cfg)
	wrkr := worker.New(cfg, pipeline)

	srv, err := server.New(cfg, db, pipeline, wrkr)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", srv.Addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}
		log.Info("server started", logger.Data{"addr": listener.Addr().String()})

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	wrkr.Start(ctx)
	log.Info("worker started", logger.Data{
		"ingest_path":   cfg.IngestPath,
		"library_path":  cfg.LibraryPath,
		"poll_interval": cfg.PollInterval().String(),
	})

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	wrkr.Shutdown()
	log.Info("worker shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}
