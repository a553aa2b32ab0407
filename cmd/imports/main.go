package main

import (
	"os"
	"strconv"

	"github.com/paparr/paparr/pkg/config"
	"github.com/paparr/paparr/pkg/database"
	"github.com/paparr/paparr/pkg/imports"
	"github.com/paparr/paparr/pkg/joblogs"
	"github.com/paparr/paparr/pkg/migrations"
	"github.com/paparr/paparr/pkg/models"
	"github.com/paparr/paparr/pkg/worker"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/urfave/cli/v2"
	"github.com/uptrace/bun"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	if err := newApp(cfg, db).Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func newApp(cfg *config.Config, db *bun.DB) *cli.App {
	pipeline := imports.NewPipelineFromConfig(db, cfg)

	return &cli.App{
		Name:        "imports",
		Usage:       "inspect and resolve import jobs",
		Description: "CLI to review import jobs, accept candidates and trigger scans",
		Before: func(c *cli.Context) error {
			_, err := migrations.BringUpToDate(c.Context, db)
			return err
		},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list import jobs, newest first",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "status", Aliases: []string{"s"}, Usage: "only show jobs with this status"},
					&cli.IntFlag{Name: "limit", Value: 50},
					&cli.IntFlag{Name: "offset"},
				},
				Action: func(c *cli.Context) error {
					statuses := c.StringSlice("status")
					for _, s := range statuses {
						if !models.IsImportJobStatus(s) {
							return errors.Errorf("unknown status %q", s)
						}
					}

					limit, offset := c.Int("limit"), c.Int("offset")
					jobs, total, err := pipeline.Service().ListImportJobsWithTotal(c.Context, imports.ListImportJobsOptions{
						Limit:    &limit,
						Offset:   &offset,
						Statuses: statuses,
					})
					if err != nil {
						return err
					}
					newRenderer(c.App.Writer).jobs(jobs, total)
					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "show a job and its candidates",
				ArgsUsage: "<job-id>",
				Action: func(c *cli.Context) error {
					id, err := intArg(c, 0, "job-id")
					if err != nil {
						return err
					}
					job, err := pipeline.RetrieveJob(c.Context, id)
					if err != nil {
						return err
					}
					newRenderer(c.App.Writer).job(job)
					return nil
				},
			},
			{
				Name:      "accept",
				Usage:     "accept a candidate and file the book in the library",
				ArgsUsage: "<job-id> <candidate-id>",
				Action: func(c *cli.Context) error {
					id, err := intArg(c, 0, "job-id")
					if err != nil {
						return err
					}
					candidateID, err := intArg(c, 1, "candidate-id")
					if err != nil {
						return err
					}
					job, err := pipeline.Accept(c.Context, id, candidateID)
					if err != nil {
						return err
					}
					newRenderer(c.App.Writer).job(job)
					return nil
				},
			},
			{
				Name:      "retry",
				Usage:     "reset a failed job so the next scan processes it again",
				ArgsUsage: "<job-id>",
				Action: func(c *cli.Context) error {
					id, err := intArg(c, 0, "job-id")
					if err != nil {
						return err
					}
					job, err := pipeline.Retry(c.Context, id)
					if err != nil {
						return err
					}
					newRenderer(c.App.Writer).job(job)
					return nil
				},
			},
			{
				Name:      "logs",
				Usage:     "print the log of a job",
				ArgsUsage: "<job-id>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "level", Aliases: []string{"l"}},
				},
				Action: func(c *cli.Context) error {
					id, err := intArg(c, 0, "job-id")
					if err != nil {
						return err
					}
					if _, err := pipeline.RetrieveJob(c.Context, id); err != nil {
						return err
					}
					logs, err := joblogs.NewService(db).ListJobLogs(c.Context, joblogs.ListJobLogsOptions{
						ImportJobID: id,
						Levels:      c.StringSlice("level"),
					})
					if err != nil {
						return err
					}
					newRenderer(c.App.Writer).logs(logs)
					return nil
				},
			},
			{
				Name:  "scan",
				Usage: "scan the ingest directory once",
				Action: func(c *cli.Context) error {
					w := worker.New(cfg, pipeline)
					result, err := w.ScanOnce(c.Context)
					if err != nil {
						return err
					}
					newRenderer(c.App.Writer).scan(result)
					return nil
				},
			},
		},
	}
}

func intArg(c *cli.Context, n int, name string) (int, error) {
	raw := c.Args().Get(n)
	if raw == "" {
		return 0, errors.Errorf("missing %s argument", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}
