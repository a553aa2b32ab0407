package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/paparr/paparr/pkg/config"
	"github.com/paparr/paparr/pkg/database"
	"github.com/paparr/paparr/pkg/migrations"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
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

	if err := newApp(db, os.Stdout).Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

// newApp builds the migrations CLI. The api and imports binaries migrate on
// startup; this one is for operators inspecting or rolling back the schema of
// the paparr database.
func newApp(db *bun.DB, out io.Writer) *cli.App {
	migrator := migrate.NewMigrator(db, migrations.Migrations)

	return &cli.App{
		Name:        "migrations",
		Usage:       "manage the paparr database schema",
		Description: "Apply, roll back and inspect the migrations behind import jobs, candidates, books and job logs",
		Writer:      out,
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create the migration bookkeeping tables",
				Action: func(c *cli.Context) error {
					return migrator.Init(c.Context)
				},
			},
			{
				Name:  "migrate",
				Usage: "apply every pending migration",
				Action: func(c *cli.Context) error {
					group, err := migrations.BringUpToDate(c.Context, db)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Fprintln(out, "Schema is up to date")
						return nil
					}
					fmt.Fprintf(out, "Migrated to %s\n", group)
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "roll back the last migration group",
				Action: func(c *cli.Context) error {
					group, err := migrator.Rollback(c.Context)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Fprintln(out, "Nothing to roll back")
						return nil
					}
					fmt.Fprintf(out, "Rolled back %s\n", group)
					return nil
				},
			},
			{
				Name:      "create",
				Usage:     "create a Go migration in pkg/migrations",
				ArgsUsage: "<name words...>",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return errors.New("a migration name is required")
					}
					name := strings.Join(c.Args().Slice(), "_")
					mf, err := migrator.CreateGoMigration(c.Context, name, migrate.WithGoTemplate(migrationTemplate))
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Created migration %s (%s)\n", mf.Name, mf.Path)
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print applied and pending migrations",
				Action: func(c *cli.Context) error {
					ms, err := migrator.MigrationsWithStatus(c.Context)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Migrations: %s\n", ms)
					fmt.Fprintf(out, "Pending: %s\n", ms.Unapplied())
					fmt.Fprintf(out, "Last group: %s\n", ms.LastGroup())
					return nil
				},
			},
		},
	}
}

const migrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
