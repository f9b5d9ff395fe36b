package main

import (
	"embed"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/archlens/archlens/internal/database"
)

//go:embed all:../../migrations
var migrationsFS embed.FS

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "apply pending Postgres migrations for the discovery and tenant-threshold tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbCfg := database.DefaultConfig()
		dbCfg.LoadFromEnv()
		if err := dbCfg.Validate(); err != nil {
			return err
		}

		db, err := database.Open(dbCfg)
		if err != nil {
			return err
		}
		defer db.Close()

		goose.SetBaseFS(migrationsFS)
		if err := goose.SetDialect("postgres"); err != nil {
			return err
		}

		return goose.Up(db.DB, "migrations")
	},
}
