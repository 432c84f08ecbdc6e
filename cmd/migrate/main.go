// Package main applies pending database migrations.
package main

import (
	"github.com/rs/zerolog/log"

	"github.com/go-petr/core-bank/internal/middleware"
	"github.com/go-petr/core-bank/pkg/configpkg"
	"github.com/go-petr/core-bank/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}
	defer db.Close()

	before, after, err := dbpkg.Migrate(db, config.MigrationURL)
	if err != nil {
		logger.Fatal().Err(err).Uint("version", before).Msg("cannot migrate database")
	}

	logger.Info().Uint("from", before).Uint("to", after).Msg("database migrated")
}
