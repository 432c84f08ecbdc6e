//go:build integration

// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/go-petr/core-bank/cmd/httpserver"
	"github.com/go-petr/core-bank/internal/middleware"
	"github.com/go-petr/core-bank/pkg/configpkg"
	"github.com/go-petr/core-bank/pkg/dbpkg"

	_ "github.com/lib/pq"
)

const postgresImage = "postgres:16-alpine"

// StartPostgres starts a disposable PostgreSQL container, applies the
// migrations found at migrationURL and returns connection to it.
//
// The returned stop function closes the connection and terminates the container.
func StartPostgres(ctx context.Context, migrationURL string) (*sql.DB, func(), error) {
	container, err := tcpostgres.Run(ctx,
		postgresImage,
		tcpostgres.WithDatabase("core_bank"),
		tcpostgres.WithUsername("root"),
		tcpostgres.WithPassword("secret"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("start postgres container: %w", err)
	}

	terminate := func() {
		_ = container.Terminate(context.Background())
	}

	source, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminate()
		return nil, nil, fmt.Errorf("postgres connection string: %w", err)
	}

	db, err := dbpkg.Setup("postgres", source)
	if err != nil {
		terminate()
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if _, _, err := dbpkg.Migrate(db, migrationURL); err != nil {
		_ = db.Close()
		terminate()

		return nil, nil, fmt.Errorf("migrate %s: %w", migrationURL, err)
	}

	stop := func() {
		_ = db.Close()
		terminate()
	}

	return db, stop, nil
}

// SetupServer returns test server over db that cleans up database after the test.
func SetupServer(t *testing.T, db *sql.DB) *httpserver.Server {
	t.Helper()

	config := configpkg.Config{
		DBDriver:            "postgres",
		LedgerMaxRetries:    3,
		LedgerRetryInterval: time.Millisecond,
		BreakerMaxFailures:  5,
		BreakerOpenTimeout:  time.Second,
	}

	zerolog.SetGlobalLevel(zerolog.FatalLevel)

	logger := middleware.CreateLogger(config)

	gin.SetMode(gin.ReleaseMode)

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		t.Fatalf(`httpserver.New(db, logger, config) returned error: %v`, err)
	}

	t.Cleanup(func() {
		Flush(t, db)
	})

	return server
}

// Flush flushes all db tables without droping.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	var tables string

	const query = `
	SELECT string_agg(table_name, ', ')
	FROM information_schema.tables
	WHERE table_schema='public' AND table_name <> 'schema_migrations';`

	row := db.QueryRow(query)

	err := row.Scan(&tables)
	if err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}

	if _, err := db.Exec(`TRUNCATE TABLE ` + tables + " CASCADE"); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}
