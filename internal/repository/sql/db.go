package sql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/iyhunko/magical-emporium/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// DB is a database handle together with the engine it talks to. Queries are
// written with '?' placeholders and rebound for postgres.
type DB struct {
	*sql.DB
	Driver string
}

// Rebind rewrites '?' placeholders into the engine's native form.
func (db *DB) Rebind(query string) string {
	if db.Driver != config.DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func StartDB(ctx context.Context, dbConf config.DB) (*DB, error) {
	dbCon, err := startDBConnection(ctx, dbConf)
	if err != nil {
		slog.Error("failed to initialize DB connection", slog.Any("err", err))
		return nil, fmt.Errorf("failed to initialize DB connection: %w", err)
	}
	slog.Info("DB connection done", slog.String("driver", dbCon.Driver))
	if err = RunMigrations(dbCon); err != nil {
		slog.Error("failed to run migrations", slog.Any("err", err))
		_ = dbCon.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("DB migration done")
	return dbCon, nil
}

func sqliteDSN(path string) string {
	params := url.Values{}
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Set("_time_format", "sqlite")
	return "file:" + path + "?" + params.Encode()
}

func startDBConnection(ctx context.Context, conf config.DB) (*DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch conf.Driver {
	case config.DriverPostgres:
		dsnTmp := "host=%s user=%s password=%s dbname=%s port=%s sslmode=disable"
		dsn := fmt.Sprintf(dsnTmp, conf.Host, conf.User, conf.Password, conf.Name, conf.Port)
		db, err = sql.Open("pgx", dsn)
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(conf.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		db, err = sql.Open("sqlite", sqliteDSN(conf.Path))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, Driver: conf.Driver}, nil
}

// RunMigrations applies the embedded migrations for the handle's engine.
func RunMigrations(db *DB) error {
	var (
		driver database.Driver
		err    error
	)
	switch db.Driver {
	case config.DriverPostgres:
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	case config.DriverSQLite:
		driver, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	default:
		return fmt.Errorf("unsupported database driver %q", db.Driver)
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+db.Driver)
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, db.Driver, driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
