package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"marketplace-ads/db/migrations"
	"marketplace-ads/internal/config/configs"
	"marketplace-ads/internal/db"
)

const driverName = "sqlite"

func dsn(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate", path)
}

// Open opens the database at cfg.Path, migrates it to the current schema
// and verifies the connection. The caller must close the returned DB.
func Open(ctx context.Context, cfg configs.SQLite) (*sqlx.DB, error) {
	if err := migrateSchema(cfg.Path); err != nil {
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}

	conn, err := sqlx.Open(driverName, dsn(cfg.Path))
	if err != nil {
		return nil, err
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = conn.PingContext(ctxPing); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// migrateSchema runs on its own handle because closing the migrate
// instance also closes the database it was given.
func migrateSchema(path string) error {
	handle, err := sql.Open(driverName, dsn(path))
	if err != nil {
		return err
	}
	driver, err := sqlitemigrate.WithInstance(handle, &sqlitemigrate.Config{})
	if err != nil {
		handle.Close()
		return err
	}
	source, err := iofs.New(migrations.SQLite(), ".")
	if err != nil {
		handle.Close()
		return err
	}
	mg, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		handle.Close()
		return err
	}
	defer mg.Close()

	return db.Apply(mg)
}
