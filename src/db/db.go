package db

import (
	"context"
	"embed"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Connect opens the pool and pings it, retrying while the database is still
// coming up (e.g. docker-compose startup races).
func Connect(url string) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	err := retry.Do(
		func() error {
			p, err := pgxpool.New(context.Background(), url)
			if err != nil {
				return err
			}
			if err := p.Ping(context.Background()); err != nil {
				p.Close()
				return err
			}
			pool = p
			return nil
		},
		retry.Attempts(5),
		retry.Delay(2*time.Second),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("INFO: DB not ready (attempt %d): %v", n+1, err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// Migrate applies the embedded schema migrations.
func Migrate(url string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(url))
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// migrate's pgx/v5 driver registers itself under the pgx5 scheme.
func migrateURL(url string) string {
	if strings.HasPrefix(url, "postgresql://") {
		return "pgx5://" + strings.TrimPrefix(url, "postgresql://")
	}
	return "pgx5://" + strings.TrimPrefix(url, "postgres://")
}
