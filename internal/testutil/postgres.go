// Package testutil provides a disposable PostgreSQL fixture for repository tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/fightsim/internal/config"
	"github.com/cory-johannsen/fightsim/internal/storage/postgres"
)

// PostgresContainer is a running PostgreSQL container and an admin pool on
// its default database.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	Config    config.DatabaseConfig
}

var (
	sharedOnce sync.Once
	shared     *PostgresContainer
	sharedErr  error
	databases  atomic.Int64
)

// StartPostgres starts a PostgreSQL container and connects to it. The caller
// owns the container and must call Terminate.
//
// Precondition: Docker must be available.
func StartPostgres(ctx context.Context) (*PostgresContainer, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("starting postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("getting container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("getting mapped port: %w", err)
	}

	cfg := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "test",
		Password:        "test",
		Name:            "test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	return &PostgresContainer{container: container, Pool: pool, Config: cfg}, nil
}

// Terminate closes the admin pool and removes the container.
func (pc *PostgresContainer) Terminate(ctx context.Context) error {
	pc.Pool.Close()
	return pc.container.Terminate(ctx)
}

// NewPostgresContainer starts a container owned by t and removed when t ends.
// The test is skipped in -short mode.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in -short mode")
	}
	start := time.Now()
	pc, err := StartPostgres(context.Background())
	if err != nil {
		t.Fatalf("%v [%s]", err, time.Since(start))
	}
	t.Logf("postgres container started [%s]", time.Since(start))
	t.Cleanup(func() { _ = pc.Terminate(context.Background()) })
	return pc
}

// MigrationsDir returns the absolute path of the repository's migrations directory.
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

// ApplyMigrations runs every up migration in MigrationsDir against the
// database at dsn with golang-migrate, the same way cmd/migrate does.
func ApplyMigrations(dsn string) error {
	m, err := migrate.New("file://"+MigrationsDir(), dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// NewPool returns a pool on a freshly created and migrated database. All
// tests in one binary share a single container, started on first use and
// reaped by testcontainers when the process exits; each call gets its own
// database, dropped when t ends. The test is skipped in -short mode.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in -short mode")
	}
	ctx := context.Background()
	sharedOnce.Do(func() { shared, sharedErr = StartPostgres(ctx) })
	if sharedErr != nil {
		t.Fatalf("shared postgres container: %v", sharedErr)
	}

	start := time.Now()
	name := fmt.Sprintf("test_%d", databases.Add(1))
	if _, err := shared.Pool.DB().Exec(ctx, "CREATE DATABASE "+name); err != nil {
		t.Fatalf("creating database %s: %v", name, err)
	}
	cfg := shared.Config
	cfg.Name = name
	if err := ApplyMigrations(cfg.DSN()); err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		t.Fatalf("connecting to %s: %v", name, err)
	}
	t.Logf("database %s ready [%s]", name, time.Since(start))

	t.Cleanup(func() {
		pool.Close()
		_, _ = shared.Pool.DB().Exec(ctx, "DROP DATABASE IF EXISTS "+name+" WITH (FORCE)")
	})
	return pool.DB()
}
