package integration

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iyhunko/magical-emporium/internal/config"
	reposql "github.com/iyhunko/magical-emporium/internal/repository/sql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

// TestDB holds the test database connection and its container
type TestDB struct {
	DB       *reposql.DB
	Pool     *dockertest.Pool
	Resource *dockertest.Resource
}

// SetupTestDB starts a PostgreSQL container using dockertest and opens it
// through the application's store, which applies the embedded migrations.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Could not construct docker pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("Docker is not available: %s", err)
	}

	// Set max wait time for Docker operations
	pool.MaxWait = 120 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_USER=testuser",
			"POSTGRES_DB=testdb",
			"listen_addresses='*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	// Set container to expire after 2 minutes to avoid orphaned containers
	if err := resource.Expire(120); err != nil {
		t.Fatalf("Could not set expiration: %s", err)
	}

	dbConf := config.DB{
		Driver:   config.DriverPostgres,
		Host:     "localhost",
		Port:     resource.GetPort("5432/tcp"),
		User:     "testuser",
		Password: "secret",
		Name:     "testdb",
	}
	log.Println("Connecting to database on port: ", dbConf.Port)

	var db *reposql.DB
	if err = pool.Retry(func() error {
		var err error
		db, err = reposql.StartDB(context.Background(), dbConf)
		return err
	}); err != nil {
		_ = pool.Purge(resource)
		t.Fatalf("Could not connect to docker: %s", err)
	}

	return &TestDB{
		DB:       db,
		Pool:     pool,
		Resource: resource,
	}
}

// Cleanup closes the database connection and purges the Docker container
func (tdb *TestDB) Cleanup(t *testing.T) {
	t.Helper()

	if tdb.DB != nil {
		if err := tdb.DB.Close(); err != nil {
			t.Errorf("Could not close database: %s", err)
		}
	}

	if tdb.Pool != nil && tdb.Resource != nil {
		if err := tdb.Pool.Purge(tdb.Resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	}
}

// TruncateTables empties the products table and restarts its id sequence
func (tdb *TestDB) TruncateTables(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	tables := []string{"products"}

	for _, table := range tables {
		_, err := tdb.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table))
		if err != nil {
			t.Fatalf("Could not truncate table %s: %s", table, err)
		}
	}
}

// StubGenerator returns canned content and writes a real PNG for the image call.
type StubGenerator struct {
	Description    string
	ImagePrompt    string
	DescriptionErr error
	ImageErr       error
}

func (g *StubGenerator) GenerateDescription(_ context.Context, _ string) (string, error) {
	if g.DescriptionErr != nil {
		return "", g.DescriptionErr
	}
	return g.Description, nil
}

func (g *StubGenerator) GenerateImagePrompt(_ context.Context, _ string) (string, error) {
	return g.ImagePrompt, nil
}

func (g *StubGenerator) GenerateImage(_ context.Context, _ string, size int, outputPath string) (string, error) {
	if g.ImageErr != nil {
		return "", g.ImageErr
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return outputPath, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, size, size)))
}
