//go:build integration_pg

// Package pgtest starts a throwaway Postgres for integration tests and
// returns a store with the schema applied
package pgtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"callcrm/internal/platform/store"
	"callcrm/internal/platform/store/schema"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Start runs postgres:16-alpine, applies the schema and returns the TxRunner.
// The container is terminated via t.Cleanup.
func Start(t *testing.T) store.TxRunner {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "callcrm",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/callcrm?sslmode=disable", host, port.Port())
	s, err := store.Open(ctx, store.Config{PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 4}})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	if _, err := schema.Apply(ctx, s.PG); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return s.PG
}

// Seed inserts one user and one company and returns their ids
func Seed(t *testing.T, db store.TxRunner, target *int, createdAt time.Time) (userID, companyID string) {
	t.Helper()
	ctx := context.Background()
	err := db.QueryRow(ctx,
		`INSERT INTO users (user_name, email, target_call_number, created_at)
		 VALUES ('agent', 'agent-' || gen_random_uuid() || '@example.com', $1, $2) RETURNING id::text`,
		target, createdAt).Scan(&userID)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	err = db.QueryRow(ctx,
		`INSERT INTO companies (company_name, person, phone, city) VALUES ('Acme Lab', 'Ayşe', '555', 'İzmir') RETURNING id::text`).
		Scan(&companyID)
	if err != nil {
		t.Fatalf("seed company: %v", err)
	}
	return userID, companyID
}
