// Package schema embeds the Postgres DDL and applies it in version order
package schema

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"

	"callcrm/internal/platform/logger"
	"callcrm/internal/platform/store"
)

//go:embed migrations/*.sql
var files embed.FS

// Migration is one versioned DDL file
type Migration struct {
	Version int
	Name    string
	SQL     string
}

var namePattern = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.sql$`)

const ledgerDDL = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    integer PRIMARY KEY,
    name       text        NOT NULL,
    applied_at timestamptz NOT NULL DEFAULT now()
)`

// Load returns the embedded migrations sorted by version
func Load() ([]Migration, error) { return load(files) }

func load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, err
	}
	seen := map[int]string{}
	var out []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := namePattern.FindStringSubmatch(e.Name())
		if m == nil {
			return nil, fmt.Errorf("schema: bad migration file name %q", e.Name())
		}
		v, _ := strconv.Atoi(m[1])
		if prev, dup := seen[v]; dup {
			return nil, fmt.Errorf("schema: version %d in both %s and %s", v, prev, e.Name())
		}
		seen[v] = e.Name()
		body, err := fs.ReadFile(fsys, "migrations/"+e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Version: v, Name: m[2], SQL: string(body)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Apply runs every migration not yet recorded in schema_migrations, each in
// its own transaction. It returns how many were applied.
func Apply(ctx context.Context, db store.TxRunner) (int, error) {
	migs, err := Load()
	if err != nil {
		return 0, err
	}
	if _, err := db.Exec(ctx, ledgerDDL); err != nil {
		return 0, fmt.Errorf("schema: ledger: %w", err)
	}

	log := logger.Named("schema")
	applied := 0
	for _, m := range migs {
		done, err := store.Scalar[bool](ctx, db,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}
		err = db.Tx(ctx, func(q store.RowQuerier) error {
			if _, err := q.Exec(ctx, m.SQL); err != nil {
				return err
			}
			_, err := q.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("schema: apply %04d_%s: %w", m.Version, m.Name, err)
		}
		log.Info().Int("version", m.Version).Str("name", m.Name).Msg("schema: applied")
		applied++
	}
	return applied, nil
}
