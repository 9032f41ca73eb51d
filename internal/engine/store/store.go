// Package store persists scripts, the reply ledger and likes.
// SQLite is the default; PostgreSQL is used when DATABASE_URL is set.
package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/anatolykoptev/go_community/internal/engine"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// migrations returns the embedded schema files in name order.
func migrations() ([]string, []string, error) {
	entries, err := fs.ReadDir(schemaFS, "schema")
	if err != nil {
		return nil, nil, fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var names, stmts []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		names = append(names, entry.Name())
		stmts = append(stmts, string(data))
	}
	return names, stmts, nil
}

// Open picks PostgreSQL when databaseURL is set, SQLite otherwise.
func Open(ctx context.Context, databaseURL, sqlitePath string) (engine.Store, error) {
	if databaseURL != "" {
		pg, err := ConnectPostgres(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	lite, err := OpenSQLite(sqlitePath)
	if err != nil {
		return nil, err
	}
	return lite, nil
}
