// Package prefstore persists operator preferences as opaque blobs under
// fixed keys. Three backends: in-memory (tests, ephemeral runs), SQLite
// (local single-operator installs) and Postgres (shared deployments).
package prefstore

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("preference not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// New builds a store from a backend name and DSN. Supported backends:
// "memory" (dsn ignored), "sqlite" (dsn is a file path) and "postgres"
// (dsn is a connection string).
func New(backend, dsn string) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		if dsn == "" {
			return nil, fmt.Errorf("sqlite prefstore needs a file path")
		}
		return OpenSQLite(dsn)
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("postgres prefstore needs a connection string")
		}
		return OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("unknown prefstore backend %q", backend)
	}
}
