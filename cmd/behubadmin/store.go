package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/nkiryanov/behubadmin/internal/credstore"
	"github.com/nkiryanov/behubadmin/internal/credstore/pgstore"
	"github.com/nkiryanov/behubadmin/internal/credstore/redisstore"
	"github.com/nkiryanov/behubadmin/internal/db"
)

// Open credential store by its url. Returned close func releases connections
func openStore(ctx context.Context, dsn string) (credstore.Store, func() error, error) {
	noop := func() error { return nil }

	switch scheme, rest, _ := strings.Cut(dsn, ":"); scheme {
	case "", "memory":
		return credstore.NewMemoryStore(), noop, nil

	case "file":
		path := strings.TrimPrefix(rest, "//")
		s, err := credstore.NewFileStore(path)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil

	case "redis", "rediss":
		return redisstore.Open(ctx, dsn)

	case "postgres", "postgresql":
		pool, err := db.ConnectAndMigrate(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("error while connecting to db. Err: %w", err)
		}
		return pgstore.New(pool), func() error { pool.Close(); return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported credential store %q", scheme)
	}
}
