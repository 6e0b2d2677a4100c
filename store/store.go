// Package store caches compiled artifacts, keyed by the unit they were
// compiled from, in memory or in an external backend.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get when no artifact is stored under a key.
var ErrNotFound = errors.New("store: artifact not found")

// Store is an artifact cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Key returns the cache key of a compilation unit.
func Key(name, source string) string {
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

// Config selects and configures a backend.
type Config struct {
	// Driver is one of memory, sqlite, postgres, s3, redis or none.
	Driver string

	// Size bounds the memory store.
	Size int

	// DSN is the data source of the sql drivers.
	DSN string

	// Table is the sql table name.
	Table string

	Bucket string
	Prefix string
	Region string

	// Addr is the redis server address.
	Addr string

	// TTL expires redis entries. Zero keeps them forever.
	TTL time.Duration
}

// Open builds the store described by cfg. The "none" driver returns a nil
// store and no error.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "memory":
		s, err = NewMemory(cfg.Size)
	case "sqlite", "postgres":
		s, err = OpenSQL(ctx, cfg.Driver, cfg.DSN, cfg.Table)
	case "s3":
		s, err = OpenS3(ctx, cfg.Bucket, cfg.Prefix, cfg.Region)
	case "redis":
		s, err = OpenRedis(ctx, cfg.Addr, cfg.Prefix, cfg.TTL)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
