// Package storage keeps a local, expiring history of handler exchanges.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-request-kit/internal/domain"
)

// Store records exchanges and lists the most recent ones.
type Store interface {
	Close() error
	Record(ex domain.Exchange) error
	// Recent returns at most limit unexpired exchanges, newest first.
	Recent(limit int) ([]domain.Exchange, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

const (
	defaultTTL             = 7 * 24 * time.Hour
	defaultCleanupInterval = time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                          { return nil }
func (noopStore) Record(domain.Exchange) error          { return nil }
func (noopStore) Recent(int) ([]domain.Exchange, error) { return nil, nil }
