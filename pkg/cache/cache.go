// Package cache stores query results keyed by the content of the recording
// they were computed from.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON entries under a directory, for the command line
//   - [RedisCache]: a shared Redis instance, for several servers or users
//   - [NullCache]: stores nothing, for --no-cache
//
// Keys come from a [Keyer]. A query result is addressed by the SHA-256 of
// the recording plus the query name and arguments, so editing the file
// invalidates every result computed from it:
//
//	k := cache.NewDefaultKeyer()
//	key := k.QueryKey(cache.Hash(data), "scripts", nil)
//	if body, ok, _ := c.Get(ctx, key); ok {
//	    return body
//	}
//
// Callers treat cache failures as misses; a broken cache never fails a
// query.
package cache

import (
	"context"
	"strings"
	"time"
)

// DefaultTTL is how long entries live when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry reports
	// false with a nil error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// QueryKey addresses the result of a named query over a recording.
	QueryKey(fileHash, name string, args map[string]string) string

	// GraphKey addresses the summary of a recording.
	GraphKey(fileHash string, frames bool) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// QueryKey implements Keyer. Argument order does not matter.
func (DefaultKeyer) QueryKey(fileHash, name string, args map[string]string) string {
	// encoding/json sorts map keys.
	if args == nil {
		args = map[string]string{}
	}
	return hashKey("query", fileHash, name, args)
}

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(fileHash string, frames bool) string {
	return hashKey("graph", fileHash, frames)
}

// KeyType returns the kind of entry key addresses, "query" or "graph",
// ignoring any scope prefix.
func KeyType(key string) string {
	for _, t := range []string{"query", "graph"} {
		if strings.HasPrefix(key, t+":") || strings.Contains(key, ":"+t+":") {
			return t
		}
	}
	return "unknown"
}
