// Package cache provides a small TTL cache for computed read models,
// such as ranked leaderboard pages. Entries expire on their own; writes
// that change the underlying data should still Invalidate eagerly so
// readers never see a stale ranking for the full TTL.
package cache

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is a JSON-value TTL cache.
type Cache interface {
	// Get unmarshals the cached value for key into out.
	Get(key string, out any) error
	// Set stores value under key for at most ttl.
	Set(key string, value any, ttl time.Duration) error
	// Invalidate drops every key with the given prefix.
	Invalidate(prefix string) error
	// Close releases the cache's resources.
	Close() error
}

// Memory is a Cache backed by an in-memory badger instance, reusing the
// store's serialization so cached values round-trip identically.
type Memory struct {
	db *badger.DB
}

// NewMemory opens an in-memory cache.
func NewMemory() (*Memory, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Memory{db: db}, nil
}

func (c *Memory) Get(key string, out any) error {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrMiss
	}
	return err
}

func (c *Memory) Set(key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

func (c *Memory) Invalidate(prefix string) error {
	p := []byte(prefix)

	return c.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = p

		it := txn.NewIterator(opts)
		defer it.Close()

		var keys [][]byte
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *Memory) Close() error {
	return c.db.Close()
}
