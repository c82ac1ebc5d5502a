// Package cache persists built snapshots keyed by document content hash, so
// re-analyzing unchanged input never re-runs the resolver pipeline.
package cache

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/sync/singleflight"

	"github.com/phosphorco/legalnlp/internal/lnlp/snapshot"
)

// Cache stores serialized snapshots in an embedded badger database, keyed by
// the document's content-hash ID (see document.Document.ID). Concurrent
// misses for the same key are deduplicated through group so a burst of
// requests for the same document only builds it once.
type Cache struct {
	db    *badger.DB
	group singleflight.Group
}

// Open opens (or creates) a badger database at dir for snapshot caching.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cache: opening badger db at %s: %w", dir, err)
	}
	return &Cache{db: db}, nil
}

// OpenInMemory opens a badger database with no on-disk footprint, for tests
// and short-lived CLI invocations that don't need the cache to survive the
// process.
func OpenInMemory() (*Cache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cache: opening in-memory badger db: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func key(docID uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, docID)
	return b
}

// Get looks up a cached snapshot by document ID. ok is false on a miss.
func (c *Cache) Get(docID uint64) (snap *snapshot.Snapshot, ok bool, err error) {
	err = c.db.View(func(txn *badger.Txn) error {
		item, getErr := txn.Get(key(docID))
		if getErr == badger.ErrKeyNotFound {
			return nil
		}
		if getErr != nil {
			return getErr
		}
		return item.Value(func(val []byte) error {
			parsed, parseErr := snapshot.Parse(val)
			if parseErr != nil {
				return parseErr
			}
			snap = parsed
			ok = true
			return nil
		})
	})
	if err != nil {
		return nil, false, fmt.Errorf("cache: reading snapshot for doc %d: %w", docID, err)
	}
	return snap, ok, nil
}

// Put stores a snapshot under its document ID, overwriting any prior entry.
func (c *Cache) Put(docID uint64, snap *snapshot.Snapshot) error {
	data, err := snapshot.Serialize(snap)
	if err != nil {
		return fmt.Errorf("cache: serializing snapshot for doc %d: %w", docID, err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(docID), data)
	})
	if err != nil {
		return fmt.Errorf("cache: writing snapshot for doc %d: %w", docID, err)
	}
	return nil
}

// GetOrBuild returns the cached snapshot for docID, building and storing it
// via build if absent. Concurrent callers for the same docID share a single
// in-flight build.
func (c *Cache) GetOrBuild(docID uint64, build func() (*snapshot.Snapshot, error)) (*snapshot.Snapshot, error) {
	if snap, ok, err := c.Get(docID); err != nil {
		return nil, err
	} else if ok {
		return snap, nil
	}

	groupKey := fmt.Sprintf("%d", docID)
	v, err, _ := c.group.Do(groupKey, func() (any, error) {
		// Re-check: another goroutine may have populated the cache while we
		// waited to enter the group.
		if snap, ok, err := c.Get(docID); err != nil {
			return nil, err
		} else if ok {
			return snap, nil
		}
		snap, buildErr := build()
		if buildErr != nil {
			return nil, buildErr
		}
		if putErr := c.Put(docID, snap); putErr != nil {
			return nil, putErr
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*snapshot.Snapshot), nil
}
