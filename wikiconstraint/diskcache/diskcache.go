// Package diskcache persists fetched entity revisions to a local
// BadgerDB so repeated CLI runs (or a long-lived evaluator process)
// don't re-fetch the same property/item pages. It wraps any
// collab.EntityStore the way storage.BadgerStore backs the teacher's
// Datalog database: a badger.DB opened with read-heavy tuning, values
// serialized through wikijson rather than the teacher's Datom binary
// codec, since a Revision's Claim.Target is an open Go interface
// the teacher's fixed-width key encoding has no equivalent for.
package diskcache

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/collab"
	"github.com/wikiconstraint/engine/wikiconstraint/wikijson"
)

// DiskCache is a collab.EntityStore that serves cached revisions from
// a BadgerDB and falls through to Upstream (and caches the result) on
// a miss.
type DiskCache struct {
	db       *badger.DB
	Upstream collab.EntityStore
}

// Open opens (or creates) a BadgerDB at path, tuned for the same
// read-heavy access pattern as the teacher's BadgerStore.
func Open(path string, upstream collab.EntityStore) (*DiskCache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.BlockCacheSize = 64 << 20
	opts.IndexCacheSize = 32 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("diskcache: opening %s: %w", path, err)
	}
	return &DiskCache{db: db, Upstream: upstream}, nil
}

func (c *DiskCache) Close() error {
	return c.db.Close()
}

func (c *DiskCache) Load(ctx context.Context, id wikiconstraint.EntityID) (*wikiconstraint.Revision, error) {
	return c.loadKey(ctx, string(id), func(ctx context.Context) (*wikiconstraint.Revision, error) {
		return c.Upstream.Load(ctx, id)
	})
}

func (c *DiskCache) LoadOldVersion(ctx context.Context, id wikiconstraint.EntityID, revID int64) (*wikiconstraint.Revision, error) {
	key := fmt.Sprintf("%s@%d", id, revID)
	return c.loadKey(ctx, key, func(ctx context.Context) (*wikiconstraint.Revision, error) {
		return c.Upstream.LoadOldVersion(ctx, id, revID)
	})
}

func (c *DiskCache) loadKey(ctx context.Context, key string, fetch func(context.Context) (*wikiconstraint.Revision, error)) (*wikiconstraint.Revision, error) {
	if rev, ok := c.get(key); ok {
		return rev, nil
	}

	rev, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.put(key, rev); err != nil {
		return nil, fmt.Errorf("diskcache: caching %s: %w", key, err)
	}
	return rev, nil
}

func (c *DiskCache) get(key string) (*wikiconstraint.Revision, bool) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, false
	}

	rev, err := wikijson.Unmarshal(data)
	if err != nil {
		return nil, false
	}
	return rev, true
}

func (c *DiskCache) put(key string, rev *wikiconstraint.Revision) error {
	data, err := wikijson.Marshal(rev)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}
