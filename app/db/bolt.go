package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketLookups = "Lookups"

type boltItem struct {
	Values  []string
	Expires *time.Time `json:",omitempty"`
}

// BoltCache implements Cache for BoltDB
type BoltCache struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

// Get values from database
func (b *BoltCache) Get(_ context.Context, key Key) ([]string, error) {
	var item boltItem
	if err := b.db.View(func(tx *bolt.Tx) error {
		jdata := tx.Bucket([]byte(bucketLookups)).Get([]byte(key.String()))
		if len(jdata) == 0 {
			return ErrNotFound
		}
		if err := json.Unmarshal(jdata, &item); err != nil {
			return fmt.Errorf("failed to unmarshal lookup item: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if item.Expires != nil && !b.now().Before(*item.Expires) {
		return nil, ErrNotFound
	}
	return item.Values, nil
}

// Save values to database
func (b *BoltCache) Save(_ context.Context, key Key, values []string) error {
	item := boltItem{Values: values}
	if b.ttl > 0 {
		expires := b.now().Add(b.ttl).UTC()
		item.Expires = &expires
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		jdata, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal lookup item: %w", err)
		}
		if err := tx.Bucket([]byte(bucketLookups)).Put([]byte(key.String()), jdata); err != nil {
			return fmt.Errorf("failed to put lookup item: %w", err)
		}
		return nil
	})
}

// NewBoltCache creates BoltCache instance and initialize bucket
func NewBoltCache(db *bolt.DB, ttl time.Duration) (*BoltCache, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketLookups))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &BoltCache{db: db, ttl: ttl, now: time.Now}, nil
}
