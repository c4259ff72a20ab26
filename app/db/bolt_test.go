package db

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func getBoltDB(t *testing.T) (*bolt.DB, func()) {
	boltDB, err := bolt.Open(filepath.Join(t.TempDir(), "bolt_test"), 0600, nil)
	require.NoError(t, err)
	return boltDB, func() {
		boltDB.Close()
	}
}

func getCache(t *testing.T, ttl time.Duration) (*BoltCache, func()) {
	boltDB, cleanup := getBoltDB(t)
	cache, err := NewBoltCache(boltDB, ttl)
	require.NoError(t, err)
	return cache, cleanup
}

func TestNewBoltCache(t *testing.T) {
	t.Run("first", func(t *testing.T) {
		boltDB, cleanup := getBoltDB(t)
		defer cleanup()
		cache, err := NewBoltCache(boltDB, 0)
		require.NoError(t, err)
		require.NoError(t, cache.db.View(func(tx *bolt.Tx) error {
			assert.NotNil(t, tx.Bucket([]byte(bucketLookups)))
			assert.Equal(t, 0, tx.Bucket([]byte(bucketLookups)).Stats().KeyN)
			return nil
		}))
	})
	t.Run("already exists", func(t *testing.T) {
		boltDB, cleanup := getBoltDB(t)
		defer cleanup()
		require.NoError(t, boltDB.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucket([]byte(bucketLookups))
			return err
		}))
		_, err := NewBoltCache(boltDB, 0)
		require.NoError(t, err)
	})
}

func TestBoltGet(t *testing.T) {
	key := Key{Source: "cambridge", Word: "test"}
	t.Run("ok", func(t *testing.T) {
		cache, cleanup := getCache(t, 0)
		defer cleanup()
		require.NoError(t, cache.Save(context.TODO(), key, []string{"a test"}))

		values, err := cache.Get(context.TODO(), key)
		require.NoError(t, err)
		assert.Equal(t, []string{"a test"}, values)
	})
	t.Run("non existing", func(t *testing.T) {
		cache, cleanup := getCache(t, 0)
		defer cleanup()
		_, err := cache.Get(context.TODO(), key)
		assert.ErrorIs(t, err, ErrNotFound)
	})
	t.Run("expired", func(t *testing.T) {
		cache, cleanup := getCache(t, time.Minute)
		defer cleanup()
		now := time.Now()
		cache.now = func() time.Time { return now }
		require.NoError(t, cache.Save(context.TODO(), key, []string{"a test"}))

		_, err := cache.Get(context.TODO(), key)
		assert.NoError(t, err)
		now = now.Add(time.Minute)
		_, err = cache.Get(context.TODO(), key)
		assert.ErrorIs(t, err, ErrNotFound)
	})
	t.Run("invalid json", func(t *testing.T) {
		cache, cleanup := getCache(t, 0)
		defer cleanup()
		require.NoError(t, cache.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket([]byte(bucketLookups)).Put([]byte(key.String()), []byte("NON_JSON_DATA"))
		}))

		_, err := cache.Get(context.TODO(), key)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestBoltSave(t *testing.T) {
	cache, cleanup := getCache(t, 0)
	defer cleanup()
	key := Key{Source: "cambridge", Word: "test"}
	require.NoError(t, cache.Save(context.TODO(), key, []string{"a test"}))
	jdata, jerr := json.Marshal(boltItem{Values: []string{"a test"}})
	require.NoError(t, jerr)
	require.NoError(t, cache.db.View(func(tx *bolt.Tx) error {
		assert.Equal(t, jdata, tx.Bucket([]byte(bucketLookups)).Get([]byte(key.String())))
		return nil
	}))
}
