package monosplit

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/klauspost/compress/zstd"
	"go.etcd.io/bbolt"
)

// CacheFileName is the name of the cache artifact inside the cache
// directory. The version suffix separates incompatible formats, a new format
// gets a new file instead of breaking an old one.
const CacheFileName = "objects-v1.db"

var (
	bucketCommits = []byte("commits")
	bucketTrees   = []byte("trees")
)

var (
	zstdEncoder = mustZstdEncoder()
	zstdDecoder = mustZstdDecoder()
)

func mustZstdEncoder() *zstd.Encoder {
	w, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		panic(err)
	}
	return w
}

func mustZstdDecoder() *zstd.Decoder {
	r, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		panic(err)
	}
	return r
}

// ObjectCache holds canonically encoded commit and tree payloads keyed by
// their content hash. Entries are immutable and never evicted, a
// content-addressed value stays valid forever. The cache only speeds up
// repeated runs, correctness never depends on it being warm.
//
// A value written through [ObjectCache.putCommit] is visible to an immediate
// subsequent read, commits created during a run are re-read right away for
// the no-op collapse check.
type ObjectCache struct {
	commits map[plumbing.Hash][]byte
	trees   map[plumbing.Hash][]byte
}

// NewObjectCache creates an empty [ObjectCache].
func NewObjectCache() *ObjectCache {
	return &ObjectCache{
		commits: make(map[plumbing.Hash][]byte),
		trees:   make(map[plumbing.Hash][]byte),
	}
}

func (c *ObjectCache) commit(h plumbing.Hash) ([]byte, bool) {
	v, found := c.commits[h]
	return v, found
}

func (c *ObjectCache) tree(h plumbing.Hash) ([]byte, bool) {
	v, found := c.trees[h]
	return v, found
}

func (c *ObjectCache) putCommit(h plumbing.Hash, payload []byte) {
	if _, found := c.commits[h]; found {
		return
	}
	c.commits[h] = payload
}

func (c *ObjectCache) putTree(h plumbing.Hash, payload []byte) {
	if _, found := c.trees[h]; found {
		return
	}
	c.trees[h] = payload
}

// Size reports the number of cached commits and trees.
func (c *ObjectCache) Size() (ncommits int, ntrees int) {
	return len(c.commits), len(c.trees)
}

// LoadObjectCache reads the cache artifact at path. A missing file is not an
// error, it yields an empty cache for a cold first run.
func LoadObjectCache(path string) (*ObjectCache, error) {
	result := NewObjectCache()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return result, nil
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", path, err)
	}
	defer db.Close()

	err = db.View(func(tx *bbolt.Tx) error {
		if err := loadBucket(tx, bucketCommits, result.commits); err != nil {
			return err
		}
		return loadBucket(tx, bucketTrees, result.trees)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read cache %s: %w", path, err)
	}

	return result, nil
}

func loadBucket(tx *bbolt.Tx, bucket []byte, into map[plumbing.Hash][]byte) error {
	b := tx.Bucket(bucket)
	if b == nil {
		return nil
	}

	return b.ForEach(func(k, v []byte) error {
		var h plumbing.Hash
		if len(k) != len(h) {
			return fmt.Errorf("cache key of length %d is not a hash", len(k))
		}
		copy(h[:], k)

		payload, err := zstdDecoder.DecodeAll(v, nil)
		if err != nil {
			return fmt.Errorf("failed to decompress cache entry %s: %w", h, err)
		}

		into[h] = payload
		return nil
	})
}

// Save writes the full cache content to the artifact at path, replacing
// entries already present with identical bytes. Save is only called at the
// end of a successful run, a failed run loses its in-memory gains.
func (c *ObjectCache) Save(path string) error {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return fmt.Errorf("failed to open cache %s: %w", path, err)
	}
	defer db.Close()

	err = db.Update(func(tx *bbolt.Tx) error {
		if err := saveBucket(tx, bucketCommits, c.commits); err != nil {
			return err
		}
		return saveBucket(tx, bucketTrees, c.trees)
	})
	if err != nil {
		return fmt.Errorf("failed to write cache %s: %w", path, err)
	}

	return nil
}

func saveBucket(tx *bbolt.Tx, bucket []byte, from map[plumbing.Hash][]byte) error {
	b, err := tx.CreateBucketIfNotExists(bucket)
	if err != nil {
		return err
	}

	for h, payload := range from {
		if b.Get(h[:]) != nil {
			continue
		}
		if err := b.Put(h[:], zstdEncoder.EncodeAll(payload, nil)); err != nil {
			return err
		}
	}

	return nil
}
