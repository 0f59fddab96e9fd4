package monosplit

import (
	"context"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Store is the narrow surface of the git object backend the splitting engine
// consumes. Hashes are content-derived, so reads are immutable and writes are
// idempotent.
type Store interface {
	// Commit resolves a commit by hash.
	Commit(ctx context.Context, h plumbing.Hash) (*object.Commit, error)
	// Tree resolves a tree by hash.
	Tree(ctx context.Context, h plumbing.Hash) (*object.Tree, error)
	// AddCommit writes a derived commit and returns its content hash. The
	// commit must be readable through Commit immediately afterwards.
	AddCommit(ctx context.Context, c *object.Commit) (plumbing.Hash, error)
}

// CachedStore implements [Store] over a go-git object storage with an
// [ObjectCache] as read-through and write-through layer. Cache hits are
// injected back into the storage so decoded objects can resolve their
// references there.
type CachedStore struct {
	storage storer.EncodedObjectStorer
	cache   *ObjectCache
}

var _ Store = (*CachedStore)(nil)

// NewCachedStore creates a [CachedStore]. A nil cache is replaced with an
// empty one.
func NewCachedStore(storage storer.EncodedObjectStorer, cache *ObjectCache) *CachedStore {
	if cache == nil {
		cache = NewObjectCache()
	}

	return &CachedStore{
		storage: storage,
		cache:   cache,
	}
}

func (s *CachedStore) Commit(ctx context.Context, h plumbing.Hash) (*object.Commit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if payload, found := s.cache.commit(h); found {
		obj, err := s.inject(plumbing.CommitObject, payload)
		if err != nil {
			return nil, fmt.Errorf("failed to restore cached commit %s: %w", h, err)
		}
		return object.DecodeCommit(s.storage, obj)
	}

	obj, err := s.storage.EncodedObject(plumbing.CommitObject, h)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", h, err)
	}

	payload, err := objectPayload(obj)
	if err != nil {
		return nil, err
	}
	s.cache.putCommit(h, payload)

	return object.DecodeCommit(s.storage, obj)
}

func (s *CachedStore) Tree(ctx context.Context, h plumbing.Hash) (*object.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if payload, found := s.cache.tree(h); found {
		obj, err := s.inject(plumbing.TreeObject, payload)
		if err != nil {
			return nil, fmt.Errorf("failed to restore cached tree %s: %w", h, err)
		}
		return object.DecodeTree(s.storage, obj)
	}

	obj, err := s.storage.EncodedObject(plumbing.TreeObject, h)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree %s: %w", h, err)
	}

	payload, err := objectPayload(obj)
	if err != nil {
		return nil, err
	}
	s.cache.putTree(h, payload)

	return object.DecodeTree(s.storage, obj)
}

func (s *CachedStore) AddCommit(ctx context.Context, c *object.Commit) (plumbing.Hash, error) {
	if err := ctx.Err(); err != nil {
		return plumbing.ZeroHash, err
	}

	obj := s.storage.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to encode commit: %w", err)
	}

	h, err := s.storage.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to save commit: %w", err)
	}
	c.Hash = h

	payload, err := objectPayload(obj)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	s.cache.putCommit(h, payload)

	return h, nil
}

// inject materializes a cached payload as an encoded object inside the
// storage. Content addressing makes re-adding an already present object a
// no-op.
func (s *CachedStore) inject(t plumbing.ObjectType, payload []byte) (plumbing.EncodedObject, error) {
	obj := s.storage.NewEncodedObject()
	obj.SetType(t)
	obj.SetSize(int64(len(payload)))

	w, err := obj.Writer()
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(payload); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	if _, err := s.storage.SetEncodedObject(obj); err != nil {
		return nil, err
	}

	return obj, nil
}

func objectPayload(obj plumbing.EncodedObject) ([]byte, error) {
	r, err := obj.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open object reader: %w", err)
	}
	defer r.Close()

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read object payload: %w", err)
	}

	return payload, nil
}
