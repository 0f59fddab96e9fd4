package monosplit

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/storage/memory"
)

var testSignature = object.Signature{
	Name:  "Ada Lovelace",
	Email: "ada@example.com",
	When:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
}

type encoder interface {
	Encode(plumbing.EncodedObject) error
}

func saveTestObject(t *testing.T, s storer.EncodedObjectStorer, e encoder) plumbing.Hash {
	t.Helper()

	obj := s.NewEncodedObject()
	if err := e.Encode(obj); err != nil {
		t.Fatal(err)
	}
	h, err := s.SetEncodedObject(obj)
	if err != nil {
		t.Fatal(err)
	}

	return h
}

func saveTestBlob(t *testing.T, s storer.EncodedObjectStorer, content string) plumbing.Hash {
	t.Helper()

	obj := s.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(content)))
	w, err := obj.Writer()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	h, err := s.SetEncodedObject(obj)
	if err != nil {
		t.Fatal(err)
	}

	return h
}

func saveTestTree(t *testing.T, s storer.EncodedObjectStorer, entries ...object.TreeEntry) plumbing.Hash {
	t.Helper()
	return saveTestObject(t, s, &object.Tree{Entries: entries})
}

// saveTestFolder makes a one-file tree, the smallest possible subfolder.
func saveTestFolder(t *testing.T, s storer.EncodedObjectStorer, filename, content string) plumbing.Hash {
	t.Helper()
	blob := saveTestBlob(t, s, content)
	return saveTestTree(t, s, fileEntry(filename, blob))
}

func saveTestCommit(t *testing.T, s storer.EncodedObjectStorer, tree plumbing.Hash, msg string, parents ...plumbing.Hash) plumbing.Hash {
	t.Helper()

	return saveTestObject(t, s, &object.Commit{
		Author:       testSignature,
		Committer:    testSignature,
		Message:      msg,
		TreeHash:     tree,
		ParentHashes: parents,
	})
}

func fileEntry(name string, h plumbing.Hash) object.TreeEntry {
	return object.TreeEntry{Name: name, Mode: filemode.Regular, Hash: h}
}

func dirEntry(name string, h plumbing.Hash) object.TreeEntry {
	return object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: h}
}

// testMonorepo is the fixture from the simplest interesting split: a root
// commit carrying both subfolders, followed by a commit touching only pkgA.
type testMonorepo struct {
	storage *memory.Storage
	store   *CachedStore

	pkgATree1 plumbing.Hash
	pkgATree2 plumbing.Hash
	pkgBTree1 plumbing.Hash

	c1 plumbing.Hash
	c2 plumbing.Hash
}

func newTestMonorepo(t *testing.T) *testMonorepo {
	t.Helper()

	storage := memory.NewStorage()
	r := &testMonorepo{
		storage: storage,
		store:   NewCachedStore(storage, nil),
	}

	r.pkgATree1 = saveTestFolder(t, storage, "a.txt", "a v1\n")
	r.pkgATree2 = saveTestFolder(t, storage, "a.txt", "a v2\n")
	r.pkgBTree1 = saveTestFolder(t, storage, "b.txt", "b v1\n")

	root1 := saveTestTree(t, storage,
		dirEntry("pkgA", r.pkgATree1),
		dirEntry("pkgB", r.pkgBTree1),
	)
	root2 := saveTestTree(t, storage,
		dirEntry("pkgA", r.pkgATree2),
		dirEntry("pkgB", r.pkgBTree1),
	)

	r.c1 = saveTestCommit(t, storage, root1, "add pkgA and pkgB\n")
	r.c2 = saveTestCommit(t, storage, root2, "update pkgA\n", r.c1)

	return r
}
