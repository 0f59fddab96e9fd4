package monosplit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// splitCommit produces the rewritten counterpart of one original commit for
// every configured subfolder present in its tree, in one call. The caller
// commits the returned [SubtreeCommit] slice to the mapping as a unit.
//
// Per subfolder the parent hashes are remapped through the subfolder's
// mapping. Parents without an entry are dropped, a parent that never touched
// the subfolder has no counterpart in the split history. Remapped parents
// are deduplicated keeping the first occurrence. A derived commit whose sole
// parent already carries the same tree is not materialized, the parent's
// hash becomes the mapping entry instead.
//
// Author, committer and message are copied from the original commit
// unchanged. GPG signatures are dropped, the rewritten content cannot match
// them anyway.
func splitCommit(
	ctx context.Context,
	store Store,
	c *object.Commit,
	subfolders []string,
	mapping *HashMapping,
) ([]SubtreeCommit, error) {
	tree, err := store.Tree(ctx, c.TreeHash)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain tree for commit %s: %w", c.Hash, err)
	}

	results := make([]SubtreeCommit, 0, len(subfolders))

	for _, subfolder := range subfolders {
		entry, err := tree.FindEntry(subfolder)
		if errors.Is(err, object.ErrEntryNotFound) || errors.Is(err, object.ErrDirectoryNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s in tree %s: %w", subfolder, tree.Hash, err)
		}
		if entry.Mode != filemode.Dir {
			continue
		}

		parents := make([]plumbing.Hash, 0, len(c.ParentHashes))
		seen := NewHashSet()
		for _, p := range c.ParentHashes {
			np, found := mapping.Lookup(subfolder, p)
			if !found {
				continue
			}
			if _, dup := seen[np]; dup {
				continue
			}
			seen[np] = empty{}
			parents = append(parents, np)
		}

		if len(parents) == 1 {
			parent, err := store.Commit(ctx, parents[0])
			if err != nil {
				return nil, fmt.Errorf("failed to obtain rewritten parent %s: %w", parents[0], err)
			}
			if parent.TreeHash == entry.Hash {
				logger.Debug("reuse parent commit", "subfolder", subfolder, "hash", c.Hash, "parent", parent.Hash)
				results = append(results, SubtreeCommit{Subfolder: subfolder, Hash: parent.Hash})
				continue
			}
		}

		derived := &object.Commit{
			Author:       c.Author,
			Committer:    c.Committer,
			Message:      c.Message,
			TreeHash:     entry.Hash,
			ParentHashes: parents,
		}

		h, err := store.AddCommit(ctx, derived)
		if err != nil {
			return nil, fmt.Errorf("failed to save rewritten commit for %s in %s: %w", c.Hash, subfolder, err)
		}

		logger.Debug("rewrote commit", "subfolder", subfolder, "hash", c.Hash, "newcommit", h)
		results = append(results, SubtreeCommit{Subfolder: subfolder, Hash: h})
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: commit %s, tree %s, subfolders [%s]",
			ErrNoSubfolderInCommit, c.Hash, c.TreeHash, strings.Join(subfolders, " "))
	}

	return results, nil
}
