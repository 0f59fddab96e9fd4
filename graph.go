package monosplit

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// LoadCommitGraph collects the transitive closure of all commits reachable
// from the given branch tips by following parent links. Each commit is
// fetched at most once. Traversal order is unspecified, only completeness
// matters to callers.
func LoadCommitGraph(
	ctx context.Context,
	store Store,
	tips []plumbing.Hash,
) (map[plumbing.Hash]*object.Commit, error) {
	result := make(map[plumbing.Hash]*object.Commit)

	worklist := make([]plumbing.Hash, 0, len(tips))
	seen := NewHashSet()

	for _, tip := range tips {
		if _, found := seen[tip]; found {
			continue
		}
		seen[tip] = empty{}
		worklist = append(worklist, tip)
	}

	for len(worklist) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		h := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		c, err := store.Commit(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("failed to load commit %s: %w", h, err)
		}
		result[h] = c

		for _, p := range c.ParentHashes {
			if _, found := seen[p]; found {
				continue
			}
			seen[p] = empty{}
			worklist = append(worklist, p)
		}
	}

	return result, nil
}
