package monosplit

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// SplitCommits rewrites every commit in graph for every subfolder whose path
// exists in the commit's tree, and returns the resulting [HashMapping].
//
// The worklist is seeded with every commit of the graph and processed LIFO.
// A popped commit whose parents are not all resolved yet is pushed back
// behind those parents, so they are handled first. This is a fixed-point
// iteration rather than a precomputed topological sort: which commits a
// subfolder's history needs is only discovered while rewriting. A commit is
// re-pushed at most once per unresolved ancestor level, the worklist stays
// bounded by graph size times DAG depth.
func SplitCommits(
	ctx context.Context,
	store Store,
	graph map[plumbing.Hash]*object.Commit,
	subfolders []string,
) (*HashMapping, error) {
	mapping, _, err := splitCommits(ctx, store, graph, subfolders)
	return mapping, err
}

func splitCommits(
	ctx context.Context,
	store Store,
	graph map[plumbing.Hash]*object.Commit,
	subfolders []string,
) (*HashMapping, map[plumbing.Hash]int, error) {
	if len(subfolders) == 0 {
		return nil, nil, ErrNoSubfolders
	}

	mapping := NewHashMapping()

	// seeded in sorted order so runs produce identical logs
	worklist := make([]plumbing.Hash, 0, len(graph))
	for h := range graph {
		worklist = append(worklist, h)
	}
	sort.Slice(worklist, func(i, j int) bool {
		return bytes.Compare(worklist[i][:], worklist[j][:]) < 0
	})

	pushes := make(map[plumbing.Hash]int)

	n := len(graph)
	done := 0

	for len(worklist) > 0 {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		h := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		// any subfolder entry means the commit went through the factory
		// with all its subfolders at once
		if mapping.Resolved(h) {
			continue
		}

		c, found := graph[h]
		if !found {
			return nil, nil, fmt.Errorf("commit %s referenced but not in graph", h)
		}

		var missing []plumbing.Hash
		for _, p := range c.ParentHashes {
			if !mapping.Resolved(p) {
				missing = append(missing, p)
			}
		}

		if len(missing) > 0 {
			worklist = append(worklist, h)
			pushes[h]++
			for _, p := range missing {
				worklist = append(worklist, p)
				pushes[p]++
			}
			continue
		}

		results, err := splitCommit(ctx, store, c, subfolders, mapping)
		if err != nil {
			return nil, nil, err
		}
		if err := mapping.record(h, results); err != nil {
			return nil, nil, err
		}

		done++
		logger.Info("processing commit", "id", done, "total", n, "hash", h, "subtrees", len(results))
	}

	return mapping, pushes, nil
}
