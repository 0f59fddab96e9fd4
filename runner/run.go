package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"

	monosplit "github.com/ausi/monorepo-tools"
)

// Run executes one complete split: load the object cache, fetch the
// monorepo, collect the commit graph from the branch tips, rewrite every
// commit per subfolder, create the <subfolder>/<branch> branches, push the
// configured target remotes and persist the cache.
//
// Any failure aborts the run. Objects already written are content-addressed
// and harmless, but the cache is only saved after full success.
func Run(ctx context.Context, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", cfg.CacheDir, err)
	}
	cachePath := filepath.Join(cfg.CacheDir, monosplit.CacheFileName)

	cache, err := monosplit.LoadObjectCache(cachePath)
	if err != nil {
		return err
	}
	ncommits, ntrees := cache.Size()
	slog.Info("loaded object cache", "path", cachePath, "commits", ncommits, "trees", ntrees)

	wksp, err := newWorkspace(ctx, cfg.Monorepo)
	if err != nil {
		return err
	}

	if err := splitWorkspace(ctx, wksp, cfg, cache); err != nil {
		return err
	}

	if err := cache.Save(cachePath); err != nil {
		return err
	}
	ncommits, ntrees = cache.Size()
	slog.Info("saved object cache", "path", cachePath, "commits", ncommits, "trees", ntrees)

	return nil
}

// splitWorkspace is the part of [Run] after the fetch: graph collection,
// splitting, branch creation and pushing, all against an already populated
// workspace.
func splitWorkspace(ctx context.Context, wksp *workspace, cfg *Config, cache *monosplit.ObjectCache) error {
	branches, err := wksp.remoteBranches()
	if err != nil {
		return err
	}
	branches, err = selectBranches(branches, cfg.Branches)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(branches))
	for name := range branches {
		names = append(names, name)
	}
	sort.Strings(names)

	tips := make([]plumbing.Hash, 0, len(names))
	for _, name := range names {
		tips = append(tips, branches[name])
	}

	store := monosplit.NewCachedStore(wksp.storage, cache)

	graph, err := monosplit.LoadCommitGraph(ctx, store, tips)
	if err != nil {
		return err
	}
	if len(graph) == 0 {
		return fmt.Errorf("%w: branches %v", monosplit.ErrNoCommits, names)
	}
	slog.Info("collected commit graph", "commits", len(graph), "branches", len(names))

	subfolders := cfg.SubfolderNames()

	mapping, err := monosplit.SplitCommits(ctx, store, graph, subfolders)
	if err != nil {
		return err
	}
	if mapping.Empty() {
		return fmt.Errorf("%w: %d commits over subfolders %v", monosplit.ErrEmptyMapping, len(graph), subfolders)
	}

	created := make(map[string][]string)
	for _, branch := range names {
		tip := branches[branch]
		for _, subfolder := range subfolders {
			h, found := mapping.Lookup(subfolder, tip)
			if !found {
				continue
			}
			name := subfolder + "/" + branch
			if err := wksp.addBranch(name, h); err != nil {
				return fmt.Errorf("failed to create branch %s: %w", name, err)
			}
			created[subfolder] = append(created[subfolder], branch)
			slog.Info("created branch", "branch", name, "hash", h)
		}
	}

	for _, subfolder := range subfolders {
		url := cfg.Subfolders[subfolder]
		if url == "" || len(created[subfolder]) == 0 {
			continue
		}
		if err := wksp.pushSubfolder(ctx, subfolder, url, created[subfolder]); err != nil {
			return err
		}
	}

	return nil
}

// selectBranches keeps the branches listed in wanted, or everything when
// wanted is empty. A listed branch that does not exist on the remote is a
// configuration mistake, not something to skip silently.
func selectBranches(branches map[string]plumbing.Hash, wanted []string) (map[string]plumbing.Hash, error) {
	if len(wanted) == 0 {
		return branches, nil
	}

	result := make(map[string]plumbing.Hash, len(wanted))
	for _, name := range wanted {
		h, found := branches[name]
		if !found {
			return nil, fmt.Errorf("branch %s not found on the monorepo remote", name)
		}
		result[name] = h
	}

	return result, nil
}
