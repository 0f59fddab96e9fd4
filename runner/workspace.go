package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/memory"
)

const (
	remotename   = "origin"
	refSpecHeads = "+refs/heads/*:refs/remotes/origin/*"
	refSpecTags  = "+refs/tags/*:refs/tags/*"
)

// workspace is the scratch clone of the monorepo for one run. It lives in
// memory, the persistent state between runs is the object cache, not the
// clone.
type workspace struct {
	storage *memory.Storage
	repo    *git.Repository
	isempty bool
}

// newWorkspace initializes a fresh repository, points origin at the monorepo
// and fetches all branches and tags.
func newWorkspace(ctx context.Context, url string) (*workspace, error) {
	storage := memory.NewStorage()

	repo, err := git.InitWithOptions(
		storage,
		nil,
		git.InitOptions{
			DefaultBranch: plumbing.Main,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to init scratch repo: %w", err)
	}

	_, err = repo.CreateRemote(
		&config.RemoteConfig{
			Name: remotename,
			URLs: []string{url},
			Fetch: []config.RefSpec{
				config.RefSpec(refSpecHeads),
				config.RefSpec(refSpecTags),
			},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to create remote for origin: %w", err)
	}

	slog.Info("fetching monorepo", "remote", url)

	isempty := false

	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remotename,
		RefSpecs: []config.RefSpec{
			config.RefSpec(refSpecHeads),
			config.RefSpec(refSpecTags),
		},
	})
	if err != nil && errors.Is(err, transport.ErrEmptyRemoteRepository) {
		slog.Warn("empty remote")
		isempty = true
	} else if err != nil {
		return nil, fmt.Errorf("failed to fetch monorepo: %w", err)
	}

	return &workspace{
		storage: storage,
		repo:    repo,
		isempty: isempty,
	}, nil
}

// remoteBranches returns the branch tips fetched from origin, keyed by the
// plain branch name.
func (w *workspace) remoteBranches() (map[string]plumbing.Hash, error) {
	result := make(map[string]plumbing.Hash)
	if w.isempty {
		return result, nil
	}

	prefix := fmt.Sprintf("refs/remotes/%s/", remotename)

	iter, err := w.storage.IterReferences()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate references: %w", err)
	}

	err = iter.ForEach(func(r *plumbing.Reference) error {
		name := r.Name().String()
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		branch := strings.TrimPrefix(name, prefix)
		if branch == "HEAD" || r.Hash().IsZero() {
			return nil
		}
		result[branch] = r.Hash()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// addBranch creates a local branch pointing at the given commit.
func (w *workspace) addBranch(name string, h plumbing.Hash) error {
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), h)
	return w.storage.SetReference(ref)
}

// pushSubfolder pushes the split branches of one subfolder to its target
// repository. The branch <subfolder>/<branch> lands as <branch> on the
// target. Force updates are allowed, split hashes legitimately change when
// history is rewritten upstream.
func (w *workspace) pushSubfolder(ctx context.Context, subfolder string, url string, branches []string) error {
	_, err := w.repo.CreateRemote(
		&config.RemoteConfig{
			Name: subfolder,
			URLs: []string{url},
		})
	if err != nil && !errors.Is(err, git.ErrRemoteExists) {
		return fmt.Errorf("failed to create remote for %s: %w", subfolder, err)
	}

	specs := make([]config.RefSpec, 0, len(branches))
	for _, branch := range branches {
		specs = append(specs, config.RefSpec(
			fmt.Sprintf("+refs/heads/%s/%s:refs/heads/%s", subfolder, branch, branch)))
	}

	slog.Info("pushing subfolder", "subfolder", subfolder, "remote", url, "branches", len(branches))

	err = w.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: subfolder,
		RefSpecs:   specs,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to push %s: %w", subfolder, err)
	}

	return nil
}
