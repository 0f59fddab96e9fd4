package monosplit

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
)

// SubtreeCommit is one rewritten counterpart of an original commit, the new
// head of that commit in the named subfolder's history.
type SubtreeCommit struct {
	Subfolder string
	Hash      plumbing.Hash
}

// HashMapping translates original commit hashes to their rewritten
// counterparts, independently per subfolder. An entry exists for
// (subfolder, hash) iff the original commit's tree contains that subfolder,
// and all entries of one commit are recorded in a single atomic step. That
// atomicity is what makes "has any subfolder entry" a sound synonym for
// "fully processed" in the scheduler.
type HashMapping struct {
	bySubfolder map[string]map[plumbing.Hash]plumbing.Hash
	resolved    HashSet
}

// NewHashMapping creates an empty [HashMapping].
func NewHashMapping() *HashMapping {
	return &HashMapping{
		bySubfolder: make(map[string]map[plumbing.Hash]plumbing.Hash),
		resolved:    NewHashSet(),
	}
}

// Lookup returns the rewritten hash of orig in the given subfolder's
// history. The second return is false when orig never touched the subfolder
// or has not been processed yet.
func (m *HashMapping) Lookup(subfolder string, orig plumbing.Hash) (plumbing.Hash, bool) {
	sub, found := m.bySubfolder[subfolder]
	if !found {
		return plumbing.ZeroHash, false
	}

	h, found := sub[orig]
	return h, found
}

// Resolved reports whether orig has been through the factory, that is,
// whether it has an entry for at least one subfolder.
func (m *HashMapping) Resolved(orig plumbing.Hash) bool {
	_, found := m.resolved[orig]
	return found
}

// Empty reports whether no commit has been mapped at all.
func (m *HashMapping) Empty() bool {
	return len(m.resolved) == 0
}

// Len returns the number of resolved original commits.
func (m *HashMapping) Len() int {
	return len(m.resolved)
}

// record installs all subfolder entries of one original commit as a unit.
// Entries are append-only, recording a commit twice is a programming error
// surfaced as [ErrDuplicateMap].
func (m *HashMapping) record(orig plumbing.Hash, results []SubtreeCommit) error {
	if m.Resolved(orig) {
		return fmt.Errorf("%w: commit %s", ErrDuplicateMap, orig)
	}

	for _, r := range results {
		sub, found := m.bySubfolder[r.Subfolder]
		if !found {
			sub = make(map[plumbing.Hash]plumbing.Hash)
			m.bySubfolder[r.Subfolder] = sub
		}
		sub[orig] = r.Hash
	}
	m.resolved[orig] = empty{}

	return nil
}
