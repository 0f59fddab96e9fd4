// monosplit splits the history of a git monorepo into independent
// per-subfolder histories. For every configured subfolder and every commit
// whose tree contains that subfolder, a new commit is synthesized with the
// subfolder's subtree as its root tree and with its parents remapped into the
// subfolder's rewritten history. Commits that add nothing over their sole
// parent are collapsed away, so each split history only contains commits that
// actually changed the subfolder.
//
// See [LoadCommitGraph] for collecting the commit universe, [SplitCommits]
// for the scheduling algorithm, and [HashMapping] for the resulting
// original-to-rewritten hash translation. [CachedStore] backed by an
// [ObjectCache] provides the content-addressed object layer that makes
// repeated runs incremental.
package monosplit
