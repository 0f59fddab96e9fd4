// errors

package monosplit

import "errors"

var (
	ErrNoSubfolders        = errors.New("no subfolders configured")
	ErrNoCommits           = errors.New("no commits found for the given branch tips")
	ErrEmptyMapping        = errors.New("split produced an empty hash mapping")
	ErrDuplicateMap        = errors.New("hash mapping entry already recorded")
	ErrNoSubfolderInCommit = errors.New("commit tree contains none of the configured subfolders")
)
