// errors

package runner

import "errors"

var (
	ErrEmptyMonorepoURL = errors.New("empty monorepo url")
	ErrEmptySubfolders  = errors.New("empty subfolder table")
	ErrEmptyCacheDir    = errors.New("empty cache directory")
	ErrInvalidSubfolder = errors.New("invalid subfolder name")
)
