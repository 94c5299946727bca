package scanner

import "errors"

var (
	// ErrRootNotExist is returned when the scan root does not exist.
	ErrRootNotExist = errors.New("scan root does not exist")
	// ErrRootNotDir is returned when the scan root is not a directory.
	ErrRootNotDir = errors.New("scan root is not a directory")
	// ErrFileTooLarge marks a file skipped because of its size.
	ErrFileTooLarge = errors.New("file exceeds size limit")
	// ErrInvalidPattern wraps a glob compilation failure.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)
