package library

import "errors"

var (
	// ErrLibraryNotFound indicates the named library is not configured.
	ErrLibraryNotFound = errors.New("library not found")

	// ErrAccessDenied indicates the requested path escapes the library
	// sandbox. The resolved path is never attached to this error.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound indicates the path resolves inside the library but no
	// file or directory exists there.
	ErrNotFound = errors.New("file not found")

	// ErrInvalidName indicates a file or directory name that cannot be
	// used as a single path component.
	ErrInvalidName = errors.New("invalid name")
)
