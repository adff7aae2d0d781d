// Package library defines the configured media libraries and the path
// resolver that confines every externally supplied path to a library root.
//
// A Library is a named root directory. The Registry maps names to libraries
// with case-insensitive lookup and is immutable after construction; roots are
// canonicalized (symlinks resolved) exactly once at load.
//
// The Resolver turns (libraryName, relativePath) pairs from the request path
// into absolute filesystem paths. Every resolution sanitizes the relative
// path, joins it to the library root, re-canonicalizes the result, and then
// verifies the canonical path is still inside the canonical root. The
// post-canonicalization check is what defeats symlinks inside the tree that
// point outside of it; a lexical check alone is not sufficient. Resolutions
// are never cached across requests because filesystem state can change
// between them.
//
// Failures are reported through the package sentinel errors:
//
//	ErrLibraryNotFound: no library with that name
//	ErrAccessDenied:    the path escapes the sandbox (or cannot be verified)
//	ErrNotFound:        resolves inside the root but nothing is there
//
// Callers translate these to HTTP 404/403/404 without exposing any
// filesystem detail to the client.
package library
