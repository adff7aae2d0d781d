package library

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"media-library/internal/filesystem"
	"media-library/internal/logging"
	"media-library/internal/metrics"
)

// ResolvedPath is a sandboxed absolute path inside a library. Instances are
// produced only by the Resolver and are valid for a single request; the
// filesystem can change between requests, so they are never cached.
type ResolvedPath struct {
	Library  Library
	Relative string      // sanitized library-relative path, "/"-separated, no leading slash
	Absolute string      // canonical absolute path, symlinks resolved
	Info     os.FileInfo // from the final stat; nil for write targets that do not exist yet
}

// IsDir reports whether the resolved entry is a directory.
func (rp *ResolvedPath) IsDir() bool {
	return rp.Info != nil && rp.Info.IsDir()
}

// Resolver maps caller-supplied (library, relativePath) pairs to absolute
// paths strictly inside the library root. It is stateless and safe for
// unbounded concurrent use.
type Resolver struct {
	registry *Registry
	retry    filesystem.RetryConfig
}

// NewResolver creates a Resolver over the given registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{
		registry: registry,
		retry:    filesystem.DefaultRetryConfig(),
	}
}

// Resolve maps relativePath into the named library's root, failing closed on
// anything that would land outside of it. Returns ErrLibraryNotFound,
// ErrAccessDenied, or ErrNotFound per the package contract.
func (r *Resolver) Resolve(libraryName, relativePath string) (*ResolvedPath, error) {
	rp, err := r.resolve(libraryName, relativePath)
	metrics.PathResolutionsTotal.WithLabelValues("resolve", resolutionStatus(err)).Inc()
	return rp, err
}

func (r *Resolver) resolve(libraryName, relativePath string) (*ResolvedPath, error) {
	lib, ok := r.registry.Lookup(libraryName)
	if !ok {
		return nil, ErrLibraryNotFound
	}

	rel, err := SanitizeRelative(relativePath)
	if err != nil {
		return nil, err
	}

	joined := lib.Root
	if rel != "" {
		joined = filepath.Join(lib.Root, filepath.FromSlash(rel))
	}

	// Lexical containment before touching the filesystem.
	if !within(lib.Root, joined) {
		return nil, ErrAccessDenied
	}

	canonical, err := filepath.EvalSymlinks(joined)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, ErrAccessDenied
	}

	// A symlink inside the tree can target anything on the host, so the
	// containment check must be repeated on the canonical result.
	if !within(lib.Root, canonical) {
		logging.Warn("Blocked symlink escape in library %q: %s", lib.Name, rel)
		return nil, ErrAccessDenied
	}

	info, err := filesystem.StatWithRetry(canonical, r.retry)
	if err != nil {
		return nil, ErrNotFound
	}

	return &ResolvedPath{Library: lib, Relative: rel, Absolute: canonical, Info: info}, nil
}

// ResolveParent resolves a target that may not exist yet: the parent
// directory is resolved through the full sandbox pipeline and the final
// component is validated as a single name. Used by create, upload, and the
// destination side of rename. The returned path has a nil Info.
func (r *Resolver) ResolveParent(libraryName, relativePath string) (*ResolvedPath, error) {
	rp, err := r.resolveParent(libraryName, relativePath)
	metrics.PathResolutionsTotal.WithLabelValues("resolve_parent", resolutionStatus(err)).Inc()
	return rp, err
}

func (r *Resolver) resolveParent(libraryName, relativePath string) (*ResolvedPath, error) {
	if _, ok := r.registry.Lookup(libraryName); !ok {
		return nil, ErrLibraryNotFound
	}

	rel, err := SanitizeRelative(relativePath)
	if err != nil {
		return nil, err
	}
	if rel == "" {
		return nil, ErrInvalidName
	}

	parentRel := ""
	base := rel
	if idx := strings.LastIndex(rel, "/"); idx >= 0 {
		parentRel = rel[:idx]
		base = rel[idx+1:]
	}
	if err := ValidateName(base); err != nil {
		return nil, err
	}

	parent, err := r.resolve(libraryName, parentRel)
	if err != nil {
		return nil, err
	}
	if !parent.IsDir() {
		return nil, ErrNotFound
	}

	return &ResolvedPath{
		Library:  parent.Library,
		Relative: rel,
		Absolute: filepath.Join(parent.Absolute, base),
	}, nil
}

// SanitizeRelative normalizes a caller-supplied relative path: backslashes
// become slashes, duplicate separators and "." segments collapse, and any
// leading separator is dropped. A ".." segment fails with ErrAccessDenied
// rather than being silently stripped.
func SanitizeRelative(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	normalized := strings.ReplaceAll(raw, "\\", "/")
	parts := strings.Split(normalized, "/")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", ErrAccessDenied
		}
		if strings.ContainsRune(part, 0) {
			return "", ErrAccessDenied
		}
		cleaned = append(cleaned, part)
	}

	return strings.Join(cleaned, "/"), nil
}

// ValidateName checks that name is usable as a single path component.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidName
	}
	if len(name) > 255 {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, "/\\") || strings.ContainsRune(name, 0) {
		return ErrInvalidName
	}
	return nil
}

// within reports whether path equals root or is a descendant of it,
// compared component-wise via the trailing separator.
func within(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

func resolutionStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrAccessDenied):
		return "denied"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrLibraryNotFound):
		return "unknown_library"
	case errors.Is(err, ErrInvalidName):
		return "invalid_name"
	default:
		return "error"
	}
}
