package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"media-library/internal/logging"
)

// Library is a named root directory exposed for browsing and streaming.
// Root is absolute with all symlinks resolved.
type Library struct {
	Name string
	Icon string
	Root string
}

// Definition describes a library as configured, before canonicalization.
type Definition struct {
	Name string
	Path string
	Icon string
}

// Registry maps library names to canonical roots. It is built once at
// startup and read-only afterward, so lookups need no locking.
type Registry struct {
	libs   []Library
	byName map[string]int
}

// NewRegistry canonicalizes every definition and builds the registry.
// A definition whose root does not exist, is not a directory, or whose name
// duplicates another (case-insensitively) fails construction; a server with
// a misconfigured library should not start.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		libs:   make([]Library, 0, len(defs)),
		byName: make(map[string]int, len(defs)),
	}

	for _, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, fmt.Errorf("library with empty name (path %q)", def.Path)
		}

		key := strings.ToLower(name)
		if _, exists := r.byName[key]; exists {
			return nil, fmt.Errorf("duplicate library name %q", name)
		}

		root, err := canonicalizeRoot(def.Path)
		if err != nil {
			return nil, fmt.Errorf("library %q: %w", name, err)
		}

		icon := def.Icon
		if icon == "" {
			icon = "folder"
		}

		r.byName[key] = len(r.libs)
		r.libs = append(r.libs, Library{Name: name, Icon: icon, Root: root})
		logging.Debug("Registered library %q at %s", name, root)
	}

	return r, nil
}

// canonicalizeRoot resolves a configured path to an absolute, symlink-free
// directory path.
func canonicalizeRoot(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("empty root path")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving root %q: %w", path, err)
	}

	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("root %q is not accessible: %w", path, err)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return "", fmt.Errorf("root %q is not accessible: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root %q is not a directory", path)
	}

	return canonical, nil
}

// Lookup returns the library with the given name. Matching is
// case-insensitive.
func (r *Registry) Lookup(name string) (Library, bool) {
	idx, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return Library{}, false
	}
	return r.libs[idx], true
}

// Libraries returns the configured libraries in configuration order.
func (r *Registry) Libraries() []Library {
	out := make([]Library, len(r.libs))
	copy(out, r.libs)
	return out
}

// Len returns the number of configured libraries.
func (r *Registry) Len() int {
	return len(r.libs)
}
