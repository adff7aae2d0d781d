package fileops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"media-library/internal/library"
	"media-library/internal/logging"
	"media-library/internal/metrics"
)

// Sentinel errors beyond the resolver's taxonomy.
var (
	// ErrExists means the operation's target already exists.
	ErrExists = errors.New("target already exists")
	// ErrTooLarge means an upload exceeded the configured size cap.
	ErrTooLarge = errors.New("upload exceeds size limit")
	// ErrCrossDeviceDir means a cross-device move was attempted on a directory.
	ErrCrossDeviceDir = errors.New("cannot move directory across devices")
)

// Manager performs write operations inside library sandboxes. Every target
// goes through the resolver, so no operation can touch anything outside a
// library root.
type Manager struct {
	resolver      *library.Resolver
	maxUploadSize int64
}

// NewManager creates a Manager. maxUploadSize of 0 means unlimited.
func NewManager(resolver *library.Resolver, maxUploadSize int64) *Manager {
	return &Manager{resolver: resolver, maxUploadSize: maxUploadSize}
}

func record(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.FileOperationsTotal.WithLabelValues(operation, status).Inc()
}

// CreateFolder creates a directory at relativePath.
func (m *Manager) CreateFolder(libraryName, relativePath string) (err error) {
	defer func() { record("create_folder", err) }()

	rp, err := m.resolver.ResolveParent(libraryName, relativePath)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(rp.Absolute); err == nil {
		return ErrExists
	}
	if err := os.Mkdir(rp.Absolute, 0755); err != nil {
		return fmt.Errorf("creating folder: %w", err)
	}
	logging.Info("Created folder %s in library %q", rp.Relative, libraryName)
	return nil
}

// Delete removes the file or directory tree at relativePath. The library
// root itself cannot be deleted.
func (m *Manager) Delete(libraryName, relativePath string) (err error) {
	defer func() { record("delete", err) }()

	rp, err := m.resolver.Resolve(libraryName, relativePath)
	if err != nil {
		return err
	}
	if rp.Relative == "" {
		return library.ErrAccessDenied
	}
	if err := os.RemoveAll(rp.Absolute); err != nil {
		return fmt.Errorf("deleting: %w", err)
	}
	logging.Info("Deleted %s from library %q", rp.Relative, libraryName)
	return nil
}

// Rename gives the entry at relativePath a new base name in place.
func (m *Manager) Rename(libraryName, relativePath, newName string) (err error) {
	defer func() { record("rename", err) }()

	if err := library.ValidateName(newName); err != nil {
		return err
	}
	rp, err := m.resolver.Resolve(libraryName, relativePath)
	if err != nil {
		return err
	}
	if rp.Relative == "" {
		return library.ErrAccessDenied
	}

	target := filepath.Join(filepath.Dir(rp.Absolute), newName)
	if _, err := os.Lstat(target); err == nil {
		return ErrExists
	}
	if err := os.Rename(rp.Absolute, target); err != nil {
		return fmt.Errorf("renaming: %w", err)
	}
	logging.Info("Renamed %s to %s in library %q", rp.Relative, newName, libraryName)
	return nil
}

// Move relocates the entry at relativePath into destDir (a library-relative
// directory in the same library). A cross-device rename falls back to
// copy-and-remove for files.
func (m *Manager) Move(libraryName, relativePath, destDir string) (err error) {
	defer func() { record("move", err) }()

	src, dst, err := m.resolveTransfer(libraryName, relativePath, destDir)
	if err != nil {
		return err
	}

	if err := os.Rename(src.Absolute, dst); err != nil {
		if !errors.Is(err, syscall.EXDEV) {
			return fmt.Errorf("moving: %w", err)
		}
		if src.IsDir() {
			return ErrCrossDeviceDir
		}
		if err := copyFile(src.Absolute, dst); err != nil {
			return err
		}
		if err := os.Remove(src.Absolute); err != nil {
			return fmt.Errorf("removing source after copy: %w", err)
		}
	}
	logging.Info("Moved %s to %s in library %q", src.Relative, destDir, libraryName)
	return nil
}

// Copy duplicates the file at relativePath into destDir. Directories are not
// copied.
func (m *Manager) Copy(libraryName, relativePath, destDir string) (err error) {
	defer func() { record("copy", err) }()

	src, dst, err := m.resolveTransfer(libraryName, relativePath, destDir)
	if err != nil {
		return err
	}
	if src.IsDir() {
		return library.ErrInvalidName
	}
	if err := copyFile(src.Absolute, dst); err != nil {
		return err
	}
	logging.Info("Copied %s to %s in library %q", src.Relative, destDir, libraryName)
	return nil
}

// resolveTransfer resolves the source entry and the destination directory
// for move/copy, returning the source and the absolute target path.
func (m *Manager) resolveTransfer(libraryName, relativePath, destDir string) (*library.ResolvedPath, string, error) {
	src, err := m.resolver.Resolve(libraryName, relativePath)
	if err != nil {
		return nil, "", err
	}
	if src.Relative == "" {
		return nil, "", library.ErrAccessDenied
	}

	dest, err := m.resolver.Resolve(libraryName, destDir)
	if err != nil {
		return nil, "", err
	}
	if !dest.IsDir() {
		return nil, "", library.ErrNotFound
	}

	target := filepath.Join(dest.Absolute, filepath.Base(src.Absolute))
	if _, err := os.Lstat(target); err == nil {
		return nil, "", ErrExists
	}
	return src, target, nil
}

// Upload writes the stream to filename inside the directory at dirPath. The
// write is atomic: content goes to a temp file in the target directory which
// is renamed into place only after a complete, size-checked copy. An
// existing target is never overwritten.
func (m *Manager) Upload(libraryName, dirPath, filename string, r io.Reader) (written int64, err error) {
	defer func() { record("upload", err) }()

	// Base name only; a path-carrying filename is a traversal attempt.
	if filename != filepath.Base(filename) {
		return 0, library.ErrInvalidName
	}
	if err := library.ValidateName(filename); err != nil {
		return 0, err
	}

	dir, err := m.resolver.Resolve(libraryName, dirPath)
	if err != nil {
		return 0, err
	}
	if !dir.IsDir() {
		return 0, library.ErrNotFound
	}

	target := filepath.Join(dir.Absolute, filename)
	if _, err := os.Lstat(target); err == nil {
		return 0, ErrExists
	}

	written, err = writeAtomic(target, r, m.maxUploadSize)
	if err != nil {
		return 0, err
	}

	metrics.UploadBytesTotal.Add(float64(written))
	logging.Info("Uploaded %s (%d bytes) to library %q", filename, written, libraryName)
	return written, nil
}

// writeAtomic copies r to a same-directory temp file, fsyncs it, and renames
// it over path. maxSize of 0 means unlimited.
func writeAtomic(path string, r io.Reader, maxSize int64) (int64, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	src := r
	if maxSize > 0 {
		src = io.LimitReader(r, maxSize+1)
	}
	written, err := io.Copy(tmp, src)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("writing upload: %w", err)
	}
	if maxSize > 0 && written > maxSize {
		tmp.Close()
		return 0, ErrTooLarge
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("syncing upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing upload: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return 0, fmt.Errorf("publishing upload: %w", err)
	}
	return written, nil
}

// copyFile copies src to dst atomically, preserving the source's mode.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	if _, err := writeAtomic(dst, in, 0); err != nil {
		return err
	}

	if info, err := in.Stat(); err == nil {
		if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
			logging.Debug("Failed to preserve mode on %s: %v", dst, err)
		}
		if err := os.Chtimes(dst, time.Now(), info.ModTime()); err != nil {
			logging.Debug("Failed to preserve mtime on %s: %v", dst, err)
		}
	}
	return nil
}
