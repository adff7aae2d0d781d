package fileops

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"media-library/internal/library"
	"media-library/internal/logging"
	"media-library/internal/metrics"
)

// WriteArchive streams the directory at relativePath as a ZIP to w. Entries
// are deflate-compressed with forward-slash names relative to the archived
// directory; hidden entries are skipped. The archive is built on the fly,
// nothing touches disk.
func (m *Manager) WriteArchive(w io.Writer, libraryName, relativePath string) (err error) {
	defer func() { record("archive", err) }()

	rp, err := m.resolver.Resolve(libraryName, relativePath)
	if err != nil {
		return err
	}
	if !rp.IsDir() {
		return library.ErrNotFound
	}

	zw := zip.NewWriter(w)
	defer func() {
		if closeErr := zw.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("finalizing archive: %w", closeErr)
		}
	}()

	root := rp.Absolute
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		if d.IsDir() {
			// Explicit directory entries keep empty folders in the archive.
			_, err := zw.Create(name + "/")
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = name
		header.Method = zip.Deflate

		entry, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		n, err := io.Copy(entry, file)
		file.Close()
		if err != nil {
			return fmt.Errorf("archiving %s: %w", name, err)
		}
		metrics.StreamBytesTotal.Add(float64(n))
		return nil
	})
	if err != nil {
		logging.Error("Archive of %s in library %q failed: %v", rp.Relative, libraryName, err)
		return err
	}

	logging.Debug("Archived %s from library %q", rp.Relative, libraryName)
	return nil
}
