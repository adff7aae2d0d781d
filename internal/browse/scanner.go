package browse

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"media-library/internal/filesystem"
	"media-library/internal/library"
	"media-library/internal/mediatypes"
	"media-library/internal/metrics"
)

// Scanner produces live directory listings. Nothing is indexed or cached;
// every listing reflects the filesystem at request time.
type Scanner struct {
	resolver *library.Resolver
	retry    filesystem.RetryConfig
}

// NewScanner creates a Scanner over the given resolver.
func NewScanner(resolver *library.Resolver) *Scanner {
	return &Scanner{
		resolver: resolver,
		retry:    filesystem.DefaultRetryConfig(),
	}
}

// List returns the listing for relativePath inside the named library, sorted
// and optionally filtered by file type. Resolver errors pass through so the
// handler can map them to 403/404.
func (s *Scanner) List(libraryName, relativePath string, sortField mediatypes.SortField, sortOrder mediatypes.SortOrder, filterType string) (*Listing, error) {
	start := time.Now()
	var err error
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.BrowseOperationsTotal.WithLabelValues("list", status).Inc()
		metrics.BrowseOperationDuration.WithLabelValues("list").Observe(time.Since(start).Seconds())
	}()

	rp, err := s.resolver.Resolve(libraryName, relativePath)
	if err != nil {
		return nil, err
	}
	if !rp.IsDir() {
		err = library.ErrNotFound
		return nil, err
	}

	entries, err := filesystem.ReadDirWithRetry(rp.Absolute, s.retry)
	if err != nil {
		return nil, err
	}

	items := s.processEntries(rp, entries, filterType)
	sortItems(items, sortField, sortOrder)

	listing := s.buildListing(rp, items)
	metrics.BrowseItemsReturned.WithLabelValues("list").Observe(float64(len(items)))
	return listing, nil
}

func (s *Scanner) processEntries(rp *library.ResolvedPath, entries []os.DirEntry, filterType string) []Entry {
	items := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		item, ok := s.entryToItem(rp, entry)
		if !ok {
			continue
		}
		if filterType != "" && item.Type != mediatypes.FileTypeFolder && string(item.Type) != filterType {
			continue
		}
		items = append(items, item)
	}
	return items
}

func (s *Scanner) entryToItem(rp *library.ResolvedPath, entry os.DirEntry) (Entry, bool) {
	info, err := entry.Info()
	if err != nil {
		return Entry{}, false
	}

	entryPath := entry.Name()
	if rp.Relative != "" {
		entryPath = rp.Relative + "/" + entry.Name()
	}

	if entry.IsDir() {
		return Entry{
			Name:       entry.Name(),
			Path:       entryPath,
			Type:       mediatypes.FileTypeFolder,
			ModTime:    info.ModTime(),
			ModDisplay: FormatDateTime(info.ModTime()),
			ItemCount:  s.countDirItems(filepath.Join(rp.Absolute, entry.Name())),
		}, true
	}

	ext := strings.ToLower(filepath.Ext(entry.Name()))
	item := Entry{
		Name:        entry.Name(),
		Path:        entryPath,
		Type:        mediatypes.GetFileType(ext),
		MimeType:    mediatypes.GetMimeType(ext),
		Size:        info.Size(),
		SizeDisplay: FormatFileSize(info.Size()),
		ModTime:     info.ModTime(),
		ModDisplay:  FormatDateTime(info.ModTime()),
	}

	switch item.Type {
	case mediatypes.FileTypeImage:
		item.PreviewURL = "/api/preview/" + rp.Library.Name + "/" + entryPath
	case mediatypes.FileTypeVideo:
		item.PreviewURL = "/api/poster/" + rp.Library.Name + "/" + entryPath
	}

	return item, true
}

// countDirItems returns the number of visible entries directly inside dir.
func (s *Scanner) countDirItems(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), ".") {
			count++
		}
	}
	return count
}

func (s *Scanner) buildListing(rp *library.ResolvedPath, items []Entry) *Listing {
	var parent string
	name := rp.Library.Name
	if rp.Relative != "" {
		name = path.Base(rp.Relative)
		parent = path.Dir(rp.Relative)
		if parent == "." {
			parent = ""
		}
	}

	stats := Stats{}
	for _, item := range items {
		if item.Type == mediatypes.FileTypeFolder {
			stats.Folders++
		} else {
			stats.Files++
			stats.TotalSize += item.Size
		}
	}
	stats.TotalSizeDisplay = FormatFileSize(stats.TotalSize)

	return &Listing{
		Library:    rp.Library.Name,
		Path:       rp.Relative,
		Name:       name,
		Parent:     parent,
		Breadcrumb: buildBreadcrumb(rp.Library.Name, rp.Relative),
		Items:      items,
		Stats:      stats,
	}
}

func buildBreadcrumb(libraryName, relativePath string) []PathPart {
	breadcrumb := []PathPart{{Name: libraryName, Path: ""}}
	if relativePath == "" {
		return breadcrumb
	}

	current := ""
	for _, part := range strings.Split(relativePath, "/") {
		if part == "" {
			continue
		}
		if current == "" {
			current = part
		} else {
			current = current + "/" + part
		}
		breadcrumb = append(breadcrumb, PathPart{Name: part, Path: current})
	}
	return breadcrumb
}

// sortItems orders a listing: folders always first, then by the requested
// field. Stable so equal keys keep directory order.
func sortItems(items []Entry, sortField mediatypes.SortField, sortOrder mediatypes.SortOrder) {
	sort.SliceStable(items, func(i, j int) bool {
		iFolder := items[i].Type == mediatypes.FileTypeFolder
		jFolder := items[j].Type == mediatypes.FileTypeFolder
		if iFolder != jFolder {
			return iFolder
		}

		a, b := items[i], items[j]
		if sortOrder == mediatypes.SortDesc {
			a, b = b, a
		}

		switch sortField {
		case mediatypes.SortByDate:
			return a.ModTime.Before(b.ModTime)
		case mediatypes.SortBySize:
			return a.Size < b.Size
		case mediatypes.SortByType:
			if a.Type == b.Type {
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
			return a.Type < b.Type
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	})
}
