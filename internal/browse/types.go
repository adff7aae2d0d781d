package browse

import (
	"time"

	"media-library/internal/mediatypes"
)

// Entry is one row in a directory listing.
type Entry struct {
	Name        string              `json:"name"`
	Path        string              `json:"path"`
	Type        mediatypes.FileType `json:"type"`
	MimeType    string              `json:"mimeType,omitempty"`
	Size        int64               `json:"size"`
	SizeDisplay string              `json:"sizeDisplay,omitempty"`
	ModTime     time.Time           `json:"modTime"`
	ModDisplay  string              `json:"modDisplay"`
	ItemCount   int                 `json:"itemCount,omitempty"`
	PreviewURL  string              `json:"previewURL,omitempty"`
}

// PathPart is one segment of a breadcrumb trail.
type PathPart struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Stats summarizes a listing.
type Stats struct {
	Files            int    `json:"files"`
	Folders          int    `json:"folders"`
	TotalSize        int64  `json:"totalSize"`
	TotalSizeDisplay string `json:"totalSizeDisplay"`
}

// Listing is a complete directory listing response.
type Listing struct {
	Library    string     `json:"library"`
	Path       string     `json:"path"`
	Name       string     `json:"name"`
	Parent     string     `json:"parent"`
	Breadcrumb []PathPart `json:"breadcrumb"`
	Items      []Entry    `json:"items"`
	Stats      Stats      `json:"stats"`
}
