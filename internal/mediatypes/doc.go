// Package mediatypes provides shared type definitions and utilities for file
// classification across the media library server.
//
// This package exists as a low-dependency foundation that can be imported by
// other packages without creating import cycles. It contains primitive types,
// constants, and pure lookup functions; the only external dependency is the
// magic-byte sniffer used as a fallback for unknown extensions.
//
// # File Types
//
// The package defines a FileType enum for categorizing directory entries:
//
//	mediatypes.FileTypeFolder   // Directories
//	mediatypes.FileTypeImage    // Supported image formats (jpg, png, gif, etc.)
//	mediatypes.FileTypeVideo    // Supported video formats (mp4, mkv, avi, etc.)
//	mediatypes.FileTypeAudio    // Supported audio formats (mp3, flac, ogg, etc.)
//	mediatypes.FileTypeSubtitle // Subtitle sidecars (srt, vtt, ass, ssa, sub)
//	mediatypes.FileTypeDocument // Documents (pdf, txt, md, epub, etc.)
//	mediatypes.FileTypeArchive  // Archives (zip, rar, 7z, tar, etc.)
//	mediatypes.FileTypeOther    // Unrecognized files
//
// # Extension Detection
//
// Use GetFileType to determine the type of a file based on its extension:
//
//	ext := strings.ToLower(filepath.Ext(filename))
//	fileType := mediatypes.GetFileType(ext)
//
// # MIME Types
//
// Use GetMimeType for a pure table lookup, or ResolveMimeType when a file is
// on disk and magic-byte sniffing is an acceptable fallback:
//
//	mimeType := mediatypes.GetMimeType(ext)              // e.g., "image/jpeg"
//	mimeType := mediatypes.ResolveMimeType(absPath, ext) // sniffs unknown extensions
//
// # Sorting
//
// The package provides SortField and SortOrder types for consistent sorting
// across the application:
//
//	sort := mediatypes.SortByName
//	order := mediatypes.SortAsc
package mediatypes
