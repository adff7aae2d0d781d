// Package fileops implements write operations on library content: folder
// creation, delete, rename, move, copy, multipart upload, and ZIP archive
// streaming. Every target passes through the sandbox resolver, uploads and
// copies are written atomically via same-directory temp files, and an
// existing target is never overwritten.
package fileops
