// Package preview generates and caches thumbnails and video poster frames.
//
// Artifacts are content-addressed: the cache filename is derived from the
// source path and target dimensions, so the same request always maps to the
// same file and a size change produces a new artifact. Misses for the same
// artifact collapse to a single in-flight generation; artifacts are published
// by atomic rename so readers never observe partial files.
//
// Still images are scaled in-process, preferring libvips (decode-time
// shrinking) and falling back to pure-Go decoding with dimension constraints.
// Video posters come from an external ffmpeg process with a hard deadline and
// a bounded process pool.
package preview
