// Package subtitles locates subtitle sidecar files next to videos and
// converts SubRip text to WebVTT for browser playback. Sidecars are probed by
// basename in preference order (.vtt, .srt, .ass, .ssa); nothing is indexed
// or cached, the filesystem is the source of truth.
package subtitles
