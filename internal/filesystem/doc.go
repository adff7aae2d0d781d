/*
Package filesystem provides resilient filesystem operations with automatic
retry logic for NFS stale file handle errors.

Library roots are frequently NFS mounts; this package wraps os.Stat, os.Open,
and os.ReadDir with retry logic for the transient ESTALE (stale file handle)
errors that occur when NFS-mounted files are accessed during network issues or
server-side changes. Only ESTALE triggers retries; all other errors fail
immediately.

Basic usage:

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

	file, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	defer file.Close()

Defaults: 3 retries, exponential backoff 50ms -> 500ms.

Retry metrics are labeled by volume. A VolumeResolver maps paths to labels by
longest-prefix matching; at startup the server registers one volume per
configured library plus "cache" for the preview cache directory. Metric
recording goes through the Observer interface, implemented by the metrics
package, so that this package has no metrics dependency.
*/
package filesystem
