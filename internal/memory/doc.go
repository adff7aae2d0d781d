// Package memory keeps the process inside its container memory limit.
//
// Two pieces work together. ConfigureFromEnv runs first in main and sets
// GOMEMLIMIT from the MEMORY_LIMIT and MEMORY_RATIO environment variables
// (an explicit GOMEMLIMIT wins). The ratio, 0.85 by default, leaves head
// room for allocations the Go runtime cannot see: ffmpeg poster extraction
// processes, libvips image buffers, and CGO memory.
//
// Monitor then samples heap usage against that limit. When usage crosses
// the critical water mark, preview generation pauses at its WaitIfPaused
// gate until usage falls back under the high water mark; streaming and
// browsing are never throttled. With no limit configured the monitor is
// inert.
//
// In Kubernetes, MEMORY_LIMIT is wired through the downward API:
//
//	env:
//	- name: MEMORY_LIMIT
//	  valueFrom:
//	    resourceFieldRef:
//	      resource: limits.memory
package memory
