// Package workers sizes concurrency from the CPUs actually available to the
// process. GOMAXPROCS tracks container CPU limits (Go 1.19+) while
// runtime.NumCPU reports the host machine, so every count here starts from
// GOMAXPROCS.
//
// ForCPU sizes pools for decode-heavy work such as thumbnail generation,
// ForIO for directory walks and other filesystem-bound work, and ForMixed
// for loads in between. Each helper takes a hard cap (0 for none), and the
// PREVIEW_WORKERS environment variable overrides the computed count:
//
//	// extractor process bound, at most 8
//	slots := workers.ForCPU(8)
//
//	// per-library stats walkers
//	walkers := workers.ForIO(8)
package workers
