package workers

import (
	"runtime"
	"testing"
)

func TestCountScalesWithProcs(t *testing.T) {
	t.Setenv("PREVIEW_WORKERS", "")
	procs := runtime.GOMAXPROCS(0)

	if got := Count(1.0, 0); got != procs {
		t.Errorf("Count(1.0, 0) = %d, want %d", got, procs)
	}
	if got := Count(2.0, 0); got != procs*2 {
		t.Errorf("Count(2.0, 0) = %d, want %d", got, procs*2)
	}
}

func TestCountFloorsAtOne(t *testing.T) {
	t.Setenv("PREVIEW_WORKERS", "")

	if got := Count(0.0001, 0); got != 1 {
		t.Errorf("Count(0.0001, 0) = %d, want 1", got)
	}
}

func TestCountAppliesCap(t *testing.T) {
	t.Setenv("PREVIEW_WORKERS", "")

	if got := Count(100, 3); got != 3 {
		t.Errorf("Count(100, 3) = %d, want 3", got)
	}
}

func TestCountEnvOverride(t *testing.T) {
	t.Setenv("PREVIEW_WORKERS", "5")

	if got := Count(1.0, 0); got != 5 {
		t.Errorf("override: Count = %d, want 5", got)
	}
	// The cap still applies to overrides.
	if got := Count(1.0, 2); got != 2 {
		t.Errorf("capped override: Count = %d, want 2", got)
	}
}

func TestCountIgnoresBadOverride(t *testing.T) {
	procs := runtime.GOMAXPROCS(0)

	for _, bad := range []string{"zero", "0", "-3", "1.5"} {
		t.Setenv("PREVIEW_WORKERS", bad)
		if got := Count(1.0, 0); got != procs {
			t.Errorf("PREVIEW_WORKERS=%q: Count = %d, want %d", bad, got, procs)
		}
	}
}

func TestHelpers(t *testing.T) {
	t.Setenv("PREVIEW_WORKERS", "")

	if got, want := ForCPU(0), Count(1.0, 0); got != want {
		t.Errorf("ForCPU = %d, want %d", got, want)
	}
	if got, want := ForIO(0), Count(2.0, 0); got != want {
		t.Errorf("ForIO = %d, want %d", got, want)
	}
	if got, want := ForMixed(0), Count(1.5, 0); got != want {
		t.Errorf("ForMixed = %d, want %d", got, want)
	}
	if got := ForIO(1); got != 1 {
		t.Errorf("ForIO(1) = %d, want 1", got)
	}
}
