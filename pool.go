package docgen

import "runtime"

// Page slot sizing constants.
const (
	// MinPoolSize ensures at least one conversion can run.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent pages to limit browser memory.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ResolvePoolSize determines how many pages may render concurrently.
// Priority: explicit value > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(pages int) int {
	if pages > 0 {
		return pages
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
