package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns the number of workers for a given task type.
//
// The multiplier adjusts for task characteristics: 1.0 for CPU-bound work,
// above 1 when workers spend time blocked. The limit caps the result; use 0
// for no limit. The PIXELART_WORKERS environment variable overrides the
// calculation.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("PIXELART_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)
	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}
	return workers
}

// ForCPU returns the worker count for CPU-bound tasks (1 per CPU),
// capped at limit.
func ForCPU(limit int) int {
	return Count(1.0, limit)
}
