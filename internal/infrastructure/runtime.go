package infrastructure

import (
	"context"
	"log/slog"
	"runtime"
)

// RuntimeSnapshot captures process resource usage at a point in time. The
// pipeline logs one at the end of a run, where peak memory is the number
// worth watching on large inputs.
type RuntimeSnapshot struct {
	Goroutines     int
	HeapAllocBytes uint64
	TotalAllocs    uint64
	SysBytes       uint64
	NumGC          uint32
}

// CaptureRuntimeSnapshot reads the current runtime statistics
func CaptureRuntimeSnapshot() RuntimeSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeSnapshot{
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: memStats.HeapAlloc,
		TotalAllocs:    memStats.TotalAlloc,
		SysBytes:       memStats.Sys,
		NumGC:          memStats.NumGC,
	}
}

// LogRuntimeSnapshot logs the current runtime statistics
func LogRuntimeSnapshot(ctx context.Context, logger *slog.Logger) {
	snap := CaptureRuntimeSnapshot()

	logger.InfoContext(ctx, "Runtime snapshot",
		slog.Int("goroutines", snap.Goroutines),
		slog.Uint64("heap_alloc_bytes", snap.HeapAllocBytes),
		slog.Uint64("total_alloc_bytes", snap.TotalAllocs),
		slog.Uint64("sys_bytes", snap.SysBytes),
		slog.Uint64("gc_runs", uint64(snap.NumGC)))
}
