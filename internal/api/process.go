package api

import (
	"context"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

type processStats struct {
	RSS        uint64
	CPUPercent float64
	OpenFiles  int32
}

// currentProcessStats samples the server process through gopsutil.
func currentProcessStats(ctx context.Context) (processStats, error) {
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return processStats{}, fmt.Errorf("process handle: %w", err)
	}

	var stats processStats
	memInfo, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return processStats{}, fmt.Errorf("memory info: %w", err)
	}
	stats.RSS = memInfo.RSS

	// CPU и файлы не критичны: на части платформ недоступны
	if cpu, err := proc.CPUPercentWithContext(ctx); err == nil {
		stats.CPUPercent = cpu
	}
	if n, err := proc.NumFDsWithContext(ctx); err == nil {
		stats.OpenFiles = n
	}
	return stats, nil
}
