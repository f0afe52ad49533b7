package server

import (
	"net/http"
	"time"

	apperrors "codeclinic/internal/errors"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// handleSystemMetrics reports host resource usage for operators
func handleSystemMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	metrics := make(map[string]interface{})

	cpuPercent, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		apperrors.SendError(w, apperrors.NewInternalError("failed to collect CPU metrics", err))
		return
	}
	if len(cpuPercent) > 0 {
		metrics["cpu"] = cpuPercent[0]
	} else {
		metrics["cpu"] = 0.0
	}

	memInfo, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		apperrors.SendError(w, apperrors.NewInternalError("failed to collect memory metrics", err))
		return
	}
	metrics["memory"] = memInfo.UsedPercent

	diskInfo, err := disk.UsageWithContext(ctx, "/")
	if err != nil {
		apperrors.SendError(w, apperrors.NewInternalError("failed to collect disk metrics", err))
		return
	}
	metrics["disk"] = diskInfo.UsedPercent

	if processes, err := process.ProcessesWithContext(ctx); err == nil {
		metrics["processes"] = len(processes)
	} else {
		metrics["processes"] = 0
	}

	metrics["timestamp"] = time.Now()

	apperrors.SendSuccess(w, metrics)
}
