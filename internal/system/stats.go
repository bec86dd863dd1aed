package system

import (
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostStats is a snapshot of the machine a run executed on.
type HostStats struct {
	CPUModel    string
	LogicalCPUs int
	CPUPercent  float64
	MemTotal    uint64
	MemUsedPct  float64
}

// CollectHostStats samples CPU load over interval. Fields the platform cannot report stay zero.
func CollectHostStats(interval time.Duration) HostStats {
	s := HostStats{LogicalCPUs: runtime.NumCPU()}

	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		s.CPUModel = infos[0].ModelName
	}
	if pct, err := cpu.Percent(interval, false); err == nil && len(pct) > 0 {
		s.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemTotal = vm.Total
		s.MemUsedPct = vm.UsedPercent
	}
	return s
}

func (s HostStats) String() string {
	return fmt.Sprintf("CPU: %s x%d @ %.1f%% | RAM: %.1f GiB (%.1f%% used)",
		s.CPUModel, s.LogicalCPUs, s.CPUPercent, float64(s.MemTotal)/(1<<30), s.MemUsedPct)
}
