package stats

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/shirou/gopsutil/v4/sensors"
)

// Limits applied to the top-processes lists.
const (
	// TopProcessCount is the maximum number of entries per list.
	TopProcessCount = 3
	// MinProcessPercent filters out noise below this usage.
	MinProcessPercent = 0.1
	// MaxProcessNameLen truncates long process names for display.
	MaxProcessNameLen = 25
)

// Reader is the platform stats-reader collaborator. A read may fail
// per-field: failed kinds are reported in FieldErrors and the
// corresponding snapshot fields are zero. Readers must never panic or
// block indefinitely on one bad sensor.
type Reader interface {
	ReadSnapshot(ctx context.Context) (Snapshot, FieldErrors)
}

// systemReader reads live stats from the local host via gopsutil.
type systemReader struct{}

// NewSystemReader returns a Reader backed by the local host's sensors
// and process table.
func NewSystemReader() Reader {
	return &systemReader{}
}

// ignoredProcessNames are kernel/idle entries that would otherwise
// dominate the CPU list on some platforms.
var ignoredProcessNames = map[string]bool{
	"":                    true,
	"idle":                true,
	"System Idle Process": true,
	"kernel_task":         true,
}

func (r *systemReader) ReadSnapshot(ctx context.Context) (Snapshot, FieldErrors) {
	snap := Snapshot{Timestamp: time.Now()}
	fieldErrs := make(FieldErrors)

	// CPU: interval 0 means delta since the previous call, so the
	// first read of a run reports 0.
	cpuPcts, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil || len(cpuPcts) == 0 {
		fieldErrs[StatCPU] = err
	} else {
		snap.CPUPercent = clampPercent(cpuPcts[0])
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil || vm == nil {
		fieldErrs[StatMemory] = err
	} else {
		snap.MemPercent = clampPercent(vm.UsedPercent)
		snap.MemUsedBytes = vm.Used
		snap.MemTotalBytes = vm.Total
		snap.MemAvailableBytes = vm.Available
	}

	du, err := disk.UsageWithContext(ctx, diskRootPath())
	if err != nil || du == nil {
		fieldErrs[StatDisk] = err
	} else {
		snap.DiskPercent = clampPercent(du.UsedPercent)
		snap.DiskUsedBytes = du.Used
		snap.DiskTotalBytes = du.Total
		snap.DiskFreeBytes = du.Free
	}

	// pernic=false sums counters over all interfaces into one entry.
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil || len(counters) == 0 {
		fieldErrs[StatNetwork] = err
	} else {
		snap.NetSentBytes = counters[0].BytesSent
		snap.NetRecvBytes = counters[0].BytesRecv
	}

	temps, err := sensors.TemperaturesWithContext(ctx)
	if err != nil && len(temps) == 0 {
		fieldErrs[StatTemps] = err
	} else {
		snap.Temps = make(map[string]float64, len(temps))
		for _, t := range temps {
			if t.SensorKey == "" {
				continue
			}
			snap.Temps[t.SensorKey] = t.Temperature
		}
	}

	topCPU, topMem, err := r.readProcesses(ctx)
	if err != nil {
		fieldErrs[StatProcesses] = err
	} else {
		snap.TopCPU = topCPU
		snap.TopMemory = topMem
	}

	return snap, fieldErrs
}

// readProcesses builds the top-CPU and top-memory lists.
func (r *systemReader) readProcesses(ctx context.Context) (topCPU, topMem []ProcessUsage, err error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, nil, err
	}

	usages := make([]ProcessUsage, 0, len(procs))
	for _, p := range procs {
		name, nameErr := p.NameWithContext(ctx)
		if nameErr != nil || ignoredProcessNames[name] {
			continue
		}
		cpuPct, cpuErr := p.CPUPercentWithContext(ctx)
		memPct, memErr := p.MemoryPercentWithContext(ctx)
		if cpuErr != nil && memErr != nil {
			continue
		}
		usages = append(usages, ProcessUsage{
			Name:       TruncateProcessName(name),
			CPUPercent: cpuPct,
			MemPercent: float64(memPct),
		})
	}

	return topProcesses(usages, byCPU), topProcesses(usages, byMem), nil
}

type processOrder int

const (
	byCPU processOrder = iota
	byMem
)

// topProcesses filters below-noise entries, sorts descending by the
// requested metric, and keeps the top TopProcessCount.
func topProcesses(usages []ProcessUsage, order processOrder) []ProcessUsage {
	filtered := make([]ProcessUsage, 0, len(usages))
	for _, u := range usages {
		pct := u.CPUPercent
		if order == byMem {
			pct = u.MemPercent
		}
		if pct > MinProcessPercent {
			filtered = append(filtered, u)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if order == byMem {
			return filtered[i].MemPercent > filtered[j].MemPercent
		}
		return filtered[i].CPUPercent > filtered[j].CPUPercent
	})

	if len(filtered) > TopProcessCount {
		filtered = filtered[:TopProcessCount]
	}
	return filtered
}

// TruncateProcessName shortens a process name to MaxProcessNameLen runes.
func TruncateProcessName(name string) string {
	runes := []rune(name)
	if len(runes) <= MaxProcessNameLen {
		return name
	}
	return string(runes[:MaxProcessNameLen-1]) + "…"
}

// diskRootPath is the filesystem the disk gauge reports on.
func diskRootPath() string {
	if runtime.GOOS == "windows" {
		return "C:/"
	}
	return "/"
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
