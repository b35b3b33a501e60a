package stats

import "time"

// StatKind identifies one independently-sampled group of statistics.
// Values are stable strings because they are persisted in the
// visible_stats settings field.
type StatKind string

const (
	StatCPU       StatKind = "cpu"
	StatMemory    StatKind = "memory"
	StatDisk      StatKind = "disk"
	StatNetwork   StatKind = "network"
	StatTemps     StatKind = "temps"
	StatProcesses StatKind = "processes"
)

// AllKinds returns every stat kind in display order.
func AllKinds() []StatKind {
	return []StatKind{StatCPU, StatMemory, StatDisk, StatNetwork, StatTemps, StatProcesses}
}

// Valid reports whether k is a known stat kind.
func (k StatKind) Valid() bool {
	switch k {
	case StatCPU, StatMemory, StatDisk, StatNetwork, StatTemps, StatProcesses:
		return true
	}
	return false
}

// ProcessUsage is one entry in a top-processes list.
type ProcessUsage struct {
	Name       string
	CPUPercent float64
	MemPercent float64
}

// Snapshot is one immutable sampling of system stats at a point in time.
// It is produced once per sampling tick and handed off whole; nothing
// mutates a Snapshot after emission.
type Snapshot struct {
	Timestamp time.Time

	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0

	MemUsedBytes      uint64
	MemTotalBytes     uint64
	MemAvailableBytes uint64

	DiskPercent    float64 // 0.0 .. 100.0, root filesystem
	DiskUsedBytes  uint64
	DiskTotalBytes uint64
	DiskFreeBytes  uint64

	// Network counters are cumulative since boot, summed over interfaces.
	NetSentBytes uint64
	NetRecvBytes uint64

	// Temps maps sensor name to degrees Celsius. May be empty on
	// hosts without readable sensors.
	Temps map[string]float64

	TopCPU    []ProcessUsage
	TopMemory []ProcessUsage

	// Unavailable records stat kinds that failed to read this tick.
	// Their values are carried forward from the previous snapshot.
	Unavailable map[StatKind]bool
}

// Clone deep-copies the snapshot so the copy can be handed to another
// stage without sharing mutable state.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Temps != nil {
		out.Temps = make(map[string]float64, len(s.Temps))
		for k, v := range s.Temps {
			out.Temps[k] = v
		}
	}
	if s.TopCPU != nil {
		out.TopCPU = append([]ProcessUsage(nil), s.TopCPU...)
	}
	if s.TopMemory != nil {
		out.TopMemory = append([]ProcessUsage(nil), s.TopMemory...)
	}
	if s.Unavailable != nil {
		out.Unavailable = make(map[StatKind]bool, len(s.Unavailable))
		for k, v := range s.Unavailable {
			out.Unavailable[k] = v
		}
	}
	return out
}

// IsUnavailable reports whether the given kind was degraded this tick.
func (s Snapshot) IsUnavailable(kind StatKind) bool {
	return s.Unavailable[kind]
}

// FieldErrors records which stat kinds failed during a read and why.
// A non-empty map is a degraded read, not a failed one: the remaining
// snapshot fields are valid.
type FieldErrors map[StatKind]error

// OK reports whether the read completed with no field failures.
func (f FieldErrors) OK() bool {
	return len(f) == 0
}
