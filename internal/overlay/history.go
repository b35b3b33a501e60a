package overlay

import (
	"sync"

	"github.com/sirbread/tarrow/internal/stats"
)

// DefaultHistorySize is the default number of data points retained per
// metric for the in-overlay graphs.
const DefaultHistorySize = 60

// History stores recent CPU and memory percentages in fixed-size ring
// buffers for sparkline rendering. Nothing older than the buffer is
// kept; there is no persistence.
type History struct {
	mu  sync.RWMutex
	cpu *ringBuffer
	mem *ringBuffer
}

// NewHistory creates a history tracker with the specified buffer size.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		cpu: newRingBuffer(size),
		mem: newRingBuffer(size),
	}
}

// Push records one snapshot's CPU and memory percentages.
func (h *History) Push(snap stats.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cpu.push(snap.CPUPercent)
	h.mem.push(snap.MemPercent)
}

// CPU returns the last count CPU percentages in chronological order.
func (h *History) CPU(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cpu.getLast(count)
}

// Mem returns the last count memory percentages in chronological order.
func (h *History) Mem(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.mem.getLast(count)
}

// Len returns the number of stored data points.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cpu.count
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

// push adds a value to the ring buffer.
func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}

	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head points to the next write position, so the most recent value
	// is at head-1. We want 'count' values ending there.
	start := (r.head - count + r.size) % r.size

	for i := 0; i < count; i++ {
		idx := (start + i) % r.size
		result[i] = r.data[idx]
	}

	return result
}
