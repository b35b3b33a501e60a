package stats

import (
	"context"
	"sync"
	"time"

	"github.com/sirbread/tarrow/internal/logger"
)

// snapshotBuffer bounds the handoff queue between the sampling
// goroutine and the UI loop. When the consumer falls behind, the
// oldest snapshot is dropped so sampling never blocks on rendering.
const snapshotBuffer = 8

// readTimeout caps one reader call so a wedged sensor cannot stall a tick.
const readTimeout = 5 * time.Second

// Sampler polls a Reader on a fixed interval and emits immutable
// snapshots on a bounded channel. It owns no UI state.
type Sampler struct {
	reader Reader
	log    logger.Logger

	mu       sync.Mutex
	interval time.Duration
	prev     Snapshot
	hasPrev  bool

	out      chan Snapshot
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopOnce sync.Once
}

// NewSampler creates a sampler polling reader every interval.
func NewSampler(reader Reader, interval time.Duration, log logger.Logger) *Sampler {
	if log == nil {
		log = logger.Noop()
	}
	return &Sampler{
		reader:   reader,
		log:      log,
		interval: interval,
		out:      make(chan Snapshot, snapshotBuffer),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Snapshots returns the channel snapshots are emitted on. The channel
// is closed after Stop returns; no snapshot is ever emitted after Stop.
func (s *Sampler) Snapshots() <-chan Snapshot {
	return s.out
}

// Start begins periodic sampling on its own goroutine. Calling Start
// more than once is a no-op.
func (s *Sampler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go s.loop()
}

// Stop halts sampling. It is idempotent and returns only after the
// sampling goroutine has exited, guaranteeing no further emissions.
func (s *Sampler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if started {
		<-s.doneCh
	} else {
		// Never started: close the channel ourselves so consumers
		// draining it still terminate.
		s.mu.Lock()
		if !s.started {
			s.started = true // block a late Start from racing the close
			close(s.out)
			close(s.doneCh)
		}
		s.mu.Unlock()
	}
}

// SetInterval reconfigures the sampling interval. The next tick uses
// the new interval; no restart is required.
func (s *Sampler) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
}

// Interval returns the current sampling interval.
func (s *Sampler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Sampler) loop() {
	defer close(s.doneCh)
	defer close(s.out)

	// Sample immediately so the overlay has data before the first tick.
	s.sampleAndEmit()

	timer := time.NewTimer(s.Interval())
	defer timer.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-timer.C:
			s.sampleAndEmit()
			timer.Reset(s.Interval())
		}
	}
}

// sampleAndEmit performs one reader call, degrades failed fields by
// carrying the previous snapshot's values forward, and emits the result.
func (s *Sampler) sampleAndEmit() {
	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	snap, fieldErrs := s.reader.ReadSnapshot(ctx)
	cancel()

	s.mu.Lock()
	if !fieldErrs.OK() {
		if snap.Unavailable == nil {
			snap.Unavailable = make(map[StatKind]bool, len(fieldErrs))
		}
		for kind, err := range fieldErrs {
			snap.Unavailable[kind] = true
			if s.hasPrev {
				carryForward(&snap, s.prev, kind)
			}
			s.log.Debug("[sampler] %s read failed, carrying previous value: %v", kind, err)
		}
	}
	s.prev = snap.Clone()
	s.hasPrev = true
	s.mu.Unlock()

	s.emit(snap)
}

// emit delivers a snapshot without blocking: if the queue is full the
// oldest entry is dropped in favor of the new one.
func (s *Sampler) emit(snap Snapshot) {
	select {
	case <-s.stopCh:
		return
	default:
	}

	select {
	case s.out <- snap:
	default:
		select {
		case <-s.out:
		default:
		}
		select {
		case s.out <- snap:
		default:
		}
	}
}

// carryForward copies one stat kind's fields from prev into snap.
func carryForward(snap *Snapshot, prev Snapshot, kind StatKind) {
	switch kind {
	case StatCPU:
		snap.CPUPercent = prev.CPUPercent
	case StatMemory:
		snap.MemPercent = prev.MemPercent
		snap.MemUsedBytes = prev.MemUsedBytes
		snap.MemTotalBytes = prev.MemTotalBytes
		snap.MemAvailableBytes = prev.MemAvailableBytes
	case StatDisk:
		snap.DiskPercent = prev.DiskPercent
		snap.DiskUsedBytes = prev.DiskUsedBytes
		snap.DiskTotalBytes = prev.DiskTotalBytes
		snap.DiskFreeBytes = prev.DiskFreeBytes
	case StatNetwork:
		snap.NetSentBytes = prev.NetSentBytes
		snap.NetRecvBytes = prev.NetRecvBytes
	case StatTemps:
		snap.Temps = prev.Clone().Temps
	case StatProcesses:
		cloned := prev.Clone()
		snap.TopCPU = cloned.TopCPU
		snap.TopMemory = cloned.TopMemory
	}
}
