// Package sched paces the emulated controller against the wall clock.
//
// The machine runs in fixed cycle quotas. After each quota the
// scheduler sleeps until the deadline that quota represents at the
// nominal clock frequency, so emulated time tracks real time without
// running every instruction in lock step with it.
package sched

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nevisdale/ikbd/internal/ikbd"
)

const (
	DefaultFrequency = 1_000_000
	DefaultQuota     = 1000
	DefaultMaxLag    = 4
)

type ResetKind uint32

const (
	NoReset ResetKind = iota
	WarmReset
	ColdReset // wins over a pending warm reset
)

func (k ResetKind) String() string {
	switch k {
	case WarmReset:
		return "warm"
	case ColdReset:
		return "cold"
	}
	return "none"
}

// Machine is the emulator context the scheduler owns.
type Machine interface {
	Run(cycles int) int
	ColdReset()
	WarmReset()
	Stats() ikbd.Stats
}

type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// RealClock is the wall clock.
var RealClock Clock = realClock{}

type Config struct {
	Frequency int // Hz
	Quota     int // cycles per quota
	// MaxLag is how many quotas the scheduler may fall behind before it
	// gives up catching up and restarts the timeline from now.
	MaxLag int
	Clock  Clock
}

type Stats struct {
	Machine   ikbd.Stats
	Quotas    uint64
	Cycles    uint64 // run by the scheduler, across resets
	LateWakes uint64 // quotas that ended past their deadline
	Rebases   uint64
	Resets    uint64
	Lag       time.Duration // behind schedule at the end of the last quota
}

type Scheduler struct {
	m      Machine
	clock  Clock
	quota  int
	maxLag time.Duration
	period time.Duration

	carry    int // cycles the last instruction ran past the previous quota
	deadline time.Time

	reset atomic.Uint32
	st    Stats
	stats atomic.Pointer[Stats]
}

func New(m Machine, cfg Config) *Scheduler {
	if cfg.Frequency <= 0 {
		cfg.Frequency = DefaultFrequency
	}
	if cfg.Quota <= 0 {
		cfg.Quota = DefaultQuota
	}
	if cfg.MaxLag <= 0 {
		cfg.MaxLag = DefaultMaxLag
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock
	}
	period := time.Duration(cfg.Quota) * time.Second / time.Duration(cfg.Frequency)
	return &Scheduler{
		m:      m,
		clock:  cfg.Clock,
		quota:  cfg.Quota,
		period: period,
		maxLag: period * time.Duration(cfg.MaxLag),
	}
}

// Period is the wall clock length of one quota.
func (s *Scheduler) Period() time.Duration {
	return s.period
}

// RequestReset asks for a reset at the next quota boundary. It may be
// called from any goroutine. A cold request is never downgraded to warm.
func (s *Scheduler) RequestReset(kind ResetKind) {
	for {
		old := s.reset.Load()
		if old >= uint32(kind) {
			return
		}
		if s.reset.CompareAndSwap(old, uint32(kind)) {
			return
		}
	}
}

func (s *Scheduler) applyReset() {
	kind := ResetKind(s.reset.Swap(uint32(NoReset)))
	switch kind {
	case ColdReset:
		s.m.ColdReset()
	case WarmReset:
		s.m.WarmReset()
	default:
		return
	}
	s.carry = 0
	s.st.Resets++
	slog.Info("ikbd reset", "kind", kind)
}

// RunQuota runs the machine for cycles, less whatever the previous
// quota overshot, and returns the cycles actually executed.
func (s *Scheduler) RunQuota(cycles int) int {
	budget := cycles - s.carry
	if budget <= 0 {
		s.carry = -budget
		return 0
	}
	n := s.m.Run(budget)
	s.carry = n - budget
	s.st.Cycles += uint64(n)
	return n
}

func (s *Scheduler) SleepUntil(deadline time.Time) {
	if d := deadline.Sub(s.clock.Now()); d > 0 {
		s.clock.Sleep(d)
	}
}

// Run paces the machine until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.deadline = s.clock.Now()
	for ctx.Err() == nil {
		s.applyReset()
		s.RunQuota(s.quota)
		s.st.Quotas++

		s.deadline = s.deadline.Add(s.period)
		now := s.clock.Now()
		s.st.Lag = max(now.Sub(s.deadline), 0)
		if s.st.Lag > 0 {
			s.st.LateWakes++
		}
		if s.st.Lag > s.maxLag {
			slog.Debug("sched: too far behind, rebasing", "lag", s.st.Lag)
			s.deadline = now
			s.st.Rebases++
		}
		s.publish()

		s.SleepUntil(s.deadline)
	}
	return nil
}

func (s *Scheduler) publish() {
	st := s.st
	st.Machine = s.m.Stats()
	s.stats.Store(&st)
}

// Stats returns the figures published at the end of the last quota.
// Safe to call from any goroutine.
func (s *Scheduler) Stats() Stats {
	if st := s.stats.Load(); st != nil {
		return *st
	}
	return Stats{}
}
