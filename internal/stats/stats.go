package stats

import (
	"sync/atomic"
	"time"
)

// Stats holds the aggregated counters of one scenario run
type Stats struct {
	Requests    uint64
	Success     uint64
	RateLimited uint64
	Errors      uint64
	Dropped     uint64 // answered requests the histogram refused

	// Latency histogram (microseconds), answered requests only
	ServiceTime *SafeHistogram
}

func NewStats() *Stats {
	return &Stats{
		ServiceTime: NewSafeHistogram(),
	}
}

func (s *Stats) AddRequest(success, rateLimited, failed bool, latency time.Duration) {
	atomic.AddUint64(&s.Requests, 1)
	switch {
	case failed:
		atomic.AddUint64(&s.Errors, 1)
		return
	case rateLimited:
		atomic.AddUint64(&s.RateLimited, 1)
	case success:
		atomic.AddUint64(&s.Success, 1)
	}

	us := latency.Microseconds()
	if us < 1 {
		us = 1
	}
	if us > MaxLatency.Microseconds() {
		us = MaxLatency.Microseconds()
	}
	if err := s.ServiceTime.RecordValue(us); err != nil {
		atomic.AddUint64(&s.Dropped, 1)
	}
}

func (s *Stats) RequestCount() uint64 { return atomic.LoadUint64(&s.Requests) }
func (s *Stats) SuccessCount() uint64 { return atomic.LoadUint64(&s.Success) }
func (s *Stats) RateLimitedCount() uint64 { return atomic.LoadUint64(&s.RateLimited) }
func (s *Stats) ErrorCount() uint64 { return atomic.LoadUint64(&s.Errors) }

// RateLimitedRatio returns the share of 429 responses in percent.
func (s *Stats) RateLimitedRatio() float64 {
	reqs := s.RequestCount()
	if reqs == 0 {
		return 0
	}
	return (float64(s.RateLimitedCount()) / float64(reqs)) * 100
}

func (s *Stats) GetMeanService() float64 {
	return s.ServiceTime.Mean() / 1000.0 // ms
}

func (s *Stats) GetP50Service() float64 {
	return float64(s.ServiceTime.ValueAtQuantile(50)) / 1000.0 // ms
}

func (s *Stats) GetP90Service() float64 {
	return float64(s.ServiceTime.ValueAtQuantile(90)) / 1000.0 // ms
}

func (s *Stats) GetP99Service() float64 {
	return float64(s.ServiceTime.ValueAtQuantile(99)) / 1000.0 // ms
}

// MaxServiceMs returns the slowest answered request in milliseconds.
func (s *Stats) MaxServiceMs() float64 {
	return float64(s.ServiceTime.Max()) / 1000.0
}
