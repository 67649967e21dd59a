// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rate

// Schedule decides, tick by tick, whether a publish is due.
//
// The caller invokes Due exactly once per simulator tick and, whenever
// Due returns true, Advance exactly once before the next Due. A
// Schedule is not safe for concurrent use; it lives on the single
// goroutine that steps the simulator.
type Schedule struct {
	interval Interval

	frequency uint64
	maxRate   uint64

	// counter counts ticks since the last rebase.
	counter uint64
	// due is the publish threshold scaled by frequency: a tick is due
	// when counter >= due/frequency, i.e. counter*frequency >= due.
	due uint64
}

// NewSchedule validates frequency against maxRate (see Quantize) and
// returns a schedule whose first publish falls on the first tick.
func NewSchedule(frequency, maxRate uint32) (*Schedule, error) {
	interval, err := Quantize(frequency, maxRate)
	if err != nil {
		return nil, err
	}
	return &Schedule{
		interval:  interval,
		frequency: uint64(frequency),
		maxRate:   uint64(maxRate),
	}, nil
}

// Due consumes one tick and reports whether it is a publish tick.
// It never allocates.
func (s *Schedule) Due() bool {
	ready := s.counter*s.frequency >= s.due
	s.counter++
	return ready
}

// Advance moves the threshold forward by one interval after a publish
// tick and rebases counter and threshold once the counter passes
// RebaseModulus. The rebase subtracts the same number of ticks from
// both sides of the comparison in Due, so the next decision is
// unchanged.
func (s *Schedule) Advance() {
	s.due += s.maxRate
	if s.counter > RebaseModulus {
		s.counter -= RebaseModulus
		s.due -= RebaseModulus * s.frequency
	}
}

// Interval returns the validated ideal interval.
func (s *Schedule) Interval() Interval { return s.interval }

// Frequency returns the requested publish rate in Hz.
func (s *Schedule) Frequency() uint32 { return s.interval.Frequency }

// MaxRate returns the simulator tick rate the schedule was built for.
func (s *Schedule) MaxRate() uint32 { return s.interval.MaxRate }

// BaseInterval returns the ideal interval in ticks.
func (s *Schedule) BaseInterval() float64 { return s.interval.Float() }

// Exact reports whether every gap is the same whole number of ticks.
func (s *Schedule) Exact() bool { return s.interval.Exact() }

// Counter returns the tick counter since the last rebase.
func (s *Schedule) Counter() uint64 { return s.counter }

// Threshold returns the current publish threshold in ticks.
func (s *Schedule) Threshold() float64 {
	return float64(s.due) / float64(s.frequency)
}
