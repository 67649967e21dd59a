// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rate

import (
	"errors"
	"fmt"
)

const (
	// MaxTickRate is the simulator's fixed step rate in ticks per
	// second.
	MaxTickRate uint32 = 1000

	// MaxRelativeError bounds how far either integer gap candidate
	// may deviate from the ideal interval, relative to that interval.
	MaxRelativeError = 0.05

	// RebaseModulus is subtracted from the counter and threshold once
	// the counter exceeds it.
	RebaseModulus uint64 = 1 << 20
)

var (
	// ErrZeroFrequency is returned for a requested frequency of 0.
	ErrZeroFrequency = errors.New("frequency must be positive")

	// ErrFrequencyTooHigh is returned when the requested frequency
	// exceeds the simulator's tick rate.
	ErrFrequencyTooHigh = errors.New("frequency exceeds maximum tick rate")

	// ErrQuantization is returned when the requested frequency cannot
	// be approximated within MaxRelativeError.
	ErrQuantization = errors.New("frequency quantization error too large")
)

// Interval is the ideal number of ticks between publishes, held as the
// exact ratio MaxRate/Frequency.
type Interval struct {
	Frequency uint32
	MaxRate   uint32
}

// Float returns the interval in ticks as a float64.
func (i Interval) Float() float64 {
	return float64(i.MaxRate) / float64(i.Frequency)
}

// Exact reports whether the interval is a whole number of ticks.
func (i Interval) Exact() bool {
	return i.MaxRate%i.Frequency == 0
}

// Candidates returns the two integer gaps bracketing the interval.
// For an exact interval both values are equal.
func (i Interval) Candidates() (lower, upper uint32) {
	lower = i.MaxRate / i.Frequency
	if i.Exact() {
		return lower, lower
	}
	return lower, lower + 1
}

// RelativeError returns |gap - interval| / interval for an integer
// gap. Computed as |gap*frequency - maxRate| / maxRate so that no
// intermediate rounding can move a candidate across the bound.
func (i Interval) RelativeError(gap uint32) float64 {
	scaled := int64(gap)*int64(i.Frequency) - int64(i.MaxRate)
	if scaled < 0 {
		scaled = -scaled
	}
	return float64(scaled) / float64(i.MaxRate)
}

// Quantize validates that frequency can be served by a simulator
// ticking at maxRate and returns the ideal interval. An exact divisor
// is always accepted; otherwise both bracketing integer gaps must lie
// within MaxRelativeError of the interval.
func Quantize(frequency, maxRate uint32) (Interval, error) {
	if frequency == 0 {
		return Interval{}, ErrZeroFrequency
	}
	if frequency > maxRate {
		return Interval{}, fmt.Errorf("invalid frequency %d Hz: %w (%d Hz)", frequency, ErrFrequencyTooHigh, maxRate)
	}

	interval := Interval{Frequency: frequency, MaxRate: maxRate}
	if interval.Exact() {
		return interval, nil
	}

	// Compare scaled integers: |gap*f - maxRate| <= bound*maxRate.
	limit := MaxRelativeError * float64(maxRate)
	lower, upper := interval.Candidates()
	for _, gap := range []uint32{lower, upper} {
		deviation := int64(gap)*int64(frequency) - int64(maxRate)
		if deviation < 0 {
			deviation = -deviation
		}
		if float64(deviation) > limit {
			return Interval{}, fmt.Errorf("invalid frequency %d Hz: %w: %d-tick gap deviates %.4f from %.4f ticks (limit %.2f)",
				frequency, ErrQuantization, gap, interval.RelativeError(gap), interval.Float(), MaxRelativeError)
		}
	}
	return interval, nil
}
